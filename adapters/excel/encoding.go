package excel

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ConvertToUTF8 detects the payload's character set and converts it to
// UTF-8. Legacy exports from Brazilian desktop Excel come as ISO-8859-1 or
// Windows-1252; anything else that is not already UTF-8 is rejected.
func ConvertToUTF8(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	// Strip a UTF-8 BOM when present; Excel adds one to "CSV UTF-8" saves.
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return data[3:], nil
	}

	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil {
		return nil, err
	}

	switch {
	case result.Charset == "UTF-8":
		return data, nil
	case result.Charset == "windows-1252" || strings.HasPrefix(result.Charset, "ISO-8859"):
		converted, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder()))
		if err != nil {
			return nil, err
		}
		return converted, nil
	default:
		return nil, fmt.Errorf("unsupported character set: %s", result.Charset)
	}
}
