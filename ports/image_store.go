package ports

import (
	"context"

	"oohdesk/domain/core"
)

// PointImage is one image to attach to a freshly imported point.
type PointImage struct {
	Data     []byte
	Order    int
	IsCover  bool
	MimeType string
}

// ImageStore attaches images to persisted points. Attachment is
// best-effort: it runs after the batch insert has committed and a failure
// never rolls the rows back.
type ImageStore interface {
	AttachImage(ctx context.Context, pointID core.PointID, image PointImage) error
}
