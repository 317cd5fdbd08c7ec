package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"oohdesk/domain/core"
	"oohdesk/ports"
)

// LocalImageStore writes point images to a directory on disk and records
// each attachment in the point_images table. It stands in for the object
// store in single-node deployments.
type LocalImageStore struct {
	db      *sqlx.DB
	baseDir string
}

// NewLocalImageStore creates a store rooted at baseDir.
func NewLocalImageStore(db *sqlx.DB, baseDir string) *LocalImageStore {
	return &LocalImageStore{db: db, baseDir: baseDir}
}

// AttachImage writes the image bytes and records the attachment. A failure
// here is the caller's to log; committed point rows are never rolled back
// over images.
func (s *LocalImageStore) AttachImage(ctx context.Context, pointID core.PointID, image ports.PointImage) error {
	key := fmt.Sprintf("points/%d/%d-%d%s", pointID, time.Now().UnixMilli(), image.Order, extensionFor(image.MimeType))

	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := os.WriteFile(path, image.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}

	const query = `INSERT INTO point_images (point_id, storage_key, ordering, is_cover, created_at)
	VALUES ($1, $2, $3, $4, NOW())`

	if _, err := s.db.ExecContext(ctx, query, pointID, key, image.Order, image.IsCover); err != nil {
		// Remove the orphaned file so disk state matches the table.
		_ = os.Remove(path)
		return fmt.Errorf("failed to record image attachment: %w", err)
	}
	return nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

var _ ports.ImageStore = (*LocalImageStore)(nil)
