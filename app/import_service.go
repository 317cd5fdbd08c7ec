package app

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"oohdesk/adapters/excel"
	"oohdesk/domain/core"
	"oohdesk/domain/importer"
	"oohdesk/internal"
	apperrors "oohdesk/internal/errors"
	"oohdesk/ports"
)

// ImportService owns the lifecycle of bulk-import sessions: created on
// upload, mutated by mapping and cell edits, destroyed on commit or close.
// Sessions live only in memory; the inventory store sees nothing until
// Commit.
type ImportService struct {
	reader    *excel.DataReader
	inventory ports.InventoryRepository
	images    ports.ImageStore
	logger    *internal.Logger

	mu       sync.RWMutex
	sessions map[core.SessionID]*importer.Session
}

// NewImportService creates the service. The image store may be nil when
// image attachment is not configured.
func NewImportService(reader *excel.DataReader, inventory ports.InventoryRepository, images ports.ImageStore, logger *internal.Logger) *ImportService {
	return &ImportService{
		reader:    reader,
		inventory: inventory,
		images:    images,
		logger:    logger,
		sessions:  make(map[core.SessionID]*importer.Session),
	}
}

// CreateSession parses an uploaded spreadsheet and opens a session around
// it. Column kinds are pre-suggested from the headers; the caller reviews
// and adjusts the mapping before anything else happens.
func (s *ImportService) CreateSession(exhibitorID core.ExhibitorID, exhibitorName string, upload io.Reader, filename string, size int64) (*importer.Session, error) {
	sheet, err := s.reader.Read(upload, filename, size)
	if err != nil {
		return nil, err
	}

	session := importer.NewSession(exhibitorID, exhibitorName)
	if err := session.SetData(sheet.Headers, sheet.Rows); err != nil {
		return nil, apperrors.ParseFailure("unusable sheet", err)
	}

	suggested := importer.SuggestMapping(sheet.Headers)
	if err := session.ApplyMapping(suggested); err != nil {
		// Suggestions come from the mapping itself, so conflicts cannot
		// happen; a failure here is a programming error worth surfacing.
		return nil, apperrors.InternalError("failed to apply suggested mapping: " + err.Error())
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Info("import session %s opened for exhibitor %d (%d columns, %d rows)",
		session.ID, exhibitorID, len(sheet.Headers), len(sheet.Rows))
	return session, nil
}

// Session returns a live session, expiring it when past its TTL.
func (s *ImportService) Session(id core.SessionID) (*importer.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("import session")
	}
	if session.Expired() {
		s.Close(id)
		return nil, apperrors.SessionExpired("import session expired, upload the sheet again")
	}
	return session, nil
}

// AssignColumn binds a column to a field kind and re-normalizes the column.
func (s *ImportService) AssignColumn(id core.SessionID, column int, kind importer.FieldKind) error {
	session, err := s.Session(id)
	if err != nil {
		return err
	}
	if err := session.AssignColumn(column, kind); err != nil {
		return apperrors.ValidationError(err.Error())
	}
	return nil
}

// EditCell updates one cell and returns its fresh validation state, nil
// when the column is unmapped.
func (s *ImportService) EditCell(id core.SessionID, row, column int, value string) (*importer.CellValidation, error) {
	session, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	delta, err := session.EditCell(row, column, value)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	return delta, nil
}

// PreflightCodes checks the sheet's codes against the active inventory and
// against the sheet itself, flagging collisions as cell errors. Returns the
// codes that already exist in the inventory.
func (s *ImportService) PreflightCodes(ctx context.Context, id core.SessionID) ([]string, error) {
	session, err := s.Session(id)
	if err != nil {
		return nil, err
	}

	existing, err := s.inventory.ExistingCodes(ctx, importer.Codes(session))
	if err != nil {
		return nil, apperrors.Wrap(err, "duplicate-code check failed")
	}

	if flagged := importer.FlagCodeCollisions(session, existing); flagged > 0 {
		s.logger.Warn("import session %s: %d code collisions flagged", id, flagged)
	}
	return existing, nil
}

// ValidateCodes returns the subset of candidate codes that already exist in
// the active inventory. Used by the wizard before a session even has a
// complete mapping.
func (s *ImportService) ValidateCodes(ctx context.Context, codes []string) ([]string, error) {
	existing, err := s.inventory.ExistingCodes(ctx, codes)
	if err != nil {
		return nil, apperrors.Wrap(err, "duplicate-code check failed")
	}
	return existing, nil
}

// CommitResult reports what a commit persisted.
type CommitResult struct {
	PointIDs      []core.PointID `json:"point_ids"`
	ImagesOK      int            `json:"images_ok"`
	ImagesFailed  int            `json:"images_failed"`
	RowsCommitted int            `json:"rows_committed"`
}

// Commit persists the session's rows in one all-or-nothing batch, then
// attaches images best-effort. The session is destroyed only on success, so
// a failed commit stays editable.
func (s *ImportService) Commit(ctx context.Context, id core.SessionID, imagesByRow map[int][]ports.PointImage) (*CommitResult, error) {
	session, err := s.Session(id)
	if err != nil {
		return nil, err
	}

	// Re-run the collision preflight so a code imported by someone else
	// since the last check still blocks.
	if _, err := s.PreflightCodes(ctx, id); err != nil {
		return nil, err
	}

	rows, err := importer.BuildRows(session)
	if err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}

	ids, err := s.inventory.BatchInsert(ctx, session.ExhibitorID, rows)
	if err != nil {
		return nil, apperrors.Wrap(err, "batch insert failed, no rows were committed")
	}

	result := &CommitResult{PointIDs: ids, RowsCommitted: len(ids)}
	result.ImagesOK, result.ImagesFailed = s.attachImages(ctx, ids, imagesByRow)

	s.Close(id)
	s.logger.Info("import session %s committed: %d points, %d images (%d image failures)",
		id, len(ids), result.ImagesOK, result.ImagesFailed)
	return result, nil
}

// attachImages uploads row images with bounded concurrency. Failures are
// logged and counted; the committed rows are final either way.
func (s *ImportService) attachImages(ctx context.Context, ids []core.PointID, imagesByRow map[int][]ports.PointImage) (ok, failed int) {
	if s.images == nil || len(imagesByRow) == 0 {
		return 0, 0
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for rowIdx, rowImages := range imagesByRow {
		if rowIdx < 0 || rowIdx >= len(ids) {
			continue
		}
		pointID := ids[rowIdx]
		for _, img := range rowImages {
			img := img
			g.Go(func() error {
				err := s.images.AttachImage(gctx, pointID, img)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed++
					s.logger.Warn("image attach failed for point %d: %v", pointID, err)
					// Best-effort: never propagate, never cancel siblings.
					return nil
				}
				ok++
				return nil
			})
		}
	}
	_ = g.Wait()
	return ok, failed
}

// Close discards a session.
func (s *ImportService) Close(id core.SessionID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
