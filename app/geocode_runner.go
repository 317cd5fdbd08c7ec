package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"oohdesk/domain/core"
	"oohdesk/domain/geo"
	"oohdesk/internal"
	"oohdesk/ports"
)

// maxConsecutiveFailures ends a run when the service cannot be reached at
// all; individual row failures below this threshold are counted and
// skipped, never fatal.
const maxConsecutiveFailures = 10

// GeocodeProgress is the live state of one geocode run.
type GeocodeProgress struct {
	Total     int  `json:"total"`
	Processed int  `json:"processed"`
	Succeeded int  `json:"succeeded"`
	Skipped   int  `json:"skipped"`
	Failed    int  `json:"failed"`
	Retries   int  `json:"retries"`
	Done      bool `json:"done"`
	Aborted   bool `json:"aborted"`
}

// GeocodeRunner resolves a sheet of addresses into markers on a map layer.
// Rows are processed strictly sequentially: the external service enforces a
// per-second quota that concurrent calls would blow through.
type GeocodeRunner struct {
	geocoder ports.Geocoder
	layers   ports.LayerRepository
	logger   *internal.Logger

	rowDelay time.Duration
	backoff  time.Duration

	// sleep is replaceable in tests so runs do not actually wait.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGeocodeRunner creates a runner. The back-off must exceed the per-row
// delay; config validation guarantees that for the wired instance.
func NewGeocodeRunner(geocoder ports.Geocoder, layers ports.LayerRepository, logger *internal.Logger, rowDelay, backoff time.Duration) *GeocodeRunner {
	return &GeocodeRunner{
		geocoder: geocoder,
		layers:   layers,
		logger:   logger,
		rowDelay: rowDelay,
		backoff:  backoff,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run geocodes every row's address into a marker on the target layer.
// addressColumns are joined in order with ", " to form the query; rows with
// an empty address are skipped but still count as processed. Progress is
// persisted incrementally, and one final persist of the full marker list
// happens on every exit path. The run stops quietly when the layer is
// deleted mid-flight.
func (r *GeocodeRunner) Run(ctx context.Context, layerID core.LayerID, rows [][]string, addressColumns []int, onProgress func(GeocodeProgress)) (GeocodeProgress, error) {
	progress := GeocodeProgress{Total: len(rows)}
	report := func() {
		if onProgress != nil {
			onProgress(progress)
		}
	}

	layer, err := r.layers.GetLayer(ctx, layerID)
	if err != nil {
		return progress, err
	}
	markers := append([]geo.Marker(nil), layer.Markers...)

	finalPersist := func() {
		// Best-effort: the incremental persists already captured the work.
		if err := r.layers.ReplaceMarkers(ctx, layerID, markers); err != nil {
			r.logger.Warn("final marker persist for layer %s failed: %v", layerID, err)
		}
	}

	consecutiveFailures := 0
	for i := 0; i < len(rows); i++ {
		// Cooperative cancellation, once per row.
		if ctx.Err() != nil {
			progress.Aborted = true
			finalPersist()
			return progress, ctx.Err()
		}
		exists, err := r.layers.LayerExists(ctx, layerID)
		if err == nil && !exists {
			// Layer deleted mid-run: stop immediately, not an error.
			// Unlike other exits there is no final persist here; the
			// layer row is gone and has nothing to write back to.
			progress.Aborted = true
			return progress, nil
		}

		address := joinAddress(rows[i], addressColumns)
		if address == "" {
			progress.Processed++
			progress.Skipped++
			report()
			continue
		}

		result, err := r.geocoder.Geocode(ctx, address)
		switch {
		case errors.Is(err, ports.ErrRateLimited):
			// Back off and retry the same row rather than skipping it.
			progress.Retries++
			r.logger.Warn("geocode rate-limited on row %d, backing off %s", i, r.backoff)
			if err := r.sleep(ctx, r.backoff); err != nil {
				progress.Aborted = true
				finalPersist()
				return progress, err
			}
			i--
			continue
		case errors.Is(err, ports.ErrNoMatch):
			progress.Processed++
			progress.Failed++
			consecutiveFailures = 0
		case err != nil:
			progress.Processed++
			progress.Failed++
			consecutiveFailures++
			if consecutiveFailures >= maxConsecutiveFailures {
				finalPersist()
				return progress, errors.New("geocoding service unreachable, run aborted")
			}
		default:
			consecutiveFailures = 0
			markers = append(markers, geo.Marker{
				ID:          core.MarkerID(core.NewID()),
				Latitude:    result.Latitude,
				Longitude:   result.Longitude,
				Title:       address,
				Description: result.FormattedAddress,
			})
			if err := r.layers.ReplaceMarkers(ctx, layerID, markers); err != nil {
				r.logger.Warn("incremental marker persist failed on row %d: %v", i, err)
			}
			progress.Processed++
			progress.Succeeded++
		}
		report()

		// Fixed pause between rows regardless of outcome, to stay under
		// the service quota.
		if i < len(rows)-1 {
			if err := r.sleep(ctx, r.rowDelay); err != nil {
				progress.Aborted = true
				finalPersist()
				return progress, err
			}
		}
	}

	progress.Done = true
	report()
	finalPersist()
	r.logger.Info("geocode run for layer %s finished: %d/%d succeeded, %d failed, %d skipped",
		layerID, progress.Succeeded, progress.Total, progress.Failed, progress.Skipped)
	return progress, nil
}

func joinAddress(row []string, columns []int) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		if col < 0 || col >= len(row) {
			continue
		}
		if part := strings.TrimSpace(row[col]); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}
