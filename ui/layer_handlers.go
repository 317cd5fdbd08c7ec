package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"oohdesk/app"
	"oohdesk/domain/core"
	apperrors "oohdesk/internal/errors"
)

// geocodeRun is one background geocode execution for a layer.
type geocodeRun struct {
	mu       sync.Mutex
	progress app.GeocodeProgress
	cancel   context.CancelFunc
	err      error
}

func (r *geocodeRun) snapshot() (app.GeocodeProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress, r.err
}

// runRegistry tracks at most one active geocode run per layer.
type runRegistry struct {
	mu   sync.Mutex
	runs map[core.LayerID]*geocodeRun
}

func newRunRegistry() *runRegistry {
	return &runRegistry{runs: make(map[core.LayerID]*geocodeRun)}
}

func (reg *runRegistry) start(layerID core.LayerID, cancel context.CancelFunc) (*geocodeRun, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if existing, ok := reg.runs[layerID]; ok {
		existing.mu.Lock()
		active := !existing.progress.Done && !existing.progress.Aborted && existing.err == nil
		existing.mu.Unlock()
		if active {
			return nil, false
		}
	}
	run := &geocodeRun{cancel: cancel}
	reg.runs[layerID] = run
	return run, true
}

func (reg *runRegistry) get(layerID core.LayerID) (*geocodeRun, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	run, ok := reg.runs[layerID]
	return run, ok
}

func (reg *runRegistry) drop(layerID core.LayerID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.runs, layerID)
}

type geocodeRequest struct {
	Rows           [][]string `json:"rows"`
	AddressColumns []int      `json:"address_columns"`
}

func (a *App) handleStartGeocode(w http.ResponseWriter, r *http.Request) {
	layerID, err := core.ParseLayerID(chi.URLParam(r, "layerID"))
	if err != nil {
		respondError(w, apperrors.InvalidInput("invalid layer id"))
		return
	}

	var req geocodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.InvalidInput("invalid JSON body"))
		return
	}
	if len(req.Rows) == 0 {
		respondError(w, apperrors.InvalidInput("rows must not be empty"))
		return
	}
	if len(req.AddressColumns) == 0 {
		respondError(w, apperrors.InvalidInput("address_columns must not be empty"))
		return
	}

	exists, err := a.layers.LayerExists(r.Context(), layerID)
	if err != nil {
		respondError(w, err)
		return
	}
	if !exists {
		respondError(w, apperrors.NotFound("layer"))
		return
	}

	// The run outlives the request; it carries its own context.
	ctx, cancel := context.WithCancel(context.Background())
	run, ok := a.runs.start(layerID, cancel)
	if !ok {
		cancel()
		respondJSON(w, http.StatusConflict, errorBody{
			Error: "a geocode run is already active for this layer",
			Code:  apperrors.CodeInvalidInput,
		})
		return
	}

	go func() {
		progress, runErr := a.runner.Run(ctx, layerID, req.Rows, req.AddressColumns, func(p app.GeocodeProgress) {
			run.mu.Lock()
			run.progress = p
			run.mu.Unlock()
		})
		run.mu.Lock()
		run.progress = progress
		run.err = runErr
		run.mu.Unlock()
		cancel()

		// A run that ended because its layer was deleted has no one
		// left to poll it; drop the entry instead of keeping its
		// progress queryable forever.
		if exists, err := a.layers.LayerExists(context.Background(), layerID); err == nil && !exists {
			a.runs.drop(layerID)
		}
	}()

	respondJSON(w, http.StatusAccepted, app.GeocodeProgress{Total: len(req.Rows)})
}

func (a *App) handleGeocodeProgress(w http.ResponseWriter, r *http.Request) {
	layerID, err := core.ParseLayerID(chi.URLParam(r, "layerID"))
	if err != nil {
		respondError(w, apperrors.InvalidInput("invalid layer id"))
		return
	}

	run, ok := a.runs.get(layerID)
	if !ok {
		respondError(w, apperrors.NotFound("geocode run"))
		return
	}

	progress, runErr := run.snapshot()
	resp := struct {
		app.GeocodeProgress
		Error string `json:"error,omitempty"`
	}{GeocodeProgress: progress}
	if runErr != nil && !progress.Aborted {
		resp.Error = runErr.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

func (a *App) handleCancelGeocode(w http.ResponseWriter, r *http.Request) {
	layerID, err := core.ParseLayerID(chi.URLParam(r, "layerID"))
	if err != nil {
		respondError(w, apperrors.InvalidInput("invalid layer id"))
		return
	}

	run, ok := a.runs.get(layerID)
	if !ok {
		respondError(w, apperrors.NotFound("geocode run"))
		return
	}

	run.cancel()
	w.WriteHeader(http.StatusNoContent)
}
