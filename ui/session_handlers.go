package ui

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"oohdesk/domain/core"
	"oohdesk/domain/importer"
	apperrors "oohdesk/internal/errors"
	"oohdesk/ports"
)

// sessionView is the grid state the client renders after every mutation.
type sessionView struct {
	ID              core.SessionID             `json:"id"`
	ExhibitorID     core.ExhibitorID           `json:"exhibitor_id"`
	ExhibitorName   string                     `json:"exhibitor_name"`
	Headers         []string                   `json:"headers"`
	Rows            [][]string                 `json:"rows"`
	Mapping         map[int]importer.FieldKind `json:"mapping"`
	MissingRequired []importer.FieldKind       `json:"missing_required"`
	Counts          importer.Counts            `json:"counts"`
	Cells           []importer.CellValidation  `json:"cells"`
	CanProceed      bool                       `json:"can_proceed"`
}

func newSessionView(s *importer.Session) sessionView {
	return sessionView{
		ID:              s.ID,
		ExhibitorID:     s.ExhibitorID,
		ExhibitorName:   s.ExhibitorName,
		Headers:         s.Headers,
		Rows:            s.Rows,
		Mapping:         s.Mapping.Snapshot(),
		MissingRequired: s.Mapping.MissingRequired(),
		Counts:          s.Counts(),
		Cells:           s.Validation.Issues(),
		CanProceed:      s.CanProceed(),
	}
}

func (a *App) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(a.maxUploadBytes); err != nil {
		respondError(w, apperrors.InvalidInput("expected multipart form with a spreadsheet file"))
		return
	}

	exhibitorID, err := strconv.ParseInt(r.FormValue("exhibitor_id"), 10, 64)
	if err != nil || exhibitorID <= 0 {
		respondError(w, apperrors.InvalidInput("exhibitor_id must be a positive integer"))
		return
	}
	exhibitorName := strings.TrimSpace(r.FormValue("exhibitor_name"))

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, apperrors.InvalidInput("missing spreadsheet file field"))
		return
	}
	defer file.Close()

	session, err := a.imports.CreateSession(core.ExhibitorID(exhibitorID), exhibitorName, file, header.Filename, header.Size)
	if err != nil {
		respondError(w, err)
		return
	}

	a.logger.Info("import session %s created for exhibitor %d (%d rows)", session.ID, exhibitorID, len(session.Rows))
	respondJSON(w, http.StatusCreated, newSessionView(session))
}

func (a *App) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.imports.Session(sessionIDParam(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}

func (a *App) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	a.imports.Close(sessionIDParam(r))
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleAssignColumn(w http.ResponseWriter, r *http.Request) {
	column, err := intParam(r, "column")
	if err != nil {
		respondError(w, err)
		return
	}

	var body struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.InvalidInput("invalid JSON body"))
		return
	}
	kind, err := importer.ParseFieldKind(body.Kind)
	if err != nil {
		respondError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	id := sessionIDParam(r)
	if err := a.imports.AssignColumn(id, column, kind); err != nil {
		respondError(w, err)
		return
	}

	session, err := a.imports.Session(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}

func (a *App) handleEditCell(w http.ResponseWriter, r *http.Request) {
	row, err := intParam(r, "row")
	if err != nil {
		respondError(w, err)
		return
	}
	column, err := intParam(r, "column")
	if err != nil {
		respondError(w, err)
		return
	}

	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.InvalidInput("invalid JSON body"))
		return
	}

	id := sessionIDParam(r)
	cell, err := a.imports.EditCell(id, row, column, body.Value)
	if err != nil {
		respondError(w, err)
		return
	}

	session, err := a.imports.Session(id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Cell    *importer.CellValidation `json:"cell"`
		Value   string                   `json:"value"`
		Counts  importer.Counts          `json:"counts"`
		Proceed bool                     `json:"can_proceed"`
	}{
		Cell:    cell,
		Value:   session.Rows[row][column],
		Counts:  session.Counts(),
		Proceed: session.CanProceed(),
	})
}

func (a *App) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.imports.Summary(sessionIDParam(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// handleValidateCodes checks arbitrary candidate codes against the active
// inventory, before a session even has a complete mapping.
func (a *App) handleValidateCodes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Codes []string `json:"codes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.InvalidInput("invalid JSON body"))
		return
	}
	if len(body.Codes) == 0 {
		respondError(w, apperrors.InvalidInput("codes must not be empty"))
		return
	}

	existing, err := a.imports.ValidateCodes(r.Context(), body.Codes)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Existing []string `json:"existing"`
	}{Existing: existing})
}

func (a *App) handlePreflightCodes(w http.ResponseWriter, r *http.Request) {
	collisions, err := a.imports.PreflightCodes(r.Context(), sessionIDParam(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Collisions []string `json:"collisions"`
		Clean      bool     `json:"clean"`
	}{Collisions: collisions, Clean: len(collisions) == 0})
}

// rowImageField matches multipart file fields carrying per-row images, e.g.
// row-3 for the third data row. The first file per row becomes the cover.
var rowImageField = regexp.MustCompile(`^row-(\d+)$`)

func (a *App) handleCommit(w http.ResponseWriter, r *http.Request) {
	imagesByRow := map[int][]ports.PointImage{}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/") {
		if err := r.ParseMultipartForm(a.maxUploadBytes); err != nil {
			respondError(w, apperrors.InvalidInput("invalid multipart form"))
			return
		}
		for field, files := range r.MultipartForm.File {
			m := rowImageField.FindStringSubmatch(field)
			if m == nil {
				continue
			}
			row, _ := strconv.Atoi(m[1])
			for order, fh := range files {
				f, err := fh.Open()
				if err != nil {
					continue
				}
				data, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					continue
				}
				imagesByRow[row] = append(imagesByRow[row], ports.PointImage{
					Data:     data,
					Order:    order,
					IsCover:  order == 0,
					MimeType: fh.Header.Get("Content-Type"),
				})
			}
		}
	}

	result, err := a.imports.Commit(r.Context(), sessionIDParam(r), imagesByRow)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func sessionIDParam(r *http.Request) core.SessionID {
	return core.SessionID(chi.URLParam(r, "sessionID"))
}

func intParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v < 0 {
		return 0, apperrors.InvalidInput(name + " must be a non-negative integer")
	}
	return v, nil
}
