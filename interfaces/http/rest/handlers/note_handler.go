package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mindgraph/application/services"
	pkgerrors "mindgraph/pkg/errors"
)

// NoteHandler serves per-note endpoints: related-note suggestions and
// single-note connection scans
type NoteHandler struct {
	suggestions *services.SuggestionService
	scans       *services.ScanService
	errors      *pkgerrors.ErrorHandler
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(
	suggestions *services.SuggestionService,
	scans *services.ScanService,
	errors *pkgerrors.ErrorHandler,
) *NoteHandler {
	return &NoteHandler{
		suggestions: suggestions,
		scans:       scans,
		errors:      errors,
	}
}

// GetSuggestions handles GET /api/v1/notes/{noteID}/suggestions
func (h *NoteHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")
	if noteID == "" {
		h.errors.Handle(w, r, pkgerrors.NewValidation("note id is required"))
		return
	}

	suggestions, err := h.suggestions.RelatedNotes(r.Context(), noteID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"note_id":     noteID,
		"suggestions": suggestions,
	})
}

// ScanNote handles POST /api/v1/notes/{noteID}/scan. The pass runs
// synchronously; batch scans over all notes go through POST /api/v1/scan.
func (h *NoteHandler) ScanNote(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")
	if noteID == "" {
		h.errors.Handle(w, r, pkgerrors.NewValidation("note id is required"))
		return
	}

	result, err := h.scans.ScanNote(r.Context(), noteID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
