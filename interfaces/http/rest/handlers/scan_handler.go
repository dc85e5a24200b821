package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mindgraph/application/services"
	pkgerrors "mindgraph/pkg/errors"
)

// ScanHandler serves batch scan operations
type ScanHandler struct {
	scans  *services.ScanService
	errors *pkgerrors.ErrorHandler
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scans *services.ScanService, errors *pkgerrors.ErrorHandler) *ScanHandler {
	return &ScanHandler{
		scans:  scans,
		errors: errors,
	}
}

// StartScan handles POST /api/v1/scan. The scan runs in the background;
// the response carries an operation id for status polling.
func (h *ScanHandler) StartScan(w http.ResponseWriter, r *http.Request) {
	operationID, err := h.scans.ScanAll(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"operation_id": operationID,
		"status":       "running",
	})
}

// GetOperation handles GET /api/v1/operations/{operationID}
func (h *ScanHandler) GetOperation(w http.ResponseWriter, r *http.Request) {
	operationID := chi.URLParam(r, "operationID")
	if operationID == "" {
		h.errors.Handle(w, r, pkgerrors.NewValidation("operation id is required"))
		return
	}

	result, err := h.scans.Operation(r.Context(), operationID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
