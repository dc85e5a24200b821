package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"mindgraph/application/services"
	"mindgraph/domain/entities"
	pkgerrors "mindgraph/pkg/errors"
)

// CreateConnectionBody is the request payload for a manual connection.
// Strength is on the 0-1 scale used by the inference engine; the service
// rescales it for the backend.
type CreateConnectionBody struct {
	SourceNoteID string  `json:"source_note_id" validate:"required"`
	TargetNoteID string  `json:"target_note_id" validate:"required"`
	Type         string  `json:"connection_type" validate:"required,oneof=reference semantic temporal"`
	Strength     float64 `json:"strength" validate:"min=0,max=1"`
}

// ConnectionHandler serves user-initiated connection creation
type ConnectionHandler struct {
	connections *services.ConnectionService
	validate    *validator.Validate
	errors      *pkgerrors.ErrorHandler
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(connections *services.ConnectionService, errors *pkgerrors.ErrorHandler) *ConnectionHandler {
	return &ConnectionHandler{
		connections: connections,
		validate:    validator.New(),
		errors:      errors,
	}
}

// CreateConnection handles POST /api/v1/connections. An already-existing
// edge surfaces as 409 via the error handler.
func (h *ConnectionHandler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	var body CreateConnectionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidation("invalid request body"))
		return
	}

	if err := h.validate.Struct(body); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidation(err.Error()))
		return
	}

	err := h.connections.CreateManualConnection(
		r.Context(),
		body.SourceNoteID,
		body.TargetNoteID,
		entities.ConnectionType(body.Type),
		body.Strength,
	)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}
