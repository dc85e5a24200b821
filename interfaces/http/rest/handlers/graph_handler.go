package handlers

import (
	"net/http"
	"strings"

	"mindgraph/application/services"
	"mindgraph/domain/entities"
	pkgerrors "mindgraph/pkg/errors"
)

// GraphHandler serves the assembled knowledge graph
type GraphHandler struct {
	graphs *services.GraphService
	errors *pkgerrors.ErrorHandler
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(graphs *services.GraphService, errors *pkgerrors.ErrorHandler) *GraphHandler {
	return &GraphHandler{
		graphs: graphs,
		errors: errors,
	}
}

// GetGraphData handles GET /api/v1/graph-data. The optional "types" query
// parameter is a comma-separated list of entity types to include; absent
// means all types. "selected" flags one node in the response.
func (h *GraphHandler) GetGraphData(w http.ResponseWriter, r *http.Request) {
	visible, err := parseVisibleTypes(r.URL.Query().Get("types"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	graph, err := h.graphs.BuildGraph(r.Context(), services.BuildGraphOptions{
		Visible:    visible,
		SelectedID: r.URL.Query().Get("selected"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, graph)
}

func parseVisibleTypes(raw string) (map[entities.EntityType]bool, error) {
	if raw == "" {
		return nil, nil
	}

	visible := make(map[entities.EntityType]bool)
	for _, part := range strings.Split(raw, ",") {
		t := entities.EntityType(strings.TrimSpace(part))
		if !t.Valid() {
			return nil, pkgerrors.NewValidation("unknown entity type: " + string(t))
		}
		visible[t] = true
	}
	return visible, nil
}
