package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindgraph/application/ports"
	"mindgraph/application/services"
	"mindgraph/domain/entities"
	pkgerrors "mindgraph/pkg/errors"
	"mindgraph/pkg/observability"
)

type stubSource struct {
	notes []entities.Note
}

func (s *stubSource) ListNotes(ctx context.Context) ([]entities.Note, error) {
	return s.notes, nil
}

func (s *stubSource) ListEpisodes(ctx context.Context) ([]entities.Episode, error) {
	return nil, nil
}

func (s *stubSource) ListDocuments(ctx context.Context) ([]entities.Document, error) {
	return nil, nil
}

type stubStore struct {
	err error
}

func (s *stubStore) ListNoteConnections(ctx context.Context, noteID string) ([]entities.ConnectionRecord, error) {
	return nil, nil
}

func (s *stubStore) CreateConnection(ctx context.Context, noteID string, req ports.CreateConnectionRequest) error {
	return s.err
}

func TestParseVisibleTypes(t *testing.T) {
	visible, err := parseVisibleTypes("note,episode")
	require.NoError(t, err)
	assert.True(t, visible[entities.EntityTypeNote])
	assert.True(t, visible[entities.EntityTypeEpisode])
	assert.False(t, visible[entities.EntityTypeDocument])

	visible, err = parseVisibleTypes("")
	require.NoError(t, err)
	assert.Nil(t, visible)

	_, err = parseVisibleTypes("note,task")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func newGraphHandler(source *stubSource) *GraphHandler {
	logger := zap.NewNop()
	svc := services.NewGraphService(source, nil, nil, logger, observability.NewCollector("test"))
	return NewGraphHandler(svc, pkgerrors.NewErrorHandler(logger, false))
}

func TestGetGraphData_OK(t *testing.T) {
	handler := newGraphHandler(&stubSource{notes: []entities.Note{
		{ID: "n1", Title: "First", Content: "hello", CreatedAt: time.Now()},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/graph-data", nil)
	rec := httptest.NewRecorder()
	handler.GetGraphData(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var graph entities.GraphData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &graph))
	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, "note-n1", graph.Nodes[0].ID)
}

func TestGetGraphData_UnknownTypeRejected(t *testing.T) {
	handler := newGraphHandler(&stubSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/graph-data?types=note,task", nil)
	rec := httptest.NewRecorder()
	handler.GetGraphData(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func newConnectionHandler(store *stubStore) *ConnectionHandler {
	logger := zap.NewNop()
	svc := services.NewConnectionService(store, logger, observability.NewCollector("test"))
	return NewConnectionHandler(svc, pkgerrors.NewErrorHandler(logger, false))
}

func postConnection(t *testing.T, handler *ConnectionHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/connections", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.CreateConnection(rec, req)
	return rec
}

func TestCreateConnection_Created(t *testing.T) {
	handler := newConnectionHandler(&stubStore{})

	rec := postConnection(t, handler, `{
		"source_note_id": "a",
		"target_note_id": "b",
		"connection_type": "reference",
		"strength": 0.9
	}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateConnection_InvalidJSON(t *testing.T) {
	handler := newConnectionHandler(&stubStore{})

	rec := postConnection(t, handler, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateConnection_MissingFields(t *testing.T) {
	handler := newConnectionHandler(&stubStore{})

	rec := postConnection(t, handler, `{"source_note_id": "a"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateConnection_UnknownType(t *testing.T) {
	handler := newConnectionHandler(&stubStore{})

	rec := postConnection(t, handler, `{
		"source_note_id": "a",
		"target_note_id": "b",
		"connection_type": "causal",
		"strength": 0.5
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateConnection_ExistingEdgeConflicts(t *testing.T) {
	handler := newConnectionHandler(&stubStore{err: pkgerrors.NewConflict("connection already exists")})

	rec := postConnection(t, handler, `{
		"source_note_id": "a",
		"target_note_id": "b",
		"connection_type": "semantic",
		"strength": 0.5
	}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
