package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindgraph/application/ports"
	"mindgraph/domain/entities"
	domain "mindgraph/domain/services"
	"mindgraph/infrastructure/memory"
	pkgerrors "mindgraph/pkg/errors"
	"mindgraph/pkg/observability"
)

func newScanService(source *fakeSource, store *fakeConnectionStore) *ScanService {
	return NewScanService(
		source,
		store,
		memory.NewOperationStore(time.Hour),
		domain.NewInferenceEngine(nil, nil, nil),
		zap.NewNop(),
		observability.NewCollector("test"),
		time.Millisecond,
	)
}

func scanFixtureNotes() []entities.Note {
	now := time.Now()
	return []entities.Note{
		{ID: "a", Title: "Project Alpha", Content: "Kickoff notes, see [[Beta Plan]] for details", CreatedAt: now},
		{ID: "b", Title: "Beta Plan", Content: "Rollout schedule", CreatedAt: now},
	}
}

func TestScanNote_CreatesReferenceConnection(t *testing.T) {
	source := &fakeSource{notes: scanFixtureNotes()}
	store := &fakeConnectionStore{}
	svc := newScanService(source, store)

	result, err := svc.ScanNote(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Conflicts)

	require.Len(t, store.created, 1)
	call := store.created[0]
	assert.Equal(t, "a", call.noteID)
	assert.Equal(t, "b", call.req.TargetNoteID)
	assert.Equal(t, entities.ConnectionTypeReference, call.req.Type)
	assert.Equal(t, 100, call.req.Strength)
	assert.True(t, call.req.AutoGenerated)
}

func TestScanNote_ConflictCountsAsSuccess(t *testing.T) {
	source := &fakeSource{notes: scanFixtureNotes()}
	store := &fakeConnectionStore{
		createErr: func(string, ports.CreateConnectionRequest) error {
			return pkgerrors.NewConflict("connection already exists")
		},
	}
	svc := newScanService(source, store)

	result, err := svc.ScanNote(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Conflicts)
	assert.Equal(t, 0, result.Dropped)
}

func TestScanNote_SkipsAlreadyConnectedTargets(t *testing.T) {
	source := &fakeSource{notes: scanFixtureNotes()}
	store := &fakeConnectionStore{
		// Persisted in the reverse direction; the scan must still skip it
		existing: []entities.ConnectionRecord{
			{ID: "c1", SourceNoteID: "b", TargetNoteID: "a", Type: entities.ConnectionTypeReference, Strength: 100},
		},
	}
	svc := newScanService(source, store)

	result, err := svc.ScanNote(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 0, result.Created)
	assert.Empty(t, store.created)
}

func TestScanNote_DroppedCandidateDoesNotAbortPass(t *testing.T) {
	now := time.Now()
	source := &fakeSource{notes: []entities.Note{
		{ID: "a", Title: "Hub", Content: "Links to [[First]] and [[Second]]", CreatedAt: now},
		{ID: "b", Title: "First", Content: "x", CreatedAt: now},
		{ID: "c", Title: "Second", Content: "y", CreatedAt: now},
	}}
	store := &fakeConnectionStore{
		createErr: func(_ string, req ports.CreateConnectionRequest) error {
			if req.TargetNoteID == "b" {
				return pkgerrors.NewInternal("backend rejected payload", nil)
			}
			return nil
		},
	}
	svc := newScanService(source, store)

	result, err := svc.ScanNote(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Candidates)
	assert.Equal(t, 1, result.Dropped)
	assert.Equal(t, 1, result.Created)
	require.Len(t, store.created, 1)
	assert.Equal(t, "c", store.created[0].req.TargetNoteID)
}

func TestScanNote_TransportFailureAbortsPass(t *testing.T) {
	now := time.Now()
	source := &fakeSource{notes: []entities.Note{
		{ID: "a", Title: "Hub", Content: "Links to [[First]] and [[Second]]", CreatedAt: now},
		{ID: "b", Title: "First", Content: "x", CreatedAt: now},
		{ID: "c", Title: "Second", Content: "y", CreatedAt: now},
	}}
	store := &fakeConnectionStore{
		createErr: func(string, ports.CreateConnectionRequest) error {
			return pkgerrors.NewUnavailable("backend unreachable", nil)
		},
	}
	svc := newScanService(source, store)

	result, err := svc.ScanNote(context.Background(), "a")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnavailable(err))

	// The first failure aborted the pass; nothing was persisted
	assert.Equal(t, 0, result.Created)
	assert.Empty(t, store.created)
}

func TestScanNote_UnknownNote(t *testing.T) {
	source := &fakeSource{notes: scanFixtureNotes()}
	svc := newScanService(source, &fakeConnectionStore{})

	_, err := svc.ScanNote(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestScanAll_CompletesAndRecordsTotals(t *testing.T) {
	source := &fakeSource{notes: scanFixtureNotes()}
	store := &fakeConnectionStore{}
	svc := newScanService(source, store)

	operationID, err := svc.ScanAll(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, operationID)

	require.Eventually(t, func() bool {
		op, err := svc.Operation(context.Background(), operationID)
		return err == nil && op.Status == ports.OperationStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	op, err := svc.Operation(context.Background(), operationID)
	require.NoError(t, err)
	assert.Equal(t, 2, op.NotesScanned)
	assert.Equal(t, 1, op.ConnectionsCreated)
	assert.Equal(t, 0, op.Failures)
	assert.False(t, op.CompletedAt.IsZero())
}

func TestScanAll_SourceFailureMarksOperationFailed(t *testing.T) {
	source := &fakeSource{notesErr: pkgerrors.NewUnavailable("backend down", nil)}
	svc := newScanService(source, &fakeConnectionStore{})

	operationID, err := svc.ScanAll(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		op, err := svc.Operation(context.Background(), operationID)
		return err == nil && op.Status == ports.OperationStatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	op, err := svc.Operation(context.Background(), operationID)
	require.NoError(t, err)
	assert.NotEmpty(t, op.Error)
}

func TestScanAll_PanicMarksOperationFailed(t *testing.T) {
	source := &fakeSource{notes: scanFixtureNotes()}
	store := &fakeConnectionStore{
		createErr: func(string, ports.CreateConnectionRequest) error {
			panic("store blew up")
		},
	}
	svc := newScanService(source, store)

	operationID, err := svc.ScanAll(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		op, err := svc.Operation(context.Background(), operationID)
		return err == nil && op.Status == ports.OperationStatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	op, err := svc.Operation(context.Background(), operationID)
	require.NoError(t, err)
	assert.Contains(t, op.Error, "panic")
}

func TestOperation_UnknownID(t *testing.T) {
	svc := newScanService(&fakeSource{}, &fakeConnectionStore{})

	_, err := svc.Operation(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}
