package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"mindgraph/application/ports"
	"mindgraph/domain/entities"
	domain "mindgraph/domain/services"
	pkgerrors "mindgraph/pkg/errors"
	"mindgraph/pkg/observability"
)

// ScanResult summarizes one per-note reconciliation pass
type ScanResult struct {
	NoteID     string `json:"note_id"`
	Candidates int    `json:"candidates"`
	Created    int    `json:"created"`
	Conflicts  int    `json:"conflicts"`
	Dropped    int    `json:"dropped"`
}

// ScanService reconciles inferred candidate connections against the
// backend's persisted ones. Each POST is independent and
// conflict-idempotent, so a pass can never leave persistence partially
// corrupted; a concurrent scan racing this one just produces 409s.
type ScanService struct {
	source     ports.EntitySource
	store      ports.ConnectionStore
	operations ports.OperationStore
	inference  *domain.InferenceEngine
	logger     *zap.Logger
	metrics    *observability.Collector

	// limiter paces per-note passes during a batch scan
	limiter *rate.Limiter
}

// NewScanService creates a new scan service. scanInterval is the minimum
// spacing between per-note persistence passes in a batch scan.
func NewScanService(
	source ports.EntitySource,
	store ports.ConnectionStore,
	operations ports.OperationStore,
	inference *domain.InferenceEngine,
	logger *zap.Logger,
	metrics *observability.Collector,
	scanInterval time.Duration,
) *ScanService {
	if scanInterval <= 0 {
		scanInterval = 100 * time.Millisecond
	}
	return &ScanService{
		source:     source,
		store:      store,
		operations: operations,
		inference:  inference,
		logger:     logger,
		metrics:    metrics,
		limiter:    rate.NewLimiter(rate.Every(scanInterval), 1),
	}
}

// ScanNote runs one reconciliation pass for a single note: infer
// candidates against its sibling notes, skip targets that already have a
// persisted connection, and POST the rest as auto-generated edges.
func (s *ScanService) ScanNote(ctx context.Context, noteID string) (*ScanResult, error) {
	notes, err := s.source.ListNotes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list notes for scan")
	}

	note, others, found := splitNotes(notes, noteID)
	if !found {
		return nil, pkgerrors.NewNotFound("note not found: " + noteID)
	}

	return s.scanNote(ctx, note, others)
}

// ScanAll starts a batch scan over every note and returns an operation id
// immediately. The pass runs detached from the caller's request:
// persistence is fire-and-forget relative to the trigger, and idempotency
// on the backend substitutes for cancellation of in-flight scans.
func (s *ScanService) ScanAll(ctx context.Context) (string, error) {
	operationID := uuid.NewString()
	result := &ports.OperationResult{
		OperationID: operationID,
		Status:      ports.OperationStatusRunning,
		StartedAt:   time.Now(),
	}
	if err := s.operations.Store(ctx, result); err != nil {
		return "", pkgerrors.Wrap(err, "failed to record scan operation")
	}

	go s.runBatchScan(context.Background(), operationID)

	return operationID, nil
}

// Operation reports the status of a batch scan
func (s *ScanService) Operation(ctx context.Context, operationID string) (*ports.OperationResult, error) {
	return s.operations.Get(ctx, operationID)
}

func (s *ScanService) runBatchScan(ctx context.Context, operationID string) {
	result := &ports.OperationResult{
		OperationID: operationID,
		Status:      ports.OperationStatusRunning,
		StartedAt:   time.Now(),
	}

	// This goroutine is detached from any request, so no middleware
	// recoverer covers it; a panic here must fail the operation, not the
	// process
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("batch scan panicked",
				zap.String("operation_id", operationID),
				zap.Any("panic", rec),
			)
			result.Status = ports.OperationStatusFailed
			result.Error = fmt.Sprintf("panic: %v", rec)
			result.CompletedAt = time.Now()
			s.updateOperation(ctx, operationID, result)
		}
	}()

	notes, err := s.source.ListNotes(ctx)
	if err != nil {
		s.logger.Error("batch scan aborted: failed to list notes",
			zap.String("operation_id", operationID),
			zap.Error(err),
		)
		result.Status = ports.OperationStatusFailed
		result.Error = err.Error()
		result.CompletedAt = time.Now()
		s.updateOperation(ctx, operationID, result)
		return
	}

	for i, note := range notes {
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}

		others := make([]entities.Note, 0, len(notes)-1)
		others = append(others, notes[:i]...)
		others = append(others, notes[i+1:]...)

		scan, err := s.scanNote(ctx, note, others)
		if scan != nil {
			result.NotesScanned++
			result.ConnectionsCreated += scan.Created
			result.Conflicts += scan.Conflicts
			result.Failures += scan.Dropped
		}
		if err != nil {
			// Transport failure aborted the rest of this note's pass;
			// already-persisted connections stay intact, and the next
			// pass self-heals by re-fetching existing connections
			result.Failures++
			s.logger.Warn("per-note scan pass aborted",
				zap.String("operation_id", operationID),
				zap.String("note_id", note.ID),
				zap.Error(err),
			)
		}
	}

	result.Status = ports.OperationStatusCompleted
	result.CompletedAt = time.Now()
	s.updateOperation(ctx, operationID, result)

	s.logger.Info("batch scan completed",
		zap.String("operation_id", operationID),
		zap.Int("notes_scanned", result.NotesScanned),
		zap.Int("connections_created", result.ConnectionsCreated),
		zap.Int("conflicts", result.Conflicts),
		zap.Int("failures", result.Failures),
	)
}

func (s *ScanService) updateOperation(ctx context.Context, operationID string, result *ports.OperationResult) {
	if err := s.operations.Update(ctx, operationID, result); err != nil {
		s.logger.Error("failed to update scan operation",
			zap.String("operation_id", operationID),
			zap.Error(err),
		)
	}
}

// scanNote is the shared single-note pass. A conflict from the store is
// an already-existing edge and counts as success; any other persistence
// failure is logged and dropped with no retry; a transport failure aborts
// the remainder of the pass for this note.
func (s *ScanService) scanNote(ctx context.Context, note entities.Note, others []entities.Note) (*ScanResult, error) {
	start := time.Now()
	result := &ScanResult{NoteID: note.ID}

	candidates := s.inference.GenerateNoteConnections(note, others)
	result.Candidates = len(candidates)
	if len(candidates) == 0 {
		return result, nil
	}

	existing, err := s.store.ListNoteConnections(ctx, note.ID)
	if err != nil {
		return result, pkgerrors.Wrap(err, "failed to fetch existing connections")
	}

	connected := make(map[string]struct{}, len(existing))
	for _, record := range existing {
		if record.SourceNoteID == note.ID {
			connected[record.TargetNoteID] = struct{}{}
		} else {
			connected[record.SourceNoteID] = struct{}{}
		}
	}

	for _, candidate := range candidates {
		if _, ok := connected[candidate.TargetID]; ok {
			continue
		}

		err := s.store.CreateConnection(ctx, note.ID, ports.CreateConnectionRequest{
			TargetNoteID:  candidate.TargetID,
			Type:          candidate.Type,
			Strength:      entities.StrengthScale(candidate.Strength),
			AutoGenerated: true,
		})
		switch {
		case err == nil:
			result.Created++
			connected[candidate.TargetID] = struct{}{}
			s.metrics.ConnectionsPersisted.Inc()
		case pkgerrors.IsConflict(err):
			// The edge already exists; expected, not an error
			result.Conflicts++
			connected[candidate.TargetID] = struct{}{}
			s.metrics.ConnectionConflicts.Inc()
		case pkgerrors.IsUnavailable(err):
			s.metrics.PersistenceFailures.Inc()
			return result, pkgerrors.Wrap(err, "transport failure during scan pass")
		default:
			result.Dropped++
			s.metrics.PersistenceFailures.Inc()
			s.logger.Warn("dropping connection candidate",
				zap.String("note_id", note.ID),
				zap.String("target_id", candidate.TargetID),
				zap.String("type", string(candidate.Type)),
				zap.Error(err),
			)
		}
	}

	s.metrics.ScanDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

func splitNotes(notes []entities.Note, noteID string) (entities.Note, []entities.Note, bool) {
	var target entities.Note
	found := false
	others := make([]entities.Note, 0, len(notes))

	for _, n := range notes {
		if n.ID == noteID {
			target = n
			found = true
			continue
		}
		others = append(others, n)
	}

	return target, others, found
}
