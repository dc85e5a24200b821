package services

import (
	"context"

	"go.uber.org/zap"

	"mindgraph/application/ports"
	"mindgraph/domain/entities"
	pkgerrors "mindgraph/pkg/errors"
	"mindgraph/pkg/observability"
)

// ConnectionService creates user-initiated connections. Manual edges
// bypass inference entirely but go through the same persistence contract
// as auto-generated ones, with auto_generated=false.
type ConnectionService struct {
	store   ports.ConnectionStore
	logger  *zap.Logger
	metrics *observability.Collector
}

// NewConnectionService creates a new connection service
func NewConnectionService(store ports.ConnectionStore, logger *zap.Logger, metrics *observability.Collector) *ConnectionService {
	return &ConnectionService{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// CreateManualConnection persists a user-created edge between two notes.
// Strength is on the 0-1 scale and rescaled for the backend. A conflict
// is returned to the caller unchanged so the API can report 409.
func (s *ConnectionService) CreateManualConnection(
	ctx context.Context,
	sourceID, targetID string,
	connectionType entities.ConnectionType,
	strength float64,
) error {
	if sourceID == "" || targetID == "" {
		return pkgerrors.NewValidation("source and target note ids are required")
	}
	if sourceID == targetID {
		return pkgerrors.NewValidation("a note cannot connect to itself")
	}
	if !connectionType.Valid() {
		return pkgerrors.NewValidation("unknown connection type: " + string(connectionType))
	}
	if strength < 0 || strength > 1 {
		return pkgerrors.NewValidation("strength must be between 0 and 1")
	}

	err := s.store.CreateConnection(ctx, sourceID, ports.CreateConnectionRequest{
		TargetNoteID:  targetID,
		Type:          connectionType,
		Strength:      entities.StrengthScale(strength),
		AutoGenerated: false,
	})
	if err != nil {
		return err
	}

	s.metrics.ConnectionsPersisted.Inc()
	s.logger.Info("manual connection created",
		zap.String("source_id", sourceID),
		zap.String("target_id", targetID),
		zap.String("type", string(connectionType)),
	)
	return nil
}
