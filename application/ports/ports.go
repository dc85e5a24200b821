// Package ports defines the interfaces the application layer depends on.
// Infrastructure adapters implement them; tests substitute fakes.
package ports

import (
	"context"
	"time"

	"mindgraph/domain/entities"
)

// EntitySource fetches the three source collections from the assistant
// backend. Implementations must treat each collection independently: a
// failure fetching one never affects the others.
type EntitySource interface {
	ListNotes(ctx context.Context) ([]entities.Note, error)
	ListEpisodes(ctx context.Context) ([]entities.Episode, error)
	ListDocuments(ctx context.Context) ([]entities.Document, error)
}

// CreateConnectionRequest is the persistence payload for one connection.
// Strength is on the backend's integer 0-100 scale.
type CreateConnectionRequest struct {
	TargetNoteID  string                  `json:"target_note_id" validate:"required"`
	Type          entities.ConnectionType `json:"connection_type" validate:"required,oneof=reference semantic temporal"`
	Strength      int                     `json:"strength" validate:"min=0,max=100"`
	AutoGenerated bool                    `json:"auto_generated"`
}

// ConnectionStore reads and writes persisted note connections.
// CreateConnection must return a conflict-typed error for an
// already-existing edge (backend 409) and an unavailable-typed error for
// transport failures, so callers can tell a no-op from a dead upstream.
type ConnectionStore interface {
	ListNoteConnections(ctx context.Context, noteID string) ([]entities.ConnectionRecord, error)
	CreateConnection(ctx context.Context, noteID string, req CreateConnectionRequest) error
}

// OperationStatus tracks the lifecycle of a long-running scan
type OperationStatus string

const (
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
)

// OperationResult is the recorded outcome of a batch scan operation
type OperationResult struct {
	OperationID        string          `json:"operation_id"`
	Status             OperationStatus `json:"status"`
	StartedAt          time.Time       `json:"started_at"`
	CompletedAt        time.Time       `json:"completed_at,omitempty"`
	NotesScanned       int             `json:"notes_scanned"`
	ConnectionsCreated int             `json:"connections_created"`
	Conflicts          int             `json:"conflicts"`
	Failures           int             `json:"failures"`
	Error              string          `json:"error,omitempty"`
}

// OperationStore persists scan operation results for status polling
type OperationStore interface {
	Store(ctx context.Context, result *OperationResult) error
	Get(ctx context.Context, operationID string) (*OperationResult, error)
	Update(ctx context.Context, operationID string, result *OperationResult) error
}
