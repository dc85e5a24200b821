package entities

import "time"

// EntityType identifies which source collection an entity came from
type EntityType string

const (
	EntityTypeNote     EntityType = "note"
	EntityTypeEpisode  EntityType = "episode"
	EntityTypeDocument EntityType = "document"
)

// Ordinal returns a stable index for the entity type, used as the node
// group for optional clustering in the layout
func (t EntityType) Ordinal() int {
	switch t {
	case EntityTypeNote:
		return 0
	case EntityTypeEpisode:
		return 1
	case EntityTypeDocument:
		return 2
	default:
		return -1
	}
}

// Valid reports whether the type names a known source collection
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeNote, EntityTypeEpisode, EntityTypeDocument:
		return true
	}
	return false
}

// Note is a user-authored note as returned by the assistant backend
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	FolderID  string    `json:"folder_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Episode is a single conversational turn captured by the assistant
type Episode struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Importance float64   `json:"importance"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

// Document is an uploaded file with extracted text
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ContentText string    `json:"content_text"`
	MimeType    string    `json:"mime_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// NodeID builds the type-prefixed graph node id for an entity.
// Prefixing keeps ids globally unique across the three collections.
func NodeID(entityType EntityType, id string) string {
	return string(entityType) + "-" + id
}
