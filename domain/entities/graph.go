package entities

import "time"

// GraphNode is a render-ready node in the unified knowledge graph.
// The contract is deliberately plain (primitive fields, no layout state)
// so any layout engine can consume it.
type GraphNode struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Type       EntityType   `json:"type"`
	Importance float64      `json:"importance"`
	Content    string       `json:"content"`
	Group      int          `json:"group"`
	Selected   bool         `json:"selected"`
	Metadata   NodeMetadata `json:"metadata"`
}

// GraphLink is a render-ready edge. Type and strength drive downstream
// stroke, width and spring-strength mapping.
type GraphLink struct {
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Type     ConnectionType `json:"type"`
	Strength float64        `json:"strength"`
}

// GraphData is the assembled graph handed to the visualization consumer
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// NodeMetadata is a tagged union keyed by the node's entity type.
// Exactly one of the pointers is set; consumers switch on GraphNode.Type
// and must handle all three variants.
type NodeMetadata struct {
	Note     *NoteMetadata     `json:"note,omitempty"`
	Episode  *EpisodeMetadata  `json:"episode,omitempty"`
	Document *DocumentMetadata `json:"document,omitempty"`
}

// NoteMetadata carries note-specific presentation fields
type NoteMetadata struct {
	FolderID  string    `json:"folder_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EpisodeMetadata carries episode-specific presentation fields
type EpisodeMetadata struct {
	Role      string    `json:"role"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentMetadata carries document-specific presentation fields
type DocumentMetadata struct {
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}
