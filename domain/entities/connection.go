package entities

// ConnectionType classifies how a connection between two entities was inferred
type ConnectionType string

const (
	// ConnectionTypeReference is an explicit, author-authored [[link]]
	ConnectionTypeReference ConnectionType = "reference"
	// ConnectionTypeSemantic is inferred from lexical overlap or a title mention
	ConnectionTypeSemantic ConnectionType = "semantic"
	// ConnectionTypeTemporal is inferred from creation-time proximity
	ConnectionTypeTemporal ConnectionType = "temporal"
)

// Valid reports whether the type names a known connection kind
func (t ConnectionType) Valid() bool {
	switch t {
	case ConnectionTypeReference, ConnectionTypeSemantic, ConnectionTypeTemporal:
		return true
	}
	return false
}

// Connection is a candidate or rendered edge between two entities.
// Candidates are ephemeral and recomputed on every graph build; only the
// persistence layer turns them into durable backend records.
type Connection struct {
	SourceID string         `json:"source_id"`
	TargetID string         `json:"target_id"`
	Type     ConnectionType `json:"type"`
	Strength float64        `json:"strength"`
}

// ConnectionRecord is a connection already persisted by the assistant
// backend. Strength is stored there as an integer 0-100.
type ConnectionRecord struct {
	ID            string         `json:"id"`
	SourceNoteID  string         `json:"source_note_id"`
	TargetNoteID  string         `json:"target_note_id"`
	Type          ConnectionType `json:"connection_type"`
	Strength      int            `json:"strength"`
	AutoGenerated bool           `json:"auto_generated"`
}

// StrengthScale converts a 0-1 strength into the backend's 0-100 integer scale
func StrengthScale(strength float64) int {
	if strength < 0 {
		return 0
	}
	if strength > 1 {
		return 100
	}
	return int(strength*100 + 0.5)
}
