package services

import (
	"math"
	"unicode/utf8"

	"mindgraph/domain/entities"
)

// Importance normalization divisors. Episodes carry their own 0-1
// importance and are used unscaled alongside the 0-5 scale below; the
// mixed scales are preserved from the original behavior because the
// downstream visual calibration depends on them.
const (
	noteImportanceDivisor     = 100.0
	documentImportanceDivisor = 200.0
	maxDerivedImportance      = 5.0
)

// AssembleInput carries one build's worth of source data into the assembler
type AssembleInput struct {
	Notes     []entities.Note
	Episodes  []entities.Episode
	Documents []entities.Document

	// Connections are the candidate edges for this build, keyed by
	// type-prefixed node ids
	Connections []entities.Connection

	// Visible toggles each entity type on or off; a nil map shows everything
	Visible map[entities.EntityType]bool

	// SelectedID flags the currently selected node, if any, in its
	// presentation metadata
	SelectedID string
}

// GraphAssembler builds the unified, render-ready node/edge structure
// across all visible entity types
type GraphAssembler struct{}

// NewGraphAssembler creates a new graph assembler
func NewGraphAssembler() *GraphAssembler {
	return &GraphAssembler{}
}

// Assemble filters each source collection through the visible-types set,
// normalizes importance, and emits the final node and link arrays. Links
// whose endpoints fall outside the visible node set are dropped so the
// output is always self-consistent.
func (ga *GraphAssembler) Assemble(in AssembleInput) entities.GraphData {
	nodes := make([]entities.GraphNode, 0, len(in.Notes)+len(in.Episodes)+len(in.Documents))

	if in.visible(entities.EntityTypeNote) {
		for _, note := range in.Notes {
			nodes = append(nodes, ga.noteNode(note, in.SelectedID))
		}
	}
	if in.visible(entities.EntityTypeEpisode) {
		for _, episode := range in.Episodes {
			nodes = append(nodes, ga.episodeNode(episode, in.SelectedID))
		}
	}
	if in.visible(entities.EntityTypeDocument) {
		for _, document := range in.Documents {
			nodes = append(nodes, ga.documentNode(document, in.SelectedID))
		}
	}

	nodeIDs := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		nodeIDs[n.ID] = struct{}{}
	}

	links := make([]entities.GraphLink, 0, len(in.Connections))
	for _, c := range in.Connections {
		if _, ok := nodeIDs[c.SourceID]; !ok {
			continue
		}
		if _, ok := nodeIDs[c.TargetID]; !ok {
			continue
		}
		links = append(links, entities.GraphLink{
			Source:   c.SourceID,
			Target:   c.TargetID,
			Type:     c.Type,
			Strength: c.Strength,
		})
	}

	return entities.GraphData{Nodes: nodes, Links: links}
}

func (in AssembleInput) visible(t entities.EntityType) bool {
	if in.Visible == nil {
		return true
	}
	return in.Visible[t]
}

func (ga *GraphAssembler) noteNode(note entities.Note, selectedID string) entities.GraphNode {
	id := entities.NodeID(entities.EntityTypeNote, note.ID)
	return entities.GraphNode{
		ID:         id,
		Title:      note.Title,
		Type:       entities.EntityTypeNote,
		Importance: math.Min(float64(len(note.Content))/noteImportanceDivisor, maxDerivedImportance),
		Content:    note.Content,
		Group:      entities.EntityTypeNote.Ordinal(),
		Selected:   id == selectedID,
		Metadata: entities.NodeMetadata{
			Note: &entities.NoteMetadata{
				FolderID:  note.FolderID,
				CreatedAt: note.CreatedAt,
				UpdatedAt: note.UpdatedAt,
			},
		},
	}
}

func (ga *GraphAssembler) episodeNode(episode entities.Episode, selectedID string) entities.GraphNode {
	id := entities.NodeID(entities.EntityTypeEpisode, episode.ID)
	return entities.GraphNode{
		ID:    id,
		Title: episodeTitle(episode),
		Type:  entities.EntityTypeEpisode,
		// Episode importance is the entity's own 0-1 field, unscaled
		Importance: episode.Importance,
		Content:    episode.Content,
		Group:      entities.EntityTypeEpisode.Ordinal(),
		Selected:   id == selectedID,
		Metadata: entities.NodeMetadata{
			Episode: &entities.EpisodeMetadata{
				Role:      episode.Role,
				Source:    episode.Source,
				CreatedAt: episode.CreatedAt,
			},
		},
	}
}

func (ga *GraphAssembler) documentNode(document entities.Document, selectedID string) entities.GraphNode {
	id := entities.NodeID(entities.EntityTypeDocument, document.ID)
	return entities.GraphNode{
		ID:         id,
		Title:      document.Title,
		Type:       entities.EntityTypeDocument,
		Importance: math.Min(float64(len(document.ContentText))/documentImportanceDivisor, maxDerivedImportance),
		Content:    document.ContentText,
		Group:      entities.EntityTypeDocument.Ordinal(),
		Selected:   id == selectedID,
		Metadata: entities.NodeMetadata{
			Document: &entities.DocumentMetadata{
				MimeType:  document.MimeType,
				CreatedAt: document.CreatedAt,
			},
		},
	}
}

// episodeTitle derives a display title from the episode content since
// episodes have no title of their own
func episodeTitle(episode entities.Episode) string {
	const maxTitleLength = 60

	title := episode.Content
	if len(title) > maxTitleLength {
		cut := maxTitleLength - 3
		// Back up to a rune boundary so the cut never splits a multi-byte
		// character
		for cut > 0 && !utf8.RuneStart(title[cut]) {
			cut--
		}
		title = title[:cut] + "..."
	}
	if title == "" {
		title = episode.Role + " message"
	}
	return title
}
