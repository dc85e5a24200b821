package services

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindgraph/domain/entities"
)

func assemblerFixtures() ([]entities.Note, []entities.Episode, []entities.Document) {
	now := time.Now()
	notes := []entities.Note{
		{ID: "n1", Title: "Plan", Content: strings.Repeat("x", 250), FolderID: "f1", CreatedAt: now, UpdatedAt: now},
	}
	episodes := []entities.Episode{
		{ID: "e1", Role: "user", Content: "hello there", Importance: 0.7, Source: "chat", CreatedAt: now},
	}
	documents := []entities.Document{
		{ID: "d1", Title: "Report", ContentText: strings.Repeat("y", 300), MimeType: "application/pdf", CreatedAt: now},
	}
	return notes, episodes, documents
}

func TestAssemble_PrefixedIDsAndGroups(t *testing.T) {
	assembler := NewGraphAssembler()
	notes, episodes, documents := assemblerFixtures()

	graph := assembler.Assemble(AssembleInput{Notes: notes, Episodes: episodes, Documents: documents})

	require.Len(t, graph.Nodes, 3)
	byID := make(map[string]entities.GraphNode)
	for _, n := range graph.Nodes {
		byID[n.ID] = n
	}

	require.Contains(t, byID, "note-n1")
	require.Contains(t, byID, "episode-e1")
	require.Contains(t, byID, "document-d1")

	assert.Equal(t, 0, byID["note-n1"].Group)
	assert.Equal(t, 1, byID["episode-e1"].Group)
	assert.Equal(t, 2, byID["document-d1"].Group)
}

func TestAssemble_ImportanceNormalization(t *testing.T) {
	assembler := NewGraphAssembler()
	notes, episodes, documents := assemblerFixtures()

	graph := assembler.Assemble(AssembleInput{Notes: notes, Episodes: episodes, Documents: documents})

	byID := make(map[string]entities.GraphNode)
	for _, n := range graph.Nodes {
		byID[n.ID] = n
	}

	// note: min(250/100, 5); document: min(300/200, 5); episode: raw 0-1
	assert.InDelta(t, 2.5, byID["note-n1"].Importance, 1e-9)
	assert.InDelta(t, 1.5, byID["document-d1"].Importance, 1e-9)
	assert.InDelta(t, 0.7, byID["episode-e1"].Importance, 1e-9)
}

func TestAssemble_ImportanceCappedAtFive(t *testing.T) {
	assembler := NewGraphAssembler()
	notes := []entities.Note{
		{ID: "n1", Title: "Huge", Content: strings.Repeat("x", 10000)},
	}

	graph := assembler.Assemble(AssembleInput{Notes: notes})

	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, 5.0, graph.Nodes[0].Importance)
}

func TestAssemble_VisibleTypesFilter(t *testing.T) {
	assembler := NewGraphAssembler()
	notes, episodes, documents := assemblerFixtures()

	graph := assembler.Assemble(AssembleInput{
		Notes:     notes,
		Episodes:  episodes,
		Documents: documents,
		Visible:   map[entities.EntityType]bool{entities.EntityTypeNote: true},
	})

	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, entities.EntityTypeNote, graph.Nodes[0].Type)
}

func TestAssemble_DropsLinksToHiddenNodes(t *testing.T) {
	assembler := NewGraphAssembler()
	notes, episodes, documents := assemblerFixtures()

	connections := []entities.Connection{
		{SourceID: "note-n1", TargetID: "episode-e1", Type: entities.ConnectionTypeTemporal, Strength: 0.9},
	}

	graph := assembler.Assemble(AssembleInput{
		Notes:       notes,
		Episodes:    episodes,
		Documents:   documents,
		Connections: connections,
		Visible:     map[entities.EntityType]bool{entities.EntityTypeNote: true, entities.EntityTypeDocument: true},
	})

	assert.Empty(t, graph.Links)
}

func TestAssemble_LinksCarryTypeAndStrength(t *testing.T) {
	assembler := NewGraphAssembler()
	notes, episodes, documents := assemblerFixtures()

	connections := []entities.Connection{
		{SourceID: "note-n1", TargetID: "episode-e1", Type: entities.ConnectionTypeSemantic, Strength: 0.42},
	}

	graph := assembler.Assemble(AssembleInput{
		Notes:       notes,
		Episodes:    episodes,
		Documents:   documents,
		Connections: connections,
	})

	require.Len(t, graph.Links, 1)
	assert.Equal(t, entities.ConnectionTypeSemantic, graph.Links[0].Type)
	assert.Equal(t, 0.42, graph.Links[0].Strength)
}

func TestAssemble_SelectedFlagSetAtAssemblyTime(t *testing.T) {
	assembler := NewGraphAssembler()
	notes, episodes, documents := assemblerFixtures()

	graph := assembler.Assemble(AssembleInput{
		Notes:      notes,
		Episodes:   episodes,
		Documents:  documents,
		SelectedID: "note-n1",
	})

	for _, n := range graph.Nodes {
		assert.Equal(t, n.ID == "note-n1", n.Selected)
	}
}

func TestAssemble_EpisodeTitleTruncated(t *testing.T) {
	assembler := NewGraphAssembler()
	episodes := []entities.Episode{
		{ID: "e1", Role: "user", Content: strings.Repeat("x", 100)},
	}

	graph := assembler.Assemble(AssembleInput{Episodes: episodes})

	require.Len(t, graph.Nodes, 1)
	title := graph.Nodes[0].Title
	assert.Equal(t, strings.Repeat("x", 57)+"...", title)
	assert.LessOrEqual(t, len(title), 60)
}

func TestAssemble_EpisodeTitleTruncatesOnRuneBoundary(t *testing.T) {
	assembler := NewGraphAssembler()
	// 40 two-byte runes; a byte-oriented cut at 57 would land mid-rune
	episodes := []entities.Episode{
		{ID: "e1", Role: "user", Content: strings.Repeat("é", 40)},
	}

	graph := assembler.Assemble(AssembleInput{Episodes: episodes})

	require.Len(t, graph.Nodes, 1)
	title := graph.Nodes[0].Title
	assert.True(t, utf8.ValidString(title))
	assert.Equal(t, strings.Repeat("é", 28)+"...", title)
}

func TestAssemble_EmptyEpisodeContentFallsBackToRole(t *testing.T) {
	assembler := NewGraphAssembler()
	episodes := []entities.Episode{{ID: "e1", Role: "assistant"}}

	graph := assembler.Assemble(AssembleInput{Episodes: episodes})

	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, "assistant message", graph.Nodes[0].Title)
}

func TestAssemble_MetadataTaggedByType(t *testing.T) {
	assembler := NewGraphAssembler()
	notes, episodes, documents := assemblerFixtures()

	graph := assembler.Assemble(AssembleInput{Notes: notes, Episodes: episodes, Documents: documents})

	for _, n := range graph.Nodes {
		switch n.Type {
		case entities.EntityTypeNote:
			require.NotNil(t, n.Metadata.Note)
			assert.Nil(t, n.Metadata.Episode)
			assert.Nil(t, n.Metadata.Document)
			assert.Equal(t, "f1", n.Metadata.Note.FolderID)
		case entities.EntityTypeEpisode:
			require.NotNil(t, n.Metadata.Episode)
			assert.Equal(t, "user", n.Metadata.Episode.Role)
			assert.Equal(t, "chat", n.Metadata.Episode.Source)
		case entities.EntityTypeDocument:
			require.NotNil(t, n.Metadata.Document)
			assert.Equal(t, "application/pdf", n.Metadata.Document.MimeType)
		default:
			t.Fatalf("unexpected node type %q", n.Type)
		}
	}
}
