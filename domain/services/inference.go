package services

import (
	"sync/atomic"
	"time"

	"mindgraph/domain/entities"
)

// InferenceConfig configures connection inference behavior
type InferenceConfig struct {
	// SemanticThreshold is the minimum lexical similarity for a semantic edge
	SemanticThreshold float64
	// MentionStrength is the fixed strength of mention-derived edges;
	// mentions are a binary signal, not independently scored
	MentionStrength float64
	// TemporalWindowHours bounds temporal-proximity scoring
	TemporalWindowHours float64
}

// DefaultInferenceConfig returns the default inference thresholds
func DefaultInferenceConfig() *InferenceConfig {
	return &InferenceConfig{
		SemanticThreshold:   0.1,
		MentionStrength:     0.5,
		TemporalWindowHours: DefaultTemporalWindowHours,
	}
}

// InferenceEngine orchestrates the link parser and similarity engine to
// produce candidate connections. Candidates are ephemeral; persistence is
// the scan service's concern.
type InferenceEngine struct {
	config     atomic.Pointer[InferenceConfig]
	parser     *LinkParser
	similarity *SimilarityEngine
}

// NewInferenceEngine creates a new inference engine
func NewInferenceEngine(config *InferenceConfig, parser *LinkParser, similarity *SimilarityEngine) *InferenceEngine {
	if config == nil {
		config = DefaultInferenceConfig()
	}
	if parser == nil {
		parser = NewLinkParser()
	}
	if similarity == nil {
		similarity = NewSimilarityEngine()
	}

	ie := &InferenceEngine{
		parser:     parser,
		similarity: similarity,
	}
	ie.config.Store(config)
	return ie
}

// SetConfig swaps the inference thresholds. Used by the config watcher on
// hot reload; each pass loads the config once at its start.
func (ie *InferenceEngine) SetConfig(config *InferenceConfig) {
	if config != nil {
		ie.config.Store(config)
	}
}

// visitedPairs tracks entity pairs already evaluated within a single
// build. It is keyed by both orderings of (a, b) so the reverse pair is
// skipped, which is what guarantees the undirected-dedup invariant.
// The set is always scoped to one build invocation, never package state,
// so builds stay reentrant.
type visitedPairs map[string]struct{}

// Visit marks the pair as evaluated. It returns false if either ordering
// was already seen.
func (v visitedPairs) Visit(a, b string) bool {
	if _, seen := v[a+"\x00"+b]; seen {
		return false
	}
	v[a+"\x00"+b] = struct{}{}
	v[b+"\x00"+a] = struct{}{}
	return true
}

// GenerateNoteConnections produces candidate connections from one note to
// its sibling notes via the parser path: explicit [[links]] become
// reference edges with strength 1.0, and plain-text title mentions become
// semantic edges unless a reference edge already covers the same pair.
// IDs in the result are raw note ids, matching the persistence contract.
func (ie *InferenceEngine) GenerateNoteConnections(note entities.Note, candidates []entities.Note) []entities.Connection {
	pairs := make(visitedPairs)
	return ie.noteParserConnections(ie.config.Load(), note, candidates, pairs, func(id string) string { return id })
}

// GenerateAllConnections produces the full candidate set for a graph
// build. Note-to-note pairs go exclusively through the parser path; every
// other pair is scored lexically and temporally, and may receive both a
// semantic and a temporal edge. IDs in the result are type-prefixed node
// ids.
func (ie *InferenceEngine) GenerateAllConnections(
	notes []entities.Note,
	episodes []entities.Episode,
	documents []entities.Document,
) []entities.Connection {
	cfg := ie.config.Load()
	pairs := make(visitedPairs)
	connections := make([]entities.Connection, 0)

	// Parser path for note-to-note pairs
	for _, note := range notes {
		others := make([]entities.Note, 0, len(notes)-1)
		for _, other := range notes {
			if other.ID != note.ID {
				others = append(others, other)
			}
		}
		connections = append(connections, ie.noteParserConnections(cfg, note, others, pairs, func(id string) string {
			return entities.NodeID(entities.EntityTypeNote, id)
		})...)
	}

	// Lexical/temporal path for everything else
	items := flattenEntities(notes, episodes, documents)
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			a, b := items[i], items[j]

			// Note pairs were handled by the parser path above
			if a.entityType == entities.EntityTypeNote && b.entityType == entities.EntityTypeNote {
				continue
			}
			if !pairs.Visit(a.nodeID, b.nodeID) {
				continue
			}

			if score := ie.similarity.LexicalSimilarity(a.text, b.text); score > cfg.SemanticThreshold {
				connections = append(connections, entities.Connection{
					SourceID: a.nodeID,
					TargetID: b.nodeID,
					Type:     entities.ConnectionTypeSemantic,
					Strength: score,
				})
			}
			if score := ie.similarity.TemporalProximity(a.createdAt, b.createdAt, cfg.TemporalWindowHours); score > 0 {
				connections = append(connections, entities.Connection{
					SourceID: a.nodeID,
					TargetID: b.nodeID,
					Type:     entities.ConnectionTypeTemporal,
					Strength: score,
				})
			}
		}
	}

	return connections
}

// noteParserConnections runs the reference-then-mention procedure for one
// note. The visited set is shared with the caller so a reference edge
// suppresses a mention edge for the same pair, and graph builds never emit
// a pair twice.
func (ie *InferenceEngine) noteParserConnections(
	cfg *InferenceConfig,
	note entities.Note,
	candidates []entities.Note,
	pairs visitedPairs,
	mapID func(string) string,
) []entities.Connection {
	refs := make([]EntityRef, 0, len(candidates))
	for _, c := range candidates {
		refs = append(refs, EntityRef{ID: c.ID, Title: c.Title})
	}

	connections := make([]entities.Connection, 0)
	sourceID := mapID(note.ID)

	for _, link := range ie.parser.ParseExplicitLinks(note.Content, refs) {
		if link.TargetID == "" {
			// Dangling reference: preserved in the parse result, never connected
			continue
		}
		targetID := mapID(link.TargetID)
		if !pairs.Visit(sourceID, targetID) {
			continue
		}
		connections = append(connections, entities.Connection{
			SourceID: sourceID,
			TargetID: targetID,
			Type:     entities.ConnectionTypeReference,
			Strength: 1.0,
		})
	}

	for _, mention := range ie.parser.FindMentions(note.Content, refs) {
		targetID := mapID(mention.TargetID)
		if !pairs.Visit(sourceID, targetID) {
			continue
		}
		connections = append(connections, entities.Connection{
			SourceID: sourceID,
			TargetID: targetID,
			Type:     entities.ConnectionTypeSemantic,
			Strength: cfg.MentionStrength,
		})
	}

	return connections
}

// pairItem is the unified view of an entity for pairwise scoring
type pairItem struct {
	nodeID     string
	entityType entities.EntityType
	text       string
	createdAt  time.Time
}

func flattenEntities(
	notes []entities.Note,
	episodes []entities.Episode,
	documents []entities.Document,
) []pairItem {
	items := make([]pairItem, 0, len(notes)+len(episodes)+len(documents))
	for _, n := range notes {
		items = append(items, pairItem{
			nodeID:     entities.NodeID(entities.EntityTypeNote, n.ID),
			entityType: entities.EntityTypeNote,
			text:       n.Title + " " + n.Content,
			createdAt:  n.CreatedAt,
		})
	}
	for _, e := range episodes {
		items = append(items, pairItem{
			nodeID:     entities.NodeID(entities.EntityTypeEpisode, e.ID),
			entityType: entities.EntityTypeEpisode,
			text:       e.Content,
			createdAt:  e.CreatedAt,
		})
	}
	for _, d := range documents {
		items = append(items, pairItem{
			nodeID:     entities.NodeID(entities.EntityTypeDocument, d.ID),
			entityType: entities.EntityTypeDocument,
			text:       d.Title + " " + d.ContentText,
			createdAt:  d.CreatedAt,
		})
	}
	return items
}
