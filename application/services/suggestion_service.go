package services

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"mindgraph/application/ports"
	"mindgraph/domain/entities"
	domain "mindgraph/domain/services"
	pkgerrors "mindgraph/pkg/errors"
)

// maxSuggestions caps the related-notes panel
const maxSuggestions = 10

// Suggestion pairs a note with its lexical similarity to the source note
type Suggestion struct {
	Note       entities.Note `json:"note"`
	Similarity float64       `json:"similarity"`
}

// SuggestionService ranks notes related to a given note by lexical
// similarity for the "related notes" panel
type SuggestionService struct {
	source     ports.EntitySource
	similarity *domain.SimilarityEngine
	logger     *zap.Logger
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(source ports.EntitySource, similarity *domain.SimilarityEngine, logger *zap.Logger) *SuggestionService {
	if similarity == nil {
		similarity = domain.NewSimilarityEngine()
	}
	return &SuggestionService{
		source:     source,
		similarity: similarity,
		logger:     logger,
	}
}

// RelatedNotes returns the notes most lexically similar to the given one,
// descending by similarity, capped to ten
func (s *SuggestionService) RelatedNotes(ctx context.Context, noteID string) ([]Suggestion, error) {
	notes, err := s.source.ListNotes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list notes for suggestions")
	}

	source, others, found := splitNotes(notes, noteID)
	if !found {
		return nil, pkgerrors.NewNotFound("note not found: " + noteID)
	}

	sourceText := source.Title + " " + source.Content
	suggestions := make([]Suggestion, 0, len(others))
	for _, other := range others {
		score := s.similarity.LexicalSimilarity(sourceText, other.Title+" "+other.Content)
		if score > 0 {
			suggestions = append(suggestions, Suggestion{Note: other, Similarity: score})
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Similarity != suggestions[j].Similarity {
			return suggestions[i].Similarity > suggestions[j].Similarity
		}
		return suggestions[i].Note.ID < suggestions[j].Note.ID
	})

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	return suggestions, nil
}
