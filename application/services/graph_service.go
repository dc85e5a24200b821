package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mindgraph/application/ports"
	"mindgraph/domain/entities"
	domain "mindgraph/domain/services"
	"mindgraph/pkg/observability"
)

// BuildGraphOptions controls one graph build
type BuildGraphOptions struct {
	// Visible toggles entity types on or off; nil shows everything
	Visible map[entities.EntityType]bool
	// SelectedID flags the currently selected node in the output
	SelectedID string
}

// GraphService builds the unified knowledge graph on demand. All graph
// state is recomputed from scratch on each build; nothing is mutated
// incrementally, so concurrent builds never share state.
type GraphService struct {
	source    ports.EntitySource
	inference *domain.InferenceEngine
	assembler *domain.GraphAssembler
	logger    *zap.Logger
	metrics   *observability.Collector
}

// NewGraphService creates a new graph service
func NewGraphService(
	source ports.EntitySource,
	inference *domain.InferenceEngine,
	assembler *domain.GraphAssembler,
	logger *zap.Logger,
	metrics *observability.Collector,
) *GraphService {
	if inference == nil {
		inference = domain.NewInferenceEngine(nil, nil, nil)
	}
	if assembler == nil {
		assembler = domain.NewGraphAssembler()
	}
	return &GraphService{
		source:    source,
		inference: inference,
		assembler: assembler,
		logger:    logger,
		metrics:   metrics,
	}
}

// BuildGraph fetches the three source collections concurrently, infers
// candidate connections over the visible entities, and assembles the
// render-ready graph. A failed source degrades to an empty collection;
// the graph renders whatever subset succeeded.
func (s *GraphService) BuildGraph(ctx context.Context, opts BuildGraphOptions) (entities.GraphData, error) {
	start := time.Now()

	var (
		notes     []entities.Note
		episodes  []entities.Episode
		documents []entities.Document
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := s.source.ListNotes(gctx)
		if err != nil {
			s.degradeSource("notes", err)
			return nil
		}
		notes = result
		return nil
	})
	g.Go(func() error {
		result, err := s.source.ListEpisodes(gctx)
		if err != nil {
			s.degradeSource("episodes", err)
			return nil
		}
		episodes = result
		return nil
	})
	g.Go(func() error {
		result, err := s.source.ListDocuments(gctx)
		if err != nil {
			s.degradeSource("documents", err)
			return nil
		}
		documents = result
		return nil
	})
	if err := g.Wait(); err != nil {
		return entities.GraphData{}, err
	}
	if err := ctx.Err(); err != nil {
		return entities.GraphData{}, err
	}

	// Filter before inference so the O(n²) pass only covers visible entities
	if opts.Visible != nil {
		if !opts.Visible[entities.EntityTypeNote] {
			notes = nil
		}
		if !opts.Visible[entities.EntityTypeEpisode] {
			episodes = nil
		}
		if !opts.Visible[entities.EntityTypeDocument] {
			documents = nil
		}
	}

	connections := s.inference.GenerateAllConnections(notes, episodes, documents)
	for _, c := range connections {
		s.metrics.ConnectionsInferred.WithLabelValues(string(c.Type)).Inc()
	}

	graph := s.assembler.Assemble(domain.AssembleInput{
		Notes:       notes,
		Episodes:    episodes,
		Documents:   documents,
		Connections: connections,
		Visible:     opts.Visible,
		SelectedID:  opts.SelectedID,
	})

	s.metrics.GraphBuilds.Inc()
	s.metrics.GraphBuildDuration.Observe(time.Since(start).Seconds())
	s.logger.Debug("graph assembled",
		zap.Int("nodes", len(graph.Nodes)),
		zap.Int("links", len(graph.Links)),
		zap.Duration("duration", time.Since(start)),
	)

	return graph, nil
}

func (s *GraphService) degradeSource(source string, err error) {
	s.metrics.SourceFetchFailures.WithLabelValues(source).Inc()
	s.logger.Warn("source fetch failed, degrading to empty collection",
		zap.String("source", source),
		zap.Error(err),
	)
}
