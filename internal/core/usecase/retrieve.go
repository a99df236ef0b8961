package usecase

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/ports"
)

// HybridRetriever runs lexical and vector search concurrently and fuses the
// two rankings with RRF. Either index may be absent or failing; its list is
// simply removed from fusion. Retrieve never returns an error.
type HybridRetriever struct {
	lexical ports.LexicalIndex
	vector  ports.VectorIndex
	topK    int
	rrfK    int
	logger  *slog.Logger
}

func NewHybridRetriever(lexical ports.LexicalIndex, vector ports.VectorIndex, topK, rrfK int, logger *slog.Logger) *HybridRetriever {
	if topK <= 0 {
		topK = 10
	}
	if rrfK <= 0 {
		rrfK = defaultRRFK
	}
	return &HybridRetriever{
		lexical: lexical,
		vector:  vector,
		topK:    topK,
		rrfK:    rrfK,
		logger:  logger,
	}
}

// Retrieve returns the full fused ranking; callers decide how much to
// consume.
func (r *HybridRetriever) Retrieve(ctx context.Context, query string) []domain.CandidateDocument {
	var vectorDocs, lexicalDocs []domain.CandidateDocument

	g, searchCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vectorDocs = r.searchOne(searchCtx, "vector", r.vector, query)
		return nil
	})
	g.Go(func() error {
		lexicalDocs = r.searchOne(searchCtx, "lexical", r.lexical, query)
		return nil
	})
	_ = g.Wait()

	return fuseRRF(vectorDocs, lexicalDocs, r.rrfK)
}

type searcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.CandidateDocument, error)
}

func (r *HybridRetriever) searchOne(ctx context.Context, name string, idx searcher, query string) []domain.CandidateDocument {
	if idx == nil {
		return nil
	}
	docs, err := idx.Search(ctx, query, r.topK)
	if err != nil {
		r.logger.Warn("index search degraded to empty", "index", name, "error", err)
		return nil
	}
	return docs
}
