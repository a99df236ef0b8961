package qdrant

import (
	"context"
	"fmt"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/ports"
)

// SearchIndex pairs an embedder with the Qdrant client so the retrieval
// layer can search by query text.
type SearchIndex struct {
	embedder ports.Embedder
	client   *Client
}

func NewSearchIndex(embedder ports.Embedder, client *Client) *SearchIndex {
	return &SearchIndex{embedder: embedder, client: client}
}

func (s *SearchIndex) Search(ctx context.Context, query string, limit int) ([]domain.CandidateDocument, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.client.SearchByVector(ctx, vector, limit)
}
