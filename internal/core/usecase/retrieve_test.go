package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
)

func TestRetrieveDegradesWhenOneIndexFails(t *testing.T) {
	lexical := &fakeIndex{docs: []domain.CandidateDocument{
		{Content: "lexical hit", Source: "a.md"},
	}}
	vector := &fakeIndex{err: errors.New("qdrant down")}

	retriever := NewHybridRetriever(lexical, vector, 10, 60, discardLogger())
	fused := retriever.Retrieve(context.Background(), "query")
	if len(fused) != 1 {
		t.Fatalf("expected 1 document from surviving index, got %d", len(fused))
	}
	if fused[0].Content != "lexical hit" {
		t.Fatalf("unexpected document: %s", fused[0].Content)
	}
}

func TestRetrieveBothIndexesFailingYieldsEmpty(t *testing.T) {
	lexical := &fakeIndex{err: errors.New("down")}
	vector := &fakeIndex{err: errors.New("down")}

	retriever := NewHybridRetriever(lexical, vector, 10, 60, discardLogger())
	if fused := retriever.Retrieve(context.Background(), "query"); len(fused) != 0 {
		t.Fatalf("expected empty result, got %d documents", len(fused))
	}
}

func TestRetrieveNilVectorIndexIsAllowed(t *testing.T) {
	lexical := &fakeIndex{docs: []domain.CandidateDocument{{Content: "only"}}}

	retriever := NewHybridRetriever(lexical, nil, 10, 60, discardLogger())
	fused := retriever.Retrieve(context.Background(), "query")
	if len(fused) != 1 || fused[0].Content != "only" {
		t.Fatalf("expected the lexical document, got %v", fused)
	}
}
