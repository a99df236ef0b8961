package usecase

import (
	"math"
	"testing"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
)

func TestFuseRRFMergesAndSumsSharedDocuments(t *testing.T) {
	vector := []domain.CandidateDocument{
		{Content: "B"},
		{Content: "D"},
		{Content: "A"},
	}
	lexical := []domain.CandidateDocument{
		{Content: "A"},
		{Content: "B"},
		{Content: "C"},
	}

	fused := fuseRRF(vector, lexical, 60)
	if len(fused) != 4 {
		t.Fatalf("expected 4 fused documents, got %d", len(fused))
	}

	wantOrder := []string{"B", "A", "D", "C"}
	for i, want := range wantOrder {
		if fused[i].Content != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, fused[i].Content)
		}
	}

	wantScores := map[string]float64{
		"B": 1.0/60 + 1.0/61,
		"A": 1.0/62 + 1.0/60,
		"D": 1.0 / 61,
		"C": 1.0 / 62,
	}
	for _, doc := range fused {
		if math.Abs(doc.FusionScore-wantScores[doc.Content]) > 1e-9 {
			t.Fatalf("document %s: expected score %.6f, got %.6f",
				doc.Content, wantScores[doc.Content], doc.FusionScore)
		}
	}
}

func TestFuseRRFTieKeepsFirstAppearanceOrder(t *testing.T) {
	vector := []domain.CandidateDocument{{Content: "X"}}
	lexical := []domain.CandidateDocument{{Content: "Y"}}

	fused := fuseRRF(vector, lexical, 60)
	if len(fused) != 2 {
		t.Fatalf("expected 2 fused documents, got %d", len(fused))
	}
	if fused[0].Content != "X" || fused[1].Content != "Y" {
		t.Fatalf("expected first-appearance order [X Y], got [%s %s]", fused[0].Content, fused[1].Content)
	}
}

func TestFuseRRFSingleListPreservesRankOrder(t *testing.T) {
	lexical := []domain.CandidateDocument{
		{Content: "first"},
		{Content: "second"},
		{Content: "third"},
	}

	fused := fuseRRF(nil, lexical, 60)
	if len(fused) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(fused))
	}
	for i, want := range []string{"first", "second", "third"} {
		if fused[i].Content != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, fused[i].Content)
		}
	}
}

func TestFuseRRFEmptyInputs(t *testing.T) {
	if fused := fuseRRF(nil, nil, 60); len(fused) != 0 {
		t.Fatalf("expected empty fusion, got %d documents", len(fused))
	}
}
