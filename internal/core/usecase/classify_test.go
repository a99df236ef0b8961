package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
)

func TestClassifyStopsAtFirstValidParse(t *testing.T) {
	llm := &fakeLLM{replies: []string{
		`{"nature": "coding", "complexity": "simple", "priority": "fast"}`,
	}}
	classifier := NewIntentClassifier(llm, discardLogger())

	analysis := classifier.Classify(context.Background(), "write a function")
	if analysis.Nature != domain.NatureCoding {
		t.Fatalf("expected coding nature, got %s", analysis.Nature)
	}
	if analysis.Complexity != domain.ComplexitySimple {
		t.Fatalf("expected simple complexity, got %s", analysis.Complexity)
	}
	if llm.calls() != 1 {
		t.Fatalf("expected 1 attempt, got %d", llm.calls())
	}
}

func TestClassifyConsumesLadderInOrder(t *testing.T) {
	llm := &fakeLLM{
		errs:    []error{errors.New("timeout"), nil},
		replies: []string{"", `{"nature": "investigation"}`},
	}
	classifier := NewIntentClassifier(llm, discardLogger())

	analysis := classifier.Classify(context.Background(), "find out why")
	if analysis.Nature != domain.NatureInvestigation {
		t.Fatalf("expected investigation nature, got %s", analysis.Nature)
	}
	if len(llm.options) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(llm.options))
	}
	if llm.options[0].Temperature != 0.1 || llm.options[1].Temperature != 0.4 {
		t.Fatalf("expected ladder temperatures [0.1 0.4], got [%v %v]",
			llm.options[0].Temperature, llm.options[1].Temperature)
	}
}

func TestClassifyExhaustedLadderReturnsDefault(t *testing.T) {
	llm := &fakeLLM{replies: []string{"garbage", "{broken", `{"nature": ""}`}}
	classifier := NewIntentClassifier(llm, discardLogger())

	analysis := classifier.Classify(context.Background(), "anything")
	if analysis != domain.DefaultAnalysis() {
		t.Fatalf("expected default analysis, got %+v", analysis)
	}
	if llm.calls() != 3 {
		t.Fatalf("expected all 3 ladder attempts, got %d", llm.calls())
	}
}

func TestClassifyUnknownEnumValuesFallBack(t *testing.T) {
	llm := &fakeLLM{replies: []string{
		`{"nature": "sorcery", "complexity": "mystery", "priority": "never"}`,
	}}
	classifier := NewIntentClassifier(llm, discardLogger())

	analysis := classifier.Classify(context.Background(), "input")
	if analysis.Nature != domain.NatureReasoning {
		t.Fatalf("expected reasoning fallback, got %s", analysis.Nature)
	}
	if analysis.Complexity != domain.ComplexityCompound {
		t.Fatalf("expected compound fallback, got %s", analysis.Complexity)
	}
	if analysis.Priority != domain.PriorityStandard {
		t.Fatalf("expected standard fallback, got %s", analysis.Priority)
	}
}
