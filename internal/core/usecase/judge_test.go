package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
)

func TestEvaluateParsesVerdict(t *testing.T) {
	llm := &fakeLLM{replies: []string{
		`{"score": 72, "feedback": "missing edge cases", "needs_refinement": true}`,
	}}
	judge := NewQualityOracle(llm, discardLogger())

	verdict := judge.Evaluate(context.Background(), "question", "answer")
	if verdict.Score != 72 {
		t.Fatalf("expected score 72, got %d", verdict.Score)
	}
	if !verdict.NeedsRefinement {
		t.Fatalf("expected needs_refinement true")
	}
	if !verdict.ShouldRefine() {
		t.Fatalf("expected ShouldRefine true for score 72")
	}
}

func TestEvaluateToleratesMarkdownFence(t *testing.T) {
	llm := &fakeLLM{replies: []string{
		"```json\n{\"score\": 91, \"feedback\": \"good\", \"needs_refinement\": false}\n```",
	}}
	judge := NewQualityOracle(llm, discardLogger())

	verdict := judge.Evaluate(context.Background(), "q", "a")
	if verdict.Score != 91 || verdict.ShouldRefine() {
		t.Fatalf("expected accepted verdict 91, got %+v", verdict)
	}
}

func TestEvaluateDefaultsOnCallFailure(t *testing.T) {
	llm := &fakeLLM{errs: []error{errors.New("oracle down")}}
	judge := NewQualityOracle(llm, discardLogger())

	verdict := judge.Evaluate(context.Background(), "q", "a")
	if verdict != domain.DefaultEvaluation() {
		t.Fatalf("expected default evaluation, got %+v", verdict)
	}
	if verdict.ShouldRefine() {
		t.Fatalf("default evaluation must not trigger refinement")
	}
}

func TestEvaluateDefaultsOnOutOfRangeScore(t *testing.T) {
	llm := &fakeLLM{replies: []string{`{"score": 180, "feedback": "", "needs_refinement": false}`}}
	judge := NewQualityOracle(llm, discardLogger())

	verdict := judge.Evaluate(context.Background(), "q", "a")
	if verdict != domain.DefaultEvaluation() {
		t.Fatalf("expected default evaluation for out-of-range score, got %+v", verdict)
	}
}

func TestShouldRefineHonorsExplicitFlagAboveThreshold(t *testing.T) {
	verdict := domain.EvaluationResult{Score: 95, NeedsRefinement: true}
	if !verdict.ShouldRefine() {
		t.Fatalf("explicit needs_refinement must trigger refinement regardless of score")
	}
}
