package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/ports"
)

// QualityOracle scores a candidate answer 0-100 against the original request
// using a weighted rubric. Evaluate never fails: on any error it returns the
// fixed safe default so that oracle unavailability never blocks a turn.
type QualityOracle struct {
	llm    ports.CompletionService
	logger *slog.Logger
}

func NewQualityOracle(llm ports.CompletionService, logger *slog.Logger) *QualityOracle {
	return &QualityOracle{llm: llm, logger: logger}
}

func (o *QualityOracle) Evaluate(ctx context.Context, userInput, candidateAnswer string) domain.EvaluationResult {
	opts := domain.GenerationOptions{Temperature: 0, JSONFormat: true}
	raw, err := o.llm.Generate(ctx, buildJudgePrompt(userInput, candidateAnswer), opts)
	if err != nil {
		o.logger.Warn("judge call failed, using default evaluation", "error", err)
		return domain.DefaultEvaluation()
	}

	var result domain.EvaluationResult
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &result); err != nil {
		o.logger.Warn("judge reply unparseable, using default evaluation", "error", err)
		return domain.DefaultEvaluation()
	}
	if result.Score < 0 || result.Score > 100 {
		o.logger.Warn("judge score out of range, using default evaluation", "score", result.Score)
		return domain.DefaultEvaluation()
	}

	o.logger.Info("judge verdict", "score", result.Score, "needs_refinement", result.NeedsRefinement)
	return result
}

func buildJudgePrompt(userInput, candidateAnswer string) string {
	return fmt.Sprintf(`ACT AS: a quality-audit judge for AI answers.

RUBRIC (points sum to 0-100):
1. Fidelity to intent (0-35): does the answer address exactly what was asked?
2. Robustness and safety (0-25): is the answer safe and well-grounded?
3. Clarity (0-20): is the formatting and explanation clean?
4. Efficiency (0-20): is it direct, without padding?

Return ONLY a valid JSON object:
{"score": <int 0-100>, "feedback": "<constructive critique>", "needs_refinement": <bool>}

[USER INPUT]
%s

[AI ANSWER]
%s

Evaluate the answer against the input and produce the JSON verdict.`, userInput, candidateAnswer)
}
