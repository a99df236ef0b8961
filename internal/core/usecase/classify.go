package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/ports"
)

// classifierLadder is the fixed, ordered list of attempt temperatures. The
// ladder is consumed sequentially by index; classification stops at the first
// structurally valid parse.
var classifierLadder = []float64{0.1, 0.4, 0.7}

// IntentClassifier classifies a turn's nature, complexity and priority.
// Classify never fails: when every attempt is exhausted it returns the fixed
// safe default analysis.
type IntentClassifier struct {
	llm    ports.CompletionService
	logger *slog.Logger
}

func NewIntentClassifier(llm ports.CompletionService, logger *slog.Logger) *IntentClassifier {
	return &IntentClassifier{llm: llm, logger: logger}
}

// analysisWire is the machine-parseable reply schema requested from the
// completion service.
type analysisWire struct {
	Nature            string `json:"nature"`
	Complexity        string `json:"complexity"`
	Priority          string `json:"priority"`
	SynthesizedIntent string `json:"synthesized_intent"`
	Strategy          string `json:"strategy"`
}

func (c *IntentClassifier) Classify(ctx context.Context, input string) domain.AnalysisResult {
	prompt := buildClassifyPrompt(input)

	for attempt, temperature := range classifierLadder {
		opts := domain.GenerationOptions{Temperature: temperature, JSONFormat: true}
		raw, err := c.llm.Generate(ctx, prompt, opts)
		if err != nil {
			c.logger.Warn("classification attempt failed",
				"attempt", attempt+1, "temperature", temperature, "error", err)
			continue
		}

		var wire analysisWire
		if err := json.Unmarshal([]byte(extractJSONObject(raw)), &wire); err != nil {
			c.logger.Warn("classification reply unparseable",
				"attempt", attempt+1, "temperature", temperature, "error", err)
			continue
		}
		if strings.TrimSpace(wire.Nature) == "" {
			c.logger.Warn("classification reply missing nature", "attempt", attempt+1)
			continue
		}

		return domain.AnalysisResult{
			Nature:            domain.ParseTaskNature(wire.Nature),
			Complexity:        domain.ParseComplexity(wire.Complexity),
			Priority:          domain.ParsePriority(wire.Priority),
			SynthesizedIntent: strings.TrimSpace(wire.SynthesizedIntent),
			Strategy:          strings.TrimSpace(wire.Strategy),
		}
	}

	c.logger.Error("all classification attempts failed, using default analysis")
	return domain.DefaultAnalysis()
}

func buildClassifyPrompt(input string) string {
	return fmt.Sprintf(`ACT AS: a cognitive router for a conversational assistant.
MISSION: classify the user input below. Return ONLY a valid JSON object.

Vectors:
1. nature: one of generation | reasoning | planning | extraction | coding | investigation
2. complexity: one of simple | compound | abstract
3. priority: one of fast | standard | exhaustive

Schema:
{"nature": "...", "complexity": "...", "priority": "...",
 "synthesized_intent": "one-line summary", "strategy": "suggested strategy name"}

USER INPUT: %s`, input)
}

// extractJSONObject tolerates markdown fences and prose around the object.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
