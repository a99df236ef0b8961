package domain

import "strings"

// TaskNature is the closed set of persona-selecting task classes. The
// classifier's free-text nature output is always mapped into this enum.
type TaskNature string

const (
	NatureGeneration    TaskNature = "generation"
	NatureReasoning     TaskNature = "reasoning"
	NaturePlanning      TaskNature = "planning"
	NatureExtraction    TaskNature = "extraction"
	NatureCoding        TaskNature = "coding"
	NatureInvestigation TaskNature = "investigation"
)

type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityCompound Complexity = "compound"
	ComplexityAbstract Complexity = "abstract"
)

type Priority string

const (
	PriorityFast       Priority = "fast"
	PriorityStandard   Priority = "standard"
	PriorityExhaustive Priority = "exhaustive"
)

// AnalysisResult drives persona selection and whether retrieval results are
// injected into the prompt.
type AnalysisResult struct {
	Nature            TaskNature `json:"nature"`
	Complexity        Complexity `json:"complexity"`
	Priority          Priority   `json:"priority"`
	SynthesizedIntent string     `json:"synthesized_intent"`
	Strategy          string     `json:"strategy"`
}

// DefaultAnalysis is the fixed safe value used whenever classification fails.
func DefaultAnalysis() AnalysisResult {
	return AnalysisResult{
		Nature:            NatureReasoning,
		Complexity:        ComplexityCompound,
		Priority:          PriorityStandard,
		SynthesizedIntent: "classification unavailable",
		Strategy:          "chain-of-thought",
	}
}

// ParseTaskNature maps free-form classifier output into the closed enum.
// Unknown values fall back to reasoning.
func ParseTaskNature(raw string) TaskNature {
	switch normalizeEnum(raw) {
	case "generation", "g":
		return NatureGeneration
	case "reasoning", "r":
		return NatureReasoning
	case "planning", "p":
		return NaturePlanning
	case "extraction", "e":
		return NatureExtraction
	case "coding", "code", "c":
		return NatureCoding
	case "investigation", "research", "i":
		return NatureInvestigation
	default:
		return NatureReasoning
	}
}

func ParseComplexity(raw string) Complexity {
	switch normalizeEnum(raw) {
	case "simple", "s":
		return ComplexitySimple
	case "abstract", "a":
		return ComplexityAbstract
	default:
		return ComplexityCompound
	}
}

func ParsePriority(raw string) Priority {
	switch normalizeEnum(raw) {
	case "fast", "f":
		return PriorityFast
	case "exhaustive", "e":
		return PriorityExhaustive
	default:
		return PriorityStandard
	}
}

func normalizeEnum(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
