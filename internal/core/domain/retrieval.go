package domain

// CandidateDocument is an ephemeral retrieval result. Identity for
// dedup/merge purposes is exact content equality, not a stored id.
type CandidateDocument struct {
	Content     string  `json:"content"`
	Source      string  `json:"source"`
	FusionScore float64 `json:"fusion_score"`
}

// GenerationOptions tune a single completion call. A negative Temperature
// means "provider default".
type GenerationOptions struct {
	Temperature float64
	JSONFormat  bool
}

func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{Temperature: -1}
}

// StreamEvent is one element of a streaming completion: either a text delta
// or a terminal usage-metadata event (never both).
type StreamEvent struct {
	Delta string
	Usage *TokenUsage
}
