package domain

// RefinementThreshold is the caller-side score floor: a candidate answer
// scoring below it enters the single bounded refinement pass.
const RefinementThreshold = 80

// EvaluationResult is the judge oracle's verdict over a candidate answer.
type EvaluationResult struct {
	Score           int    `json:"score"`
	Feedback        string `json:"feedback"`
	NeedsRefinement bool   `json:"needs_refinement"`
}

// DefaultEvaluation is the fixed safe verdict used whenever the oracle fails.
// It accepts the answer so that oracle unavailability never blocks a turn.
func DefaultEvaluation() EvaluationResult {
	return EvaluationResult{
		Score:           85,
		Feedback:        "evaluation unavailable, assuming standard quality",
		NeedsRefinement: false,
	}
}

// ShouldRefine honors both the oracle's explicit flag and the numeric
// threshold; either one triggers refinement.
func (e EvaluationResult) ShouldRefine() bool {
	return e.NeedsRefinement || e.Score < RefinementThreshold
}
