package domain

// MemoryProfile is the long-lived per-user semantic memory. It is mutated
// only by background consolidation/extraction and read synchronously at
// context-assembly time. Concurrent writers race last-write-wins.
type MemoryProfile struct {
	MasterSummary string            `json:"master_summary"`
	UserFacts     map[string]string `json:"user_facts"`
}

func (p MemoryProfile) IsEmpty() bool {
	return p.MasterSummary == "" && len(p.UserFacts) == 0
}

// ConsolidationTask carries pruned turns to the background summarizer.
type ConsolidationTask struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Turns     []Turn `json:"turns"`
}

// ExtractionTask carries one completed interaction to the background
// entity/fact extractor.
type ExtractionTask struct {
	UserID      string `json:"user_id"`
	SessionID   string `json:"session_id"`
	UserInput   string `json:"user_input"`
	ModelOutput string `json:"model_output"`
}
