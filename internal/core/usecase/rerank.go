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

const rerankSnippetChars = 300

// Reranker asks the completion service to reorder the fused top candidates.
// This is the only non-deterministic step in retrieval; any failure falls
// back to the candidates in fusion order.
type Reranker struct {
	llm    ports.CompletionService
	logger *slog.Logger
}

func NewReranker(llm ports.CompletionService, logger *slog.Logger) *Reranker {
	return &Reranker{llm: llm, logger: logger}
}

func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.CandidateDocument, topN int) []domain.CandidateDocument {
	if len(candidates) == 0 {
		return nil
	}
	if topN <= 0 || topN > len(candidates) {
		topN = len(candidates)
	}

	opts := domain.GenerationOptions{Temperature: 0, JSONFormat: true}
	raw, err := r.llm.Generate(ctx, buildRerankPrompt(query, candidates, topN), opts)
	if err != nil {
		r.logger.Warn("rerank call failed, keeping fusion order", "error", err)
		return candidates[:topN]
	}

	selected := parseIndexList(raw, len(candidates))
	if len(selected) == 0 {
		r.logger.Warn("rerank reply unusable, keeping fusion order", "reply", truncate(raw, 120))
		return candidates[:topN]
	}

	out := make([]domain.CandidateDocument, 0, len(selected))
	for _, idx := range selected {
		out = append(out, candidates[idx])
	}
	return out
}

func buildRerankPrompt(query string, candidates []domain.CandidateDocument, topN int) string {
	var b strings.Builder
	for i, doc := range candidates {
		fmt.Fprintf(&b, "[ID: %d] %s\n\n", i, truncate(doc.Content, rerankSnippetChars))
	}

	return fmt.Sprintf(`TASK: cross-encoder reranking.
QUERY: %q

CANDIDATE DOCUMENTS:
%s
Select the %d documents MOST relevant to the query.
Return ONLY a JSON array of candidate IDs ordered by relevance, e.g. [0, 4, 1].`,
		query, b.String(), topN)
}

// parseIndexList parses the structured index reply. Non-integer entries,
// out-of-range ids and duplicates are dropped defensively.
func parseIndexList(raw string, bound int) []int {
	var entries []any
	if err := json.Unmarshal([]byte(extractJSONArray(raw)), &entries); err != nil {
		return nil
	}

	seen := make(map[int]struct{}, len(entries))
	out := make([]int, 0, len(entries))
	for _, entry := range entries {
		num, ok := entry.(float64)
		if !ok || num != float64(int(num)) {
			continue
		}
		i := int(num)
		if i < 0 || i >= bound {
			continue
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	return out
}

func extractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
