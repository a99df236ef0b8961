package usecase

import (
	"sort"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
)

const defaultRRFK = 60

// fuseRRF merges two ranked lists with Reciprocal Rank Fusion: a document at
// 0-based rank r contributes 1/(k+r); a document present in both lists sums
// both contributions. Documents are identified by exact content equality.
// The result is the full fused ranking, sorted by descending cumulative
// score; ties keep the order of first appearance.
func fuseRRF(vector, lexical []domain.CandidateDocument, k int) []domain.CandidateDocument {
	if k <= 0 {
		k = defaultRRFK
	}

	scores := make(map[string]float64, len(vector)+len(lexical))
	firstSeen := make(map[string]domain.CandidateDocument, len(vector)+len(lexical))
	order := make([]string, 0, len(vector)+len(lexical))

	addList := func(docs []domain.CandidateDocument) {
		for rank, doc := range docs {
			if _, seen := scores[doc.Content]; !seen {
				firstSeen[doc.Content] = doc
				order = append(order, doc.Content)
			}
			scores[doc.Content] += 1.0 / float64(k+rank)
		}
	}

	addList(vector)
	addList(lexical)

	out := make([]domain.CandidateDocument, 0, len(order))
	for _, content := range order {
		doc := firstSeen[content]
		doc.FusionScore = scores[content]
		out = append(out, doc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FusionScore > out[j].FusionScore
	})
	return out
}
