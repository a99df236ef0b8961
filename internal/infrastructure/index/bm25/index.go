// Package bm25 provides an in-memory lexical index over a document corpus
// using Okapi BM25 ranking.
package bm25

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
)

const (
	defaultK1 = 1.2
	defaultB  = 0.75
)

type indexedChunk struct {
	content string
	source  string
	terms   map[string]int
	length  int
}

// Index scores chunks with Okapi BM25. Built once at startup, read-only
// afterwards, safe for concurrent Search calls.
type Index struct {
	k1     float64
	b      float64
	chunks []indexedChunk
	df     map[string]int
	avgLen float64
	logger *slog.Logger
}

func NewIndex(chunks []Chunk, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	idx := &Index{
		k1:     defaultK1,
		b:      defaultB,
		df:     make(map[string]int),
		logger: logger,
	}

	totalLen := 0
	for _, chunk := range chunks {
		terms := termFrequencies(chunk.Content)
		if len(terms) == 0 {
			continue
		}
		length := 0
		for term, count := range terms {
			idx.df[term]++
			length += count
		}
		totalLen += length
		idx.chunks = append(idx.chunks, indexedChunk{
			content: chunk.Content,
			source:  chunk.Source,
			terms:   terms,
			length:  length,
		})
	}
	if len(idx.chunks) > 0 {
		idx.avgLen = float64(totalLen) / float64(len(idx.chunks))
	}

	logger.Info("lexical index built", "chunks", len(idx.chunks), "terms", len(idx.df))
	return idx
}

func (idx *Index) Size() int { return len(idx.chunks) }

// Search ranks indexed chunks against the query and returns up to limit
// results in descending score order. Chunks that match no query term are
// omitted.
func (idx *Index) Search(ctx context.Context, query string, limit int) ([]domain.CandidateDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 || len(idx.chunks) == 0 {
		return nil, nil
	}

	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return nil, nil
	}

	type scored struct {
		pos   int
		score float64
	}
	var hits []scored
	for pos, chunk := range idx.chunks {
		score := idx.score(queryTerms, chunk)
		if score > 0 {
			hits = append(hits, scored{pos: pos, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]domain.CandidateDocument, 0, len(hits))
	for _, hit := range hits {
		chunk := idx.chunks[hit.pos]
		results = append(results, domain.CandidateDocument{
			Content:     chunk.content,
			Source:      chunk.source,
			FusionScore: hit.score,
		})
	}
	return results, nil
}

func (idx *Index) score(queryTerms []string, chunk indexedChunk) float64 {
	n := float64(len(idx.chunks))
	score := 0.0
	for _, term := range queryTerms {
		tf := float64(chunk.terms[term])
		if tf == 0 {
			continue
		}
		df := float64(idx.df[term])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		norm := idx.k1 * (1 - idx.b + idx.b*float64(chunk.length)/idx.avgLen)
		score += idf * tf * (idx.k1 + 1) / (tf + norm)
	}
	return score
}

func termFrequencies(text string) map[string]int {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	freqs := make(map[string]int, len(tokens))
	for _, token := range tokens {
		freqs[token]++
	}
	return freqs
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
