// Package search implements the retrieval query engine.
//
// Queries are projected into the fitted vector space and ranked against
// every chunk by cosine similarity. Both sides are unit-normalized, so
// similarity reduces to a dot product in [0, 1].
package search

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/askresume/askresume/internal/index"
)

// ErrNilIndexCache is returned when the engine is constructed without
// an index cache.
var ErrNilIndexCache = errors.New("nil index cache")

// DefaultResultCacheSize is the default number of query results kept
// in the LRU cache.
const DefaultResultCacheSize = 256

// RetrievedChunk is a single ranked chunk.
type RetrievedChunk struct {
	// Text is the chunk content.
	Text string `json:"text"`

	// Score is the cosine similarity in [0, 1].
	Score float64 `json:"score"`

	// Index is the chunk's ordinal position in the split sequence.
	Index int `json:"index"`
}

// Result is the retrieval output for one query.
type Result struct {
	// Query is the original query string.
	Query string `json:"query"`

	// Chunks is the ranked list of best matching chunks, scores
	// non-increasing, ties broken by ascending chunk index.
	Chunks []RetrievedChunk `json:"chunks"`

	// Confidence is the top chunk's score, or 0 with no results.
	Confidence float64 `json:"confidence"`
}

// Engine ranks chunks against natural-language queries.
type Engine struct {
	cache   *index.Cache
	results *lru.Cache[string, Result]
}

// Option configures the engine.
type Option func(*Engine)

// WithResultCacheSize sets the query-result LRU capacity.
func WithResultCacheSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.results, _ = lru.New[string, Result](size)
		}
	}
}

// NewEngine creates a query engine over the given index cache.
func NewEngine(cache *index.Cache, opts ...Option) (*Engine, error) {
	if cache == nil {
		return nil, ErrNilIndexCache
	}
	results, _ := lru.New[string, Result](DefaultResultCacheSize)
	e := &Engine{cache: cache, results: results}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Retrieve returns the top-k chunks ranked by similarity to the query.
//
// An empty query returns an empty result without touching the index.
// topK is clamped to at least 1. A missing document surfaces as
// document.ErrNotFound; the caller decides how to degrade.
func (e *Engine) Retrieve(query string, topK int) (Result, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Result{Query: query, Chunks: []RetrievedChunk{}, Confidence: 0}, nil
	}
	if topK < 1 {
		topK = 1
	}

	ix, err := e.cache.Ensure()
	if err != nil {
		return Result{}, fmt.Errorf("ensuring index: %w", err)
	}

	key := resultKey(q, topK, ix.BuiltFromHash)
	if cached, ok := e.results.Get(key); ok {
		return cached, nil
	}

	queryVec := ix.Project(q)

	scores := make([]float64, len(ix.Vectors))
	for i, vec := range ix.Vectors {
		scores[i] = vec.Dot(queryVec)
	}

	ranked := topKIndices(scores, topK)
	chunks := make([]RetrievedChunk, len(ranked))
	for i, ci := range ranked {
		chunks[i] = RetrievedChunk{
			Text:  ix.Chunks[ci],
			Score: scores[ci],
			Index: ci,
		}
	}

	result := Result{Query: query, Chunks: chunks, Confidence: 0}
	if len(chunks) > 0 {
		result.Confidence = chunks[0].Score
	}
	e.results.Add(key, result)

	slog.Debug("query ranked",
		slog.Int("top_k", topK),
		slog.Int("chunks", len(ix.Chunks)),
		slog.Float64("confidence", result.Confidence))
	return result, nil
}

// topKIndices returns the indices of the k highest scores, descending,
// ties broken by ascending index so results stay deterministic.
func topKIndices(scores []float64, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if scores[idx[a]] != scores[idx[b]] {
			return scores[idx[a]] > scores[idx[b]]
		}
		return idx[a] < idx[b]
	})
	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}

// resultKey builds the LRU key for a query against one index snapshot.
func resultKey(query string, topK int, indexHash string) string {
	sum := sha256.Sum256([]byte(query + "\x00" + strconv.Itoa(topK) + "\x00" + indexHash))
	return hex.EncodeToString(sum[:])
}
