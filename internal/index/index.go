// Package index builds and caches the term-weighted vector index over
// the chunked document.
//
// The index is an immutable snapshot: a pruned vocabulary, smoothed
// inverse document frequencies and one L2-normalized sparse weight
// vector per chunk. Rebuilds produce a brand-new Index and publish it
// atomically; an Index is never mutated after Build returns.
package index

import (
	"math"
	"sort"
)

// SentinelChunk is indexed in place of an empty or unsplittable
// document so the index is never empty.
const SentinelChunk = "(resume is empty)"

// Options configures index construction.
type Options struct {
	// NgramMin and NgramMax bound the n-gram sizes in the vocabulary.
	NgramMin int
	NgramMax int

	// MinDocFreq and MaxDocFreq prune the vocabulary by document
	// frequency. Values in (0,1) are fractions of the chunk count;
	// values >= 1 are absolute counts, except MaxDocFreq == 1.0 which
	// admits terms appearing in every chunk.
	MinDocFreq float64
	MaxDocFreq float64
}

// SparseVector is a sparse weight vector over the vocabulary, with
// entries sorted by term id.
type SparseVector struct {
	Terms   []int
	Weights []float64
}

// Dot returns the dot product of two sparse vectors.
func (v SparseVector) Dot(other SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Terms) && j < len(other.Terms) {
		switch {
		case v.Terms[i] == other.Terms[j]:
			sum += v.Weights[i] * other.Weights[j]
			i++
			j++
		case v.Terms[i] < other.Terms[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Index is an immutable snapshot of the fitted vector space.
type Index struct {
	// Vocabulary maps each surviving term to its id.
	Vocabulary map[string]int

	// DocFreq holds the document frequency per term id.
	DocFreq []int

	// IDF holds the smoothed inverse document frequency per term id.
	IDF []float64

	// Chunks holds the chunk texts, positionally aligned with Vectors.
	Chunks []string

	// Vectors holds one L2-normalized sparse weight vector per chunk.
	Vectors []SparseVector

	// BuiltFromHash is the content hash of the document text this
	// index was built from.
	BuiltFromHash string

	opts Options
}

// Build fits an index over the given chunks. Chunks with no surviving
// vocabulary terms get zero vectors; a fully pruned vocabulary yields
// an index that scores every chunk at zero rather than failing.
func Build(chunks []string, contentHash string, opts Options) *Index {
	n := len(chunks)

	// Per-chunk term counts and corpus document frequency.
	counts := make([]map[string]int, n)
	df := make(map[string]int)
	for i, text := range chunks {
		tc := make(map[string]int)
		for _, term := range Tokenize(text, opts.NgramMin, opts.NgramMax) {
			tc[term]++
		}
		counts[i] = tc
		for term := range tc {
			df[term]++
		}
	}

	minCount, maxCount := resolveDocFreqBounds(opts, n)

	// Prune, then assign ids in sorted term order for determinism.
	var terms []string
	for term, d := range df {
		if d >= minCount && d <= maxCount {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	ix := &Index{
		Vocabulary:    make(map[string]int, len(terms)),
		DocFreq:       make([]int, len(terms)),
		IDF:           make([]float64, len(terms)),
		Chunks:        chunks,
		Vectors:       make([]SparseVector, n),
		BuiltFromHash: contentHash,
		opts:          opts,
	}
	for id, term := range terms {
		ix.Vocabulary[term] = id
		ix.DocFreq[id] = df[term]
		// Smoothed idf keeps weights finite and strictly positive even
		// for terms present in every chunk.
		ix.IDF[id] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	for i, tc := range counts {
		ix.Vectors[i] = ix.vectorize(tc)
	}
	return ix
}

// Project maps a query into the fitted vector space. Terms absent from
// the vocabulary contribute nothing; idf values come from the fitted
// corpus, never from the query.
func (ix *Index) Project(text string) SparseVector {
	tc := make(map[string]int)
	for _, term := range Tokenize(text, ix.opts.NgramMin, ix.opts.NgramMax) {
		tc[term]++
	}
	return ix.vectorize(tc)
}

// vectorize turns raw term counts into a unit-normalized sparse vector
// using sublinear tf scaling. An all-zero vector stays zero.
func (ix *Index) vectorize(termCounts map[string]int) SparseVector {
	ids := make([]int, 0, len(termCounts))
	for term := range termCounts {
		if id, ok := ix.Vocabulary[term]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return SparseVector{}
	}
	sort.Ints(ids)

	// Invert once so counts are reachable by id.
	byID := make(map[int]int, len(ids))
	for term, count := range termCounts {
		if id, ok := ix.Vocabulary[term]; ok {
			byID[id] = count
		}
	}

	weights := make([]float64, len(ids))
	var norm float64
	for i, id := range ids {
		w := (1 + math.Log(float64(byID[id]))) * ix.IDF[id]
		weights[i] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range weights {
			weights[i] /= norm
		}
	}
	return SparseVector{Terms: ids, Weights: weights}
}

// resolveDocFreqBounds converts the configured thresholds into
// absolute chunk counts.
func resolveDocFreqBounds(opts Options, n int) (minCount, maxCount int) {
	switch {
	case opts.MinDocFreq > 0 && opts.MinDocFreq < 1:
		minCount = int(opts.MinDocFreq * float64(n))
		if minCount < 1 {
			minCount = 1
		}
	default:
		minCount = int(opts.MinDocFreq)
		if minCount < 1 {
			minCount = 1
		}
	}

	switch {
	case opts.MaxDocFreq > 0 && opts.MaxDocFreq <= 1:
		maxCount = int(opts.MaxDocFreq * float64(n))
	default:
		maxCount = int(opts.MaxDocFreq)
	}
	if maxCount > n {
		maxCount = n
	}
	return minCount, maxCount
}
