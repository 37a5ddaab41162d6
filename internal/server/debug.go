package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/askresume/askresume/internal/document"
)

// defaultPreviewLen is the per-chunk preview length for debug retrieval.
const defaultPreviewLen = 280

// RetrieveItem is one ranked chunk in the debug retrieval response.
type RetrieveItem struct {
	Index   int     `json:"index"`
	Score   float64 `json:"score"`
	Preview string  `json:"preview"`
}

// RetrieveResponse is the debug retrieval response, including the
// active configuration and end-to-end latency.
type RetrieveResponse struct {
	Query      string         `json:"query"`
	TopK       int            `json:"top_k"`
	Confidence float64        `json:"confidence"`
	Threshold  float64        `json:"threshold"`
	Handled    bool           `json:"handled"`
	ElapsedMS  float64        `json:"elapsed_ms"`
	Config     map[string]any `json:"config"`
	Results    []RetrieveItem `json:"results"`
}

func (s *Server) handleDebugResume(w http.ResponseWriter, _ *http.Request) {
	info, err := s.docs.Info()
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleDebugReload(w http.ResponseWriter, _ *http.Request) {
	text, err := s.docs.Load(true)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "chars": len(text)})
}

func (s *Server) handleDebugRetrieve(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusUnprocessableEntity, "query must be non-empty")
		return
	}

	topK := s.cfg.Retrieve.TopK
	if v := r.URL.Query().Get("k"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k >= 1 {
			topK = k
		}
	}
	previewLen := defaultPreviewLen
	if v := r.URL.Query().Get("preview_len"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			previewLen = n
		}
	}
	fullIndex := -1
	if v := r.URL.Query().Get("full_index"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			fullIndex = n
		}
	}

	// The debug path surfaces a missing document explicitly, unlike
	// the chat path which degrades to a fixed reply.
	start := time.Now()
	result, err := s.engine.Retrieve(q, topK)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "resume not found; load it and try again")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	items := make([]RetrieveItem, len(result.Chunks))
	for i, c := range result.Chunks {
		preview := c.Text
		if c.Index != fullIndex && len(preview) > previewLen {
			preview = preview[:previewLen]
		}
		items[i] = RetrieveItem{Index: c.Index, Score: c.Score, Preview: preview}
	}

	rc := s.cfg.Retrieve
	writeJSON(w, http.StatusOK, RetrieveResponse{
		Query:      q,
		TopK:       topK,
		Confidence: result.Confidence,
		Threshold:  rc.SimilarityThreshold,
		Handled:    result.Confidence >= rc.SimilarityThreshold,
		ElapsedMS:  elapsed,
		Config: map[string]any{
			"chunk_size":      rc.ChunkSize,
			"chunk_overlap":   rc.ChunkOverlap,
			"boundary_window": rc.BoundaryWindow,
			"ngram_range":     []int{rc.NgramMin, rc.NgramMax},
			"min_df":          rc.MinDocFreq,
			"max_df":          rc.MaxDocFreq,
		},
		Results: items,
	})
}
