package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/askresume/askresume/internal/document"
)

// Fixed chat replies.
const (
	emptyMessageReply = "Please ask a question about my resume."
	unavailableReply  = "I couldn't access the resume information. Please try again later."
)

// ChatRequest is the chat request body.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the chat reply. Handled reports whether the top
// chunk cleared the similarity threshold.
type ChatResponse struct {
	Reply   string `json:"reply"`
	Handled bool   `json:"handled"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	q := strings.TrimSpace(req.Message)
	if q == "" {
		writeJSON(w, http.StatusOK, ChatResponse{Reply: emptyMessageReply, Handled: false})
		return
	}

	result, err := s.engine.Retrieve(q, s.cfg.Retrieve.TopK)
	if err != nil {
		// A missing résumé degrades to a fixed reply; it never reaches
		// the caller as an error on this path.
		if errors.Is(err, document.ErrNotFound) {
			slog.Error("resume unavailable for chat", slog.String("error", err.Error()))
			writeJSON(w, http.StatusOK, ChatResponse{Reply: unavailableReply, Handled: false})
			return
		}
		slog.Error("chat retrieval failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "retrieval failed")
		return
	}

	if len(result.Chunks) == 0 {
		writeJSON(w, http.StatusOK, ChatResponse{Reply: unavailableReply, Handled: false})
		return
	}

	top := result.Chunks[0]
	writeJSON(w, http.StatusOK, ChatResponse{
		Reply:   top.Text,
		Handled: top.Score >= s.cfg.Retrieve.SimilarityThreshold,
	})
}
