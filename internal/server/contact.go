package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/askresume/askresume/internal/contact"
)

// ContactRequest is the contact-form request body.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactResponse acknowledges a stored submission.
type ContactResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg := &contact.Message{Name: req.Name, Email: req.Email, Message: req.Message}
	if err := s.contacts.Save(r.Context(), msg); err != nil {
		if errors.Is(err, contact.ErrInvalidMessage) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("saving contact message", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "could not save message")
		return
	}

	writeJSON(w, http.StatusOK, ContactResponse{Success: true})
}
