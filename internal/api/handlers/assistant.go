package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shoplite/shoplite/api/internal/assistant"
)

// ── Assistant Handlers ──────────────────────────────────────

type chatRequest struct {
	Query     string `json:"query"`
	UserEmail string `json:"userEmail"`
	SessionID string `json:"sessionId"`
}

// Chat validates the inbound request and hands it to the engine. The
// engine always produces a structured result, so anything past validation
// responds 200.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "Request must include a non-empty 'query' field")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		respondError(w, http.StatusBadRequest, "Request must include a non-empty 'sessionId' field")
		return
	}

	result := h.Engine.Ask(r.Context(), assistant.Request{
		Query:     req.Query,
		UserEmail: req.UserEmail,
		SessionID: req.SessionID,
	})
	respondJSON(w, http.StatusOK, result)
}

// ListFunctions exposes the declarative schemas of the registry, the shape
// an LLM tool-calling layer would consume.
func (h *Handlers) ListFunctions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Registry.Schemas())
}
