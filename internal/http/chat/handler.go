package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finnyai/internal/chat"
	"github.com/MrJamesThe3rd/finnyai/internal/finance"
	"github.com/MrJamesThe3rd/finnyai/internal/http/auth"
)

type Handler struct {
	sessions *chat.Manager
}

func NewHandler(sessions *chat.Manager) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{id}/messages", h.messages)
	r.Post("/{id}/messages", h.send)
	r.Post("/{id}/context", h.refresh)
	r.Delete("/{id}", h.delete)
}

type contextResponse struct {
	Available   bool                  `json:"available"`
	GeneratedAt *time.Time            `json:"generated_at,omitempty"`
	Sections    []finance.SectionName `json:"sections"`
	Missing     []finance.SourceName  `json:"missing"`
}

type sessionResponse struct {
	ID      uuid.UUID       `json:"id"`
	Context contextResponse `json:"context"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	owner := auth.Subject(r.Context())
	id := h.sessions.Create(owner)

	var fctx *finance.Context

	err := h.sessions.With(id, owner, func(s *chat.Session) error {
		fctx = s.Prime(r.Context())
		return nil
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	respond(w, http.StatusCreated, sessionResponse{ID: id, Context: toContextResponse(fctx)})
}

func (h *Handler) messages(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var msgs []chat.Message

	err := h.sessions.With(id, auth.Subject(r.Context()), func(s *chat.Session) error {
		msgs = s.Messages()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, msgs)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	var reply chat.Message

	err := h.sessions.With(id, auth.Subject(r.Context()), func(s *chat.Session) error {
		reply = s.SendUserMessage(r.Context(), req.Content)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, reply)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var fctx *finance.Context

	err := h.sessions.With(id, auth.Subject(r.Context()), func(s *chat.Session) error {
		fctx = s.Prime(r.Context())
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toContextResponse(fctx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Delete(id, auth.Subject(r.Context())); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

func toContextResponse(fctx *finance.Context) contextResponse {
	if fctx == nil {
		return contextResponse{
			Sections: []finance.SectionName{},
			Missing: []finance.SourceName{
				finance.SourceProfile,
				finance.SourceBalance,
				finance.SourceTransactions,
				finance.SourceCategories,
			},
		}
	}

	resp := contextResponse{
		Available:   true,
		GeneratedAt: new(fctx.GeneratedAt),
		Sections:    fctx.SectionNames(),
		Missing:     fctx.Missing,
	}

	if resp.Missing == nil {
		resp.Missing = []finance.SourceName{}
	}

	return resp
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, chat.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	slog.Error("session request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
