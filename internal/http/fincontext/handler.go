package fincontext

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finnyai/internal/finance"
)

type Builder interface {
	Build(ctx context.Context) *finance.Context
}

type Handler struct {
	builder Builder
}

func NewHandler(builder Builder) *Handler {
	return &Handler{builder: builder}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
}

type sectionResponse struct {
	Name finance.SectionName `json:"name"`
	Body string              `json:"body"`
}

type contextResponse struct {
	Text        string               `json:"text"`
	GeneratedAt time.Time            `json:"generated_at"`
	Sections    []sectionResponse    `json:"sections"`
	Missing     []finance.SourceName `json:"missing"`
}

// get builds a fresh context. No source answering is not an error: the
// response is 204 and callers carry on without financial data.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	fctx := h.builder.Build(r.Context())
	if fctx == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := contextResponse{
		Text:        fctx.Text(),
		GeneratedAt: fctx.GeneratedAt,
		Sections:    make([]sectionResponse, 0, len(fctx.Sections)),
		Missing:     fctx.Missing,
	}

	for _, s := range fctx.Sections {
		resp.Sections = append(resp.Sections, sectionResponse{Name: s.Name, Body: s.Body})
	}

	if resp.Missing == nil {
		resp.Missing = []finance.SourceName{}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
