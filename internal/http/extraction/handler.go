package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finnyai/internal/extraction"
	"github.com/MrJamesThe3rd/finnyai/internal/gemini"
	"github.com/MrJamesThe3rd/finnyai/internal/media"
)

const maxUpload = media.MaxSize + 1<<20

var errBadInput = errors.New("invalid media input")

type Loader interface {
	Load(ctx context.Context, uri string) (media.Payload, error)
}

type Handler struct {
	svc    *extraction.Service
	loader Loader
}

func NewHandler(svc *extraction.Service, loader Loader) *Handler {
	return &Handler{svc: svc, loader: loader}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/receipt", h.receipt)
	r.Post("/audio", h.audio)
}

type uriRequest struct {
	URI string `json:"uri"`
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	h.extract(w, r, h.svc.FromImage)
}

func (h *Handler) audio(w http.ResponseWriter, r *http.Request) {
	h.extract(w, r, h.svc.FromAudio)
}

func (h *Handler) extract(w http.ResponseWriter, r *http.Request, run func(context.Context, media.Payload) (extraction.Transaction, error)) {
	payload, err := h.payload(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := run(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(tx); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// payload accepts a multipart "file" field or a JSON body {"uri": ...}.
// Remote callers may only reference http(s) and data URIs.
func (h *Handler) payload(w http.ResponseWriter, r *http.Request) (media.Payload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			return media.Payload{}, fmt.Errorf("%w: file field is required", errBadInput)
		}
		defer file.Close()

		b, err := io.ReadAll(file)
		if err != nil {
			return media.Payload{}, fmt.Errorf("%w: reading upload: %v", errBadInput, err)
		}

		return media.FromBytes(b)
	}

	var req uriRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return media.Payload{}, fmt.Errorf("%w: %v", errBadInput, err)
	}

	uri := strings.TrimSpace(req.URI)
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") && !strings.HasPrefix(uri, "data:") {
		return media.Payload{}, fmt.Errorf("%w: uri must be http(s) or data", errBadInput)
	}

	return h.loader.Load(r.Context(), uri)
}

func writeError(w http.ResponseWriter, err error) {
	var (
		gatewayErr *gemini.GatewayError
		parseErr   *extraction.ParseError
	)

	switch {
	case errors.Is(err, gemini.ErrMissingAPIKey):
		http.Error(w, "assistant is not configured", http.StatusServiceUnavailable)
	case errors.As(err, &gatewayErr), errors.Is(err, gemini.ErrEmptyResponse):
		slog.Warn("assistant gateway failed", "error", err)
		http.Error(w, "assistant unavailable, try again", http.StatusBadGateway)
	case errors.As(err, &parseErr):
		http.Error(w, "could not read a transaction, try again with a clearer input", http.StatusUnprocessableEntity)
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "assistant timed out", http.StatusGatewayTimeout)
	default:
		slog.Error("extraction failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
