package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/finnyai/internal/finance"
	"github.com/MrJamesThe3rd/finnyai/internal/gemini"
	"github.com/MrJamesThe3rd/finnyai/internal/media"
)

//go:generate mockgen -source=service.go -destination=gateway_mock.go -package=extraction
type Gateway interface {
	SendImage(ctx context.Context, payload media.Payload, role gemini.Role, fctx *finance.Context) (string, error)
	SendAudio(ctx context.Context, payload media.Payload, role gemini.Role, fctx *finance.Context) (string, error)
}

// Service extracts transactions from receipts and voice notes. Gateway errors
// are returned unchanged so callers can tell configuration, transport and
// parse failures apart.
type Service struct {
	gateway Gateway
	now     func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(gateway Gateway, opts ...Option) *Service {
	s := &Service{gateway: gateway, now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) FromImage(ctx context.Context, payload media.Payload) (Transaction, error) {
	reply, err := s.gateway.SendImage(ctx, payload, gemini.RoleReceiptExtraction, nil)
	if err != nil {
		return Transaction{}, fmt.Errorf("extracting from image: %w", err)
	}

	return s.parse(reply)
}

func (s *Service) FromAudio(ctx context.Context, payload media.Payload) (Transaction, error) {
	reply, err := s.gateway.SendAudio(ctx, payload, gemini.RoleTransactionExtraction, nil)
	if err != nil {
		return Transaction{}, fmt.Errorf("extracting from audio: %w", err)
	}

	return s.parse(reply)
}

func (s *Service) parse(reply string) (Transaction, error) {
	tx, err := ParseAt(reply, s.now())
	if err != nil {
		slog.Warn("extraction reply not usable", "error", err, "reply_len", len(reply))
		return Transaction{}, err
	}

	return tx, nil
}
