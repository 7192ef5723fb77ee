package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finnyai/internal/extraction"
	"github.com/MrJamesThe3rd/finnyai/internal/finance"
	"github.com/MrJamesThe3rd/finnyai/internal/media"
)

var ErrExtractionUnavailable = errors.New("extraction is not configured for this session")

//go:generate mockgen -source=session.go -destination=session_mock.go -package=chat
type Gateway interface {
	SendText(ctx context.Context, message string, fctx *finance.Context) (string, error)
}

type ContextBuilder interface {
	Build(ctx context.Context) *finance.Context
}

type Extractor interface {
	FromImage(ctx context.Context, payload media.Payload) (extraction.Transaction, error)
	FromAudio(ctx context.Context, payload media.Payload) (extraction.Transaction, error)
}

type Loader interface {
	Load(ctx context.Context, uri string) (media.Payload, error)
}

// Session is one conversation. It is not safe for concurrent use; callers
// that share a session must serialize access (see Manager).
type Session struct {
	gateway   Gateway
	builder   ContextBuilder
	trigger   RefreshTrigger
	extractor Extractor
	loader    Loader
	fallback  string
	now       func() time.Time

	messages []Message
	cached   *finance.Context
}

type Option func(*Session)

func WithRefreshTrigger(t RefreshTrigger) Option {
	return func(s *Session) {
		if t != nil {
			s.trigger = t
		}
	}
}

func WithExtractor(e Extractor) Option {
	return func(s *Session) {
		s.extractor = e
	}
}

func WithLoader(l Loader) Option {
	return func(s *Session) {
		if l != nil {
			s.loader = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func WithFallbackMessage(msg string) Option {
	return func(s *Session) {
		if msg != "" {
			s.fallback = msg
		}
	}
}

func NewSession(gateway Gateway, builder ContextBuilder, opts ...Option) *Session {
	s := &Session{
		gateway:  gateway,
		builder:  builder,
		trigger:  KeywordTrigger(),
		loader:   media.NewLoader(),
		fallback: DefaultFallbackMessage,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Prime builds the context and replaces the cached one. Surfaces call it when
// a conversation starts; the result may be nil when no source answered.
func (s *Session) Prime(ctx context.Context) *finance.Context {
	s.cached = s.builder.Build(ctx)
	return s.cached
}

// Context returns the cached context, possibly nil.
func (s *Session) Context() *finance.Context {
	return s.cached
}

// Messages returns a copy of the history in order.
func (s *Session) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)

	return out
}

// SendUserMessage appends text and the assistant's reply to the history and
// returns the reply. Gateway failures never surface: the fallback message is
// appended instead.
func (s *Session) SendUserMessage(ctx context.Context, text string) Message {
	s.append(RoleUser, text)

	fctx := s.cached
	if s.trigger(text) {
		fctx = s.Prime(ctx)
	}

	reply, err := s.gateway.SendText(ctx, text, fctx)
	if err != nil {
		slog.Warn("assistant reply failed, using fallback", "error", err)
		return s.append(RoleAssistant, s.fallback)
	}

	return s.append(RoleAssistant, reply)
}

func (s *Session) append(role Role, content string) Message {
	m := Message{
		ID:        uuid.New(),
		Content:   content,
		Role:      role,
		Timestamp: s.now(),
	}

	s.messages = append(s.messages, m)

	return m
}

// AddFromReceipt extracts a transaction from the image at uri. The history
// is left untouched and errors propagate.
func (s *Session) AddFromReceipt(ctx context.Context, uri string) (extraction.Transaction, error) {
	if s.extractor == nil {
		return extraction.Transaction{}, ErrExtractionUnavailable
	}

	payload, err := s.loader.Load(ctx, uri)
	if err != nil {
		return extraction.Transaction{}, fmt.Errorf("loading receipt: %w", err)
	}

	return s.extractor.FromImage(ctx, payload)
}

// AddFromAudio extracts a transaction from the recording at uri. The history
// is left untouched and errors propagate.
func (s *Session) AddFromAudio(ctx context.Context, uri string) (extraction.Transaction, error) {
	if s.extractor == nil {
		return extraction.Transaction{}, ErrExtractionUnavailable
	}

	payload, err := s.loader.Load(ctx, uri)
	if err != nil {
		return extraction.Transaction{}, fmt.Errorf("loading audio: %w", err)
	}

	return s.extractor.FromAudio(ctx, payload)
}
