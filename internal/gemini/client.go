package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finnyai/internal/finance"
	"github.com/MrJamesThe3rd/finnyai/internal/media"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout = 45 * time.Second
	defaultBackoff = time.Second
	apiKeyHeader   = "x-goog-api-key"
)

// Client calls the generateContent endpoint. The zero retry count means each
// call makes exactly one request.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry retries transport failures, 429 and 5xx answers with exponential
// backoff.
func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		if maxRetries > 0 {
			c.maxRetries = maxRetries
		}

		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns a client for apiKey. An empty key is accepted here and reported
// by every call as ErrMissingAPIKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		backoff:    defaultBackoff,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SendText sends a chat message with the financial context in the system
// instruction. fctx may be nil.
func (c *Client) SendText(ctx context.Context, message string, fctx *finance.Context) (string, error) {
	req := GenerateContentRequest{
		SystemInstruction: systemInstruction(chatInstruction(c.now(), fctx)),
		Contents:          []Content{{Parts: []ContentPart{NewTextPart(message)}}},
	}

	return c.GenerateContent(ctx, req)
}

// SendImage sends an image for chat or receipt extraction.
func (c *Client) SendImage(ctx context.Context, payload media.Payload, role Role, fctx *finance.Context) (string, error) {
	var system, task string

	switch role {
	case RoleChat:
		system, task = chatInstruction(c.now(), fctx), imageChatTask
	case RoleReceiptExtraction:
		system, task = extractionInstruction(receiptPrompt, c.now()), receiptExtractionTask
	default:
		return "", fmt.Errorf("%w: %s for image", ErrUnsupportedRole, role)
	}

	return c.GenerateContent(ctx, inlineRequest(system, payload, task))
}

// SendAudio sends a voice recording for chat or transaction extraction.
func (c *Client) SendAudio(ctx context.Context, payload media.Payload, role Role, fctx *finance.Context) (string, error) {
	var system, task string

	switch role {
	case RoleChat:
		system, task = chatInstruction(c.now(), fctx), audioChatTask
	case RoleTransactionExtraction:
		system, task = extractionInstruction(transactionPrompt, c.now()), audioExtractionTask
	default:
		return "", fmt.Errorf("%w: %s for audio", ErrUnsupportedRole, role)
	}

	return c.GenerateContent(ctx, inlineRequest(system, payload, task))
}

func systemInstruction(text string) *Content {
	return &Content{Parts: []ContentPart{NewTextPart(text)}}
}

// inlineRequest puts the binary part first and the task text after it.
func inlineRequest(system string, payload media.Payload, task string) GenerateContentRequest {
	return GenerateContentRequest{
		SystemInstruction: systemInstruction(system),
		Contents: []Content{{Parts: []ContentPart{
			NewInlinePart(payload.MIMEType, payload.Data),
			NewTextPart(task),
		}}},
	}
}

// GenerateContent posts payload and returns the trimmed reply text.
func (c *Client) GenerateContent(ctx context.Context, payload GenerateContentRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	if len(payload.Contents) == 0 {
		return "", fmt.Errorf("gemini: request has no contents")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))

	backoff := c.backoff

	for attempt := 0; ; attempt++ {
		text, err := c.do(ctx, endpoint, body)
		if err == nil || attempt >= c.maxRetries || !retryable(err) {
			return text, err
		}

		slog.Warn("gemini request failed, retrying", "attempt", attempt+1, "error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

func (c *Client) do(ctx context.Context, endpoint string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating gemini request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	// In a header so transport errors, which quote the URL, never carry it.
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &GatewayError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var apiResp generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}

	text := strings.TrimSpace(extractText(apiResp.Candidates))
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return "gemini: executing request: " + e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var te *transportError
	if errors.As(err, &te) {
		return true
	}

	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Retryable()
	}

	return false
}
