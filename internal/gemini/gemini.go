// Package gemini is a small client for the generateContent REST endpoint.
package gemini

import (
	"errors"
	"fmt"
	"net/http"
)

// Role selects the system prompt and task instruction of a request.
type Role string

const (
	RoleChat                  Role = "chat"
	RoleReceiptExtraction     Role = "receipt-extraction"
	RoleTransactionExtraction Role = "transaction-extraction"
)

var (
	// ErrMissingAPIKey is returned before any request is made.
	ErrMissingAPIKey = errors.New("gemini: api key not configured")
	// ErrEmptyResponse means the call succeeded but carried no usable text.
	ErrEmptyResponse = errors.New("gemini: response has no text")
	// ErrUnsupportedRole is returned when a role does not fit the payload kind.
	ErrUnsupportedRole = errors.New("gemini: role not supported for this payload")
)

const maxErrorBody = 512

// GatewayError is a non-2xx answer from the endpoint.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gemini: unexpected status %d", e.StatusCode)
	}

	return fmt.Sprintf("gemini: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *GatewayError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

type ContentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type Content struct {
	Role  string        `json:"role,omitempty"`
	Parts []ContentPart `json:"parts"`
}

type GenerateContentRequest struct {
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
	Contents          []Content `json:"contents"`
}

type Candidate struct {
	Content CandidateContent `json:"content"`
}

type CandidateContent struct {
	Parts []ContentPart `json:"parts"`
}

type generateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

func NewTextPart(text string) ContentPart {
	return ContentPart{Text: text}
}

func NewInlinePart(mimeType, data string) ContentPart {
	return ContentPart{
		InlineData: &InlineData{
			MimeType: mimeType,
			Data:     data,
		},
	}
}

// extractText returns the first part of the first candidate.
func extractText(candidates []Candidate) string {
	if len(candidates) == 0 || len(candidates[0].Content.Parts) == 0 {
		return ""
	}

	return candidates[0].Content.Parts[0].Text
}
