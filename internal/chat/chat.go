// Package chat holds conversation state between a user and the assistant.
package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is immutable once appended to a session.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultFallbackMessage replaces the assistant reply when the gateway fails.
const DefaultFallbackMessage = "Desculpe, não consegui responder agora. Tente novamente em instantes."

// RefreshTrigger reports whether a user message needs fresh financial data.
type RefreshTrigger func(text string) bool

// DefaultKeywords are matched case-insensitively as substrings.
var DefaultKeywords = []string{
	"balance", "money", "spending", "income", "expense", "transaction", "financial", "how much", "have",
	"saldo", "dinheiro", "gasto", "receita", "despesa", "transaç", "financ", "quanto", "tenho",
}

// KeywordTrigger matches any of keywords, or DefaultKeywords when none are
// given.
func KeywordTrigger(keywords ...string) RefreshTrigger {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}

	return func(text string) bool {
		text = strings.ToLower(text)
		for _, k := range lowered {
			if strings.Contains(text, k) {
				return true
			}
		}

		return false
	}
}
