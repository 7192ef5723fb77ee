package finance

import (
	"strings"
	"time"
)

// Kind is the direction of a transaction.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// CategoryKind groups categories in the rendered context.
type CategoryKind string

const (
	CategoryExpense CategoryKind = "expense"
	CategoryIncome  CategoryKind = "income"
	CategorySavings CategoryKind = "savings"
)

// CategoryKinds lists category kinds in rendering order.
var CategoryKinds = []CategoryKind{CategoryExpense, CategoryIncome, CategorySavings}

// Placeholders used when a record carries no usable value.
const (
	NoName          = "Sem nome"
	NoCategory      = "Sem categoria"
	DateUnavailable = "Data não disponível"
)

// RawRecord is an upstream record of unknown shape. Keys and value types vary
// by source; nothing about it is trusted until it goes through normalize.
type RawRecord map[string]any

// BalanceSummary is the user's current balance snapshot.
type BalanceSummary struct {
	Total            float64
	Income           float64
	Expenses         float64
	Change           float64
	ChangePercentage float64
}

// CanonicalTransaction is a transaction reduced to the fixed field set used
// for rendering. Amount is always non-negative; the sign lives in Kind.
type CanonicalTransaction struct {
	Name         string
	CategoryName string
	Amount       float64
	Date         string // YYYY-MM-DD or DateUnavailable
	Kind         Kind
}

// Record returns the transaction in raw form. Normalizing the result yields
// the same transaction.
func (t CanonicalTransaction) Record() RawRecord {
	return RawRecord{
		"name":     t.Name,
		"category": t.CategoryName,
		"amount":   t.Amount,
		"date":     t.Date,
		"type":     string(t.Kind),
	}
}

// CategoryAggregate is a category with optional usage totals.
type CategoryAggregate struct {
	ID               string
	Name             string
	Kind             CategoryKind
	TotalAmount      *float64
	TransactionCount *int
}

type Profile struct {
	Name  string
	Email string
}

// SourceName identifies one of the four upstream reads.
type SourceName string

const (
	SourceBalance      SourceName = "balance"
	SourceTransactions SourceName = "transactions"
	SourceCategories   SourceName = "categories"
	SourceProfile      SourceName = "profile"
)

// SectionName identifies a block of the rendered context.
type SectionName string

const (
	SectionProfile      SectionName = "profile"
	SectionBalance      SectionName = "balance"
	SectionTransactions SectionName = "transactions"
)

// CategorySection returns the section name for a category kind.
func CategorySection(k CategoryKind) SectionName {
	return SectionName("categories:" + string(k))
}

type Section struct {
	Name SectionName
	Body string
}

// Context is the textual digest of a user's finances handed to the assistant.
// It is built once and never modified; a refresh produces a new value.
type Context struct {
	Sections    []Section
	GeneratedAt time.Time
	// Missing lists the sources that failed while building this context.
	Missing []SourceName
}

// Text joins all section bodies, separated by blank lines.
func (c *Context) Text() string {
	if c == nil {
		return ""
	}

	bodies := make([]string, 0, len(c.Sections))
	for _, s := range c.Sections {
		bodies = append(bodies, s.Body)
	}

	return strings.Join(bodies, "\n\n")
}

// Partial reports whether at least one source failed.
func (c *Context) Partial() bool {
	return c != nil && len(c.Missing) > 0
}

// SectionNames returns the names of the sections in order.
func (c *Context) SectionNames() []SectionName {
	if c == nil {
		return nil
	}

	names := make([]SectionName, len(c.Sections))
	for i, s := range c.Sections {
		names[i] = s.Name
	}

	return names
}
