// Package extraction turns free-text model replies into transactions.
package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finnyai/internal/finance"
)

var (
	// ErrNoJSON means the reply holds no {...} span at all.
	ErrNoJSON       = errors.New("no JSON object in reply")
	errTrailingData = errors.New("unexpected data after JSON object")
)

// ParseError is returned when a reply cannot be read as a transaction.
type ParseError struct {
	Reply string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing extraction reply: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Transaction is an extracted transaction. Required fields always carry a
// value; Description and CategoryName stay nil when the reply omits them.
type Transaction struct {
	Name         string       `json:"name"`
	Amount       float64      `json:"amount"`
	Date         string       `json:"date"`
	Type         finance.Kind `json:"type"`
	Description  *string      `json:"description,omitempty"`
	CategoryName *string      `json:"categoryName,omitempty"`
}

// Parse reads a transaction from raw, defaulting the date to today.
func Parse(raw string) (Transaction, error) {
	return ParseAt(raw, time.Now())
}

// ParseAt is Parse with an explicit current time.
func ParseAt(raw string, now time.Time) (Transaction, error) {
	span, ok := braceSpan(raw)
	if !ok {
		return Transaction{}, &ParseError{Reply: raw, Err: ErrNoJSON}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(span)))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return Transaction{}, &ParseError{Reply: raw, Err: err}
	}

	if _, err := dec.Token(); err != io.EOF {
		return Transaction{}, &ParseError{Reply: raw, Err: errTrailingData}
	}

	return coerce(fields, now), nil
}

// braceSpan cuts from the first '{' to the last '}'. Prose around the object
// is dropped; nothing checks that the braces balance.
func braceSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')

	if start < 0 || end < start {
		return "", false
	}

	return s[start : end+1], true
}

func coerce(fields map[string]any, now time.Time) Transaction {
	t := Transaction{
		Name:   finance.NoName,
		Amount: parseFloat(fields["amount"]),
		Date:   now.Format(time.DateOnly),
		Type:   finance.KindExpense,
	}

	if name, ok := optionalString(fields["name"]); ok && strings.TrimSpace(name) != "" {
		t.Name = name
	}

	if date, ok := optionalString(fields["date"]); ok && strings.TrimSpace(date) != "" {
		t.Date = date
	}

	if typ, ok := fields["type"].(string); ok && typ == string(finance.KindIncome) {
		t.Type = finance.KindIncome
	}

	if desc, ok := optionalString(fields["description"]); ok {
		t.Description = &desc
	}

	if cat, ok := optionalString(fields["categoryName"]); ok {
		t.CategoryName = &cat
	}

	return t
}

// optionalString accepts strings and numbers; anything else counts as absent.
func optionalString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	}

	return "", false
}

var floatPrefix = regexp.MustCompile(`^([+-]?)(\d+(?:\.\d+)?|\.\d+)((?:[eE][+-]?\d+)?)`)

// parseFloat reads the longest numeric prefix of v, the way a lenient float
// parser does: "23.5abc" is 23.5, "R$ 10" is 0. Anything that does not start
// with a number, or is not finite, yields 0.
func parseFloat(v any) float64 {
	s, _ := optionalString(v)

	m := floatPrefix.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}

	sign, mantissa, exp := m[1], m[2], m[3]
	if sign == "+" {
		sign = ""
	}

	if strings.HasPrefix(mantissa, ".") {
		mantissa = "0" + mantissa
	}

	d, err := decimal.NewFromString(sign + mantissa + exp)
	if err != nil {
		return 0
	}

	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}

	return f
}
