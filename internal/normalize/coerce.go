package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finnyai/internal/finance"
)

// text returns v as a trimmed, non-empty string.
func text(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}

	s = strings.TrimSpace(s)

	return s, s != ""
}

// identifier renders scalar ids as strings so that "3" and 3 compare equal.
func identifier(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return text(id)
	case json.Number:
		return normalizeNumericID(id.String())
	case float64:
		return formatNumericID(id)
	case float32:
		return formatNumericID(float64(id))
	case int:
		return strconv.Itoa(id), true
	case int32:
		return strconv.FormatInt(int64(id), 10), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case uint:
		return strconv.FormatUint(uint64(id), 10), true
	case uint64:
		return strconv.FormatUint(id, 10), true
	}

	return "", false
}

func formatNumericID(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}

	return strconv.FormatFloat(f, 'f', -1, 64), true
}

func normalizeNumericID(s string) (string, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return text(s)
	}

	return formatNumericID(f)
}

// number coerces numbers, json.Number and numeric strings. Strings may carry a
// currency symbol and use either "1.234,56" or "1,234.56" grouping.
func number(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}

		return decimal.NewFromFloat(n), true
	case float32:
		return number(float64(n))
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case decimal.Decimal:
		return n, true
	case string:
		return numericString(n)
	}

	return decimal.Zero, false
}

func numericString(s string) (decimal.Decimal, bool) {
	clean := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' || r == '+' {
			return r
		}

		return -1
	}, s)
	if clean == "" {
		return decimal.Zero, false
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	switch {
	case lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case lastDot > lastComma:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.DateOnly,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	time.DateTime,
	"02/01/2006",
}

// instant parses the date representations seen across sources.
func instant(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}

		return *t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	case float64, int64, int, json.Number:
		ms, ok := number(t)
		if !ok || !ms.IsPositive() {
			return time.Time{}, false
		}

		return time.UnixMilli(ms.IntPart()).UTC(), true
	}

	return time.Time{}, false
}

// object returns v as a nested record.
func object(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case finance.RawRecord:
		return o, true
	}

	return nil, false
}
