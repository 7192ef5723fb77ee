// Package normalize turns loosely shaped upstream records into canonical
// values. Every function here is total: missing or malformed input resolves to
// a documented default instead of an error.
package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finnyai/internal/finance"
)

// Field names a canonical transaction field.
type Field string

const (
	FieldName     Field = "name"
	FieldCategory Field = "category"
	FieldAmount   Field = "amount"
	FieldDate     Field = "date"
	FieldKind     Field = "type"
)

// Resolver resolves record fields and formats them for a locale.
type Resolver struct {
	format Formatter
}

// New returns a Resolver formatting for the given BCP 47 locale and ISO 4217
// currency. Unknown values fall back to pt-BR and BRL.
func New(locale, currency string) *Resolver {
	return &Resolver{format: NewFormatter(locale, currency)}
}

// Formatter returns the locale formatter used by the resolver.
func (r *Resolver) Formatter() Formatter {
	return r.format
}

// Resolve returns the value for field: a string for name, category and date,
// a float64 for amount and a finance.Kind for type.
func (r *Resolver) Resolve(rec finance.RawRecord, field Field, cats []finance.CategoryAggregate) any {
	switch field {
	case FieldName:
		return r.Name(rec)
	case FieldCategory:
		return r.Category(rec, cats)
	case FieldAmount:
		return r.Amount(rec)
	case FieldDate:
		return r.Date(rec)
	case FieldKind:
		return r.Kind(rec, cats)
	}

	return nil
}

func (r *Resolver) Name(rec finance.RawRecord) string {
	if name, ok := first(nameRules, rec, nil); ok {
		return name
	}

	return finance.NoName
}

func (r *Resolver) Category(rec finance.RawRecord, cats []finance.CategoryAggregate) string {
	if name, ok := first(categoryRules, rec, cats); ok {
		return name
	}

	return finance.NoCategory
}

// Amount returns the absolute amount, or 0 when none can be read.
func (r *Resolver) Amount(rec finance.RawRecord) float64 {
	d, ok := firstNumber(rec, amountKeys)
	if !ok {
		return 0
	}

	return d.Abs().InexactFloat64()
}

// Date returns the record date in the locale's display form.
func (r *Resolver) Date(rec finance.RawRecord) string {
	t, ok := recordDate(rec)
	if !ok {
		return finance.DateUnavailable
	}

	return r.format.Date(t)
}

// ISODate returns the record date as YYYY-MM-DD.
func (r *Resolver) ISODate(rec finance.RawRecord) string {
	t, ok := recordDate(rec)
	if !ok {
		return finance.DateUnavailable
	}

	return t.Format(time.DateOnly)
}

// Kind infers the direction of a transaction. Without any signal the record
// is treated as an expense.
func (r *Resolver) Kind(rec finance.RawRecord, cats []finance.CategoryAggregate) finance.Kind {
	if k, ok := first(kindRules, rec, cats); ok {
		return k
	}

	return finance.KindExpense
}

// Transaction resolves every canonical field independently.
func (r *Resolver) Transaction(rec finance.RawRecord, cats []finance.CategoryAggregate) finance.CanonicalTransaction {
	return finance.CanonicalTransaction{
		Name:         r.Name(rec),
		CategoryName: r.Category(rec, cats),
		Amount:       r.Amount(rec),
		Date:         r.ISODate(rec),
		Kind:         r.Kind(rec, cats),
	}
}

// CategoryAggregate resolves a category-like record.
func (r *Resolver) CategoryAggregate(rec finance.RawRecord) finance.CategoryAggregate {
	c := finance.CategoryAggregate{
		Name: finance.NoCategory,
		Kind: categoryKind(rec),
	}

	if id, ok := identifier(rec["id"]); ok {
		c.ID = id
	}

	if name, ok := first(categoryNameRules, rec, nil); ok {
		c.Name = name
	}

	if total, ok := firstNumber(rec, categoryTotalKeys); ok {
		c.TotalAmount = new(total.Abs().InexactFloat64())
	}

	if count, ok := firstNumber(rec, categoryCountKeys); ok && !count.IsNegative() {
		c.TransactionCount = new(int(count.IntPart()))
	}

	return c
}

func (r *Resolver) Balance(rec finance.RawRecord) finance.BalanceSummary {
	return finance.BalanceSummary{
		Total:            floatOf(rec, balanceTotalKeys),
		Income:           floatOf(rec, balanceIncomeKeys),
		Expenses:         floatOf(rec, balanceExpenseKeys),
		Change:           floatOf(rec, balanceChangeKeys),
		ChangePercentage: floatOf(rec, balanceChangePctKeys),
	}
}

func (r *Resolver) Profile(rec finance.RawRecord) finance.Profile {
	var p finance.Profile

	if name, ok := first(profileNameRules, rec, nil); ok {
		p.Name = name
	}

	if email, ok := first(profileEmailRules, rec, nil); ok {
		p.Email = email
	}

	return p
}

func categoryKind(rec finance.RawRecord) finance.CategoryKind {
	for _, key := range categoryKindFieldKeys {
		v, present := rec[key]
		if !present {
			continue
		}

		if s, ok := text(v); ok {
			if k, known := categoryKindSynonyms[strings.ToLower(s)]; known {
				return k
			}
		}

		if id, ok := identifier(v); ok {
			if k, known := categoryKindIDs[id]; known {
				return k
			}
		}
	}

	return finance.CategoryExpense
}

func recordDate(rec finance.RawRecord) (time.Time, bool) {
	for _, key := range dateKeys {
		if t, ok := instant(rec[key]); ok {
			return t, true
		}
	}

	return time.Time{}, false
}

func firstNumber(rec finance.RawRecord, keys []string) (decimal.Decimal, bool) {
	for _, key := range keys {
		if d, ok := number(rec[key]); ok {
			return d, true
		}
	}

	return decimal.Zero, false
}

func floatOf(rec finance.RawRecord, keys []string) float64 {
	d, _ := firstNumber(rec, keys)
	return d.InexactFloat64()
}
