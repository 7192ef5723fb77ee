package normalize

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finnyai/internal/finance"
)

// rule extracts one candidate value from a record. Rules are evaluated in
// table order and the first one that matches wins.
type rule[T any] struct {
	name    string
	extract func(rec finance.RawRecord, cats []finance.CategoryAggregate) (T, bool)
}

func first[T any](rules []rule[T], rec finance.RawRecord, cats []finance.CategoryAggregate) (T, bool) {
	for _, r := range rules {
		if v, ok := r.extract(rec, cats); ok {
			return v, true
		}
	}

	var zero T

	return zero, false
}

func stringAt(key string) rule[string] {
	return rule[string]{
		name: key,
		extract: func(rec finance.RawRecord, _ []finance.CategoryAggregate) (string, bool) {
			return text(rec[key])
		},
	}
}

func stringsAt(keys ...string) []rule[string] {
	rules := make([]rule[string], len(keys))
	for i, k := range keys {
		rules[i] = stringAt(k)
	}

	return rules
}

func objectNameAt(key string) rule[string] {
	return rule[string]{
		name: key + ".name",
		extract: func(rec finance.RawRecord, _ []finance.CategoryAggregate) (string, bool) {
			obj, ok := object(rec[key])
			if !ok {
				return "", false
			}

			return text(obj["name"])
		},
	}
}

func stringOrObjectNameAt(key string) rule[string] {
	str, obj := stringAt(key), objectNameAt(key)

	return rule[string]{
		name: key + "|" + key + ".name",
		extract: func(rec finance.RawRecord, cats []finance.CategoryAggregate) (string, bool) {
			if v, ok := str.extract(rec, cats); ok {
				return v, true
			}

			return obj.extract(rec, cats)
		},
	}
}

// categoryByID looks the id stored at key up in the supplied category list.
func categoryByID(key string) rule[string] {
	return rule[string]{
		name: key + "->categories",
		extract: func(rec finance.RawRecord, cats []finance.CategoryAggregate) (string, bool) {
			c, ok := lookupCategory(rec[key], cats)
			if !ok {
				return "", false
			}

			return text(c.Name)
		},
	}
}

// lookupCategory matches ids by their trimmed text. Only a numeric record id
// falls back to comparing values, so 3 finds "3" and "3.0" while the string
// "03" only finds "03".
func lookupCategory(v any, cats []finance.CategoryAggregate) (finance.CategoryAggregate, bool) {
	id, ok := rawIdentifier(v)
	if !ok {
		return finance.CategoryAggregate{}, false
	}

	for _, c := range cats {
		if strings.TrimSpace(c.ID) == id {
			return c, true
		}
	}

	if _, isString := v.(string); isString {
		return finance.CategoryAggregate{}, false
	}

	want, err := decimal.NewFromString(id)
	if err != nil {
		return finance.CategoryAggregate{}, false
	}

	for _, c := range cats {
		if got, err := decimal.NewFromString(strings.TrimSpace(c.ID)); err == nil && got.Equal(want) {
			return c, true
		}
	}

	return finance.CategoryAggregate{}, false
}

// rawIdentifier is identifier without reformatting json.Number, which would
// lose digits on ids wider than a float64.
func rawIdentifier(v any) (string, bool) {
	if n, ok := v.(json.Number); ok {
		return text(n.String())
	}

	return identifier(v)
}

var nameRules = stringsAt(
	"description", "title", "name", "label", "transactionName",
	"transaction_description", "transaction_name", "desc", "transacao",
)

var categoryRules = append(
	[]rule[string]{
		stringAt("category"),
		stringAt("category_name"),
		objectNameAt("category"),
		categoryByID("categoryId"),
		categoryByID("category_id"),
	},
	stringOrObjectNameAt("category"),
	stringOrObjectNameAt("categoryName"),
	stringOrObjectNameAt("category_name"),
	stringOrObjectNameAt("cat"),
	stringOrObjectNameAt("categoria"),
	stringOrObjectNameAt("transaction_category"),
)

var amountKeys = []string{"amount", "value", "valor"}

var dateKeys = []string{"date", "transactionDate", "transaction_date", "createdAt", "created_at"}

// expenseSentinel is the type/category id the backend uses for expenses.
const expenseSentinel = "1"

var kindSynonyms = map[string]finance.Kind{
	"income":   finance.KindIncome,
	"receita":  finance.KindIncome,
	"entrada":  finance.KindIncome,
	"credit":   finance.KindIncome,
	"credito":  finance.KindIncome,
	"crédito":  finance.KindIncome,
	"expense":  finance.KindExpense,
	"despesa":  finance.KindExpense,
	"saida":    finance.KindExpense,
	"saída":    finance.KindExpense,
	"debit":    finance.KindExpense,
	"debito":   finance.KindExpense,
	"débito":   finance.KindExpense,
	"spending": finance.KindExpense,
}

func explicitKind(key string) rule[finance.Kind] {
	return rule[finance.Kind]{
		name: key,
		extract: func(rec finance.RawRecord, _ []finance.CategoryAggregate) (finance.Kind, bool) {
			v, present := rec[key]
			if !present {
				return "", false
			}

			if s, ok := text(v); ok {
				if k, known := kindSynonyms[strings.ToLower(s)]; known {
					return k, true
				}
			}

			switch id, _ := identifier(v); id {
			case expenseSentinel:
				return finance.KindExpense, true
			case "2":
				return finance.KindIncome, true
			}

			return "", false
		},
	}
}

func typeIDKind(key string) rule[finance.Kind] {
	return rule[finance.Kind]{
		name: key,
		extract: func(rec finance.RawRecord, _ []finance.CategoryAggregate) (finance.Kind, bool) {
			id, ok := identifier(rec[key])
			if !ok {
				return "", false
			}

			if id == expenseSentinel {
				return finance.KindExpense, true
			}

			return finance.KindIncome, true
		},
	}
}

// categoryIDSentinel only signals expenses; any other category id says
// nothing about direction.
func categoryIDSentinel(key string) rule[finance.Kind] {
	return rule[finance.Kind]{
		name: key + "==1",
		extract: func(rec finance.RawRecord, _ []finance.CategoryAggregate) (finance.Kind, bool) {
			id, ok := identifier(rec[key])
			if !ok || id != expenseSentinel {
				return "", false
			}

			return finance.KindExpense, true
		},
	}
}

func categoryListKind(key string) rule[finance.Kind] {
	return rule[finance.Kind]{
		name: key + "->categories.kind",
		extract: func(rec finance.RawRecord, cats []finance.CategoryAggregate) (finance.Kind, bool) {
			c, ok := lookupCategory(rec[key], cats)
			if !ok {
				return "", false
			}

			switch c.Kind {
			case finance.CategoryIncome:
				return finance.KindIncome, true
			case finance.CategoryExpense:
				return finance.KindExpense, true
			}

			return "", false
		},
	}
}

var kindRules = []rule[finance.Kind]{
	explicitKind("type"),
	explicitKind("kind"),
	typeIDKind("typeId"),
	typeIDKind("type_id"),
	categoryIDSentinel("categoryId"),
	categoryIDSentinel("category_id"),
	categoryListKind("categoryId"),
	categoryListKind("category_id"),
}

var categoryKindSynonyms = map[string]finance.CategoryKind{
	"expense":      finance.CategoryExpense,
	"despesa":      finance.CategoryExpense,
	"despesas":     finance.CategoryExpense,
	"income":       finance.CategoryIncome,
	"receita":      finance.CategoryIncome,
	"receitas":     finance.CategoryIncome,
	"savings":      finance.CategorySavings,
	"saving":       finance.CategorySavings,
	"poupanca":     finance.CategorySavings,
	"poupança":     finance.CategorySavings,
	"investment":   finance.CategorySavings,
	"investimento": finance.CategorySavings,
}

var categoryKindIDs = map[string]finance.CategoryKind{
	"1": finance.CategoryExpense,
	"2": finance.CategoryIncome,
	"3": finance.CategorySavings,
}

var categoryNameRules = stringsAt("name", "title", "label", "categoryName", "category_name", "nome", "description")

var categoryTotalKeys = []string{"totalSpent", "totalAmount", "total_spent", "total_amount", "total"}

var categoryCountKeys = []string{"transactionCount", "transaction_count", "count"}

var (
	balanceTotalKeys      = []string{"total", "totalBalance", "total_balance", "balance", "saldo"}
	balanceIncomeKeys     = []string{"income", "totalIncome", "total_income", "receitas"}
	balanceExpenseKeys    = []string{"expenses", "totalExpenses", "total_expenses", "despesas"}
	balanceChangeKeys     = []string{"change", "variation", "variacao"}
	balanceChangePctKeys  = []string{"changePercentage", "change_percentage", "changePercent"}
	profileNameRules      = stringsAt("name", "fullName", "full_name", "nome", "displayName", "username")
	profileEmailRules     = stringsAt("email", "mail")
	categoryKindFieldKeys = []string{"type", "kind", "typeId", "type_id"}
)
