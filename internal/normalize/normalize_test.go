package normalize_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/finnyai/internal/finance"
	"github.com/MrJamesThe3rd/finnyai/internal/normalize"
)

func categories() []finance.CategoryAggregate {
	return []finance.CategoryAggregate{
		{ID: "1", Name: "Alimentação", Kind: finance.CategoryExpense},
		{ID: "3", Name: "Transporte", Kind: finance.CategoryExpense},
		{ID: "7", Name: "Salário", Kind: finance.CategoryIncome},
	}
}

func TestResolver_Name(t *testing.T) {
	r := normalize.New("pt-BR", "BRL")

	tests := []struct {
		name string
		rec  finance.RawRecord
		want string
	}{
		{name: "Description", rec: finance.RawRecord{"description": "Mercado", "title": "Other"}, want: "Mercado"},
		{name: "BlankDescriptionFallsThrough", rec: finance.RawRecord{"description": "   ", "title": "Padaria"}, want: "Padaria"},
		{name: "SnakeCase", rec: finance.RawRecord{"transaction_name": "Aluguel"}, want: "Aluguel"},
		{name: "Portuguese", rec: finance.RawRecord{"transacao": "Pix"}, want: "Pix"},
		{name: "Trimmed", rec: finance.RawRecord{"name": "  Uber  "}, want: "Uber"},
		{name: "WrongType", rec: finance.RawRecord{"description": 42}, want: finance.NoName},
		{name: "Empty", rec: finance.RawRecord{}, want: finance.NoName},
		{name: "Nil", rec: nil, want: finance.NoName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Name(tt.rec))
		})
	}
}

func TestResolver_Category(t *testing.T) {
	r := normalize.New("pt-BR", "BRL")

	tests := []struct {
		name string
		rec  finance.RawRecord
		cats []finance.CategoryAggregate
		want string
	}{
		{
			name: "StringWinsOverID",
			rec:  finance.RawRecord{"category": "Lazer", "categoryId": 3},
			cats: categories(),
			want: "Lazer",
		},
		{
			name: "SnakeCaseString",
			rec:  finance.RawRecord{"category_name": "Saúde"},
			want: "Saúde",
		},
		{
			name: "ObjectName",
			rec:  finance.RawRecord{"category": map[string]any{"id": 9, "name": "Educação"}},
			want: "Educação",
		},
		{
			name: "IDStringMatchesNumber",
			rec:  finance.RawRecord{"categoryId": "3"},
			cats: categories(),
			want: "Transporte",
		},
		{
			name: "IDNumberMatchesString",
			rec:  finance.RawRecord{"category_id": float64(3)},
			cats: categories(),
			want: "Transporte",
		},
		{
			name: "IDJSONNumber",
			rec:  finance.RawRecord{"categoryId": json.Number("7")},
			cats: categories(),
			want: "Salário",
		},
		{
			name: "IDLeadingZeroString",
			rec:  finance.RawRecord{"categoryId": "03"},
			cats: []finance.CategoryAggregate{{ID: "3", Name: "Transporte"}, {ID: "03", Name: "Lazer"}},
			want: "Lazer",
		},
		{
			name: "IDExponentString",
			rec:  finance.RawRecord{"categoryId": "1e3"},
			cats: []finance.CategoryAggregate{{ID: "1000", Name: "Mil"}, {ID: "1e3", Name: "Casa"}},
			want: "Casa",
		},
		{
			name: "IDStringDoesNotMatchByValue",
			rec:  finance.RawRecord{"categoryId": "03"},
			cats: categories(),
			want: finance.NoCategory,
		},
		{
			name: "IDNumberMatchesPaddedString",
			rec:  finance.RawRecord{"categoryId": 3},
			cats: []finance.CategoryAggregate{{ID: "03", Name: "Lazer"}},
			want: "Lazer",
		},
		{
			name: "IDWideJSONNumber",
			rec:  finance.RawRecord{"categoryId": json.Number("12345678901234567891")},
			cats: []finance.CategoryAggregate{
				{ID: "12345678901234567890", Name: "Vizinho"},
				{ID: "12345678901234567891", Name: "Exato"},
			},
			want: "Exato",
		},
		{
			name: "IDWithoutList",
			rec:  finance.RawRecord{"categoryId": 3},
			want: finance.NoCategory,
		},
		{
			name: "SecondaryKey",
			rec:  finance.RawRecord{"categoria": "Mercado"},
			want: "Mercado",
		},
		{
			name: "SecondaryObject",
			rec:  finance.RawRecord{"transaction_category": map[string]any{"name": "Casa"}},
			want: "Casa",
		},
		{
			name: "NothingUsable",
			rec:  finance.RawRecord{"category": 12, "cat": []string{"x"}},
			want: finance.NoCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Category(tt.rec, tt.cats))
		})
	}
}

func TestResolver_Amount(t *testing.T) {
	r := normalize.New("pt-BR", "BRL")

	tests := []struct {
		name string
		rec  finance.RawRecord
		want float64
	}{
		{name: "Float", rec: finance.RawRecord{"amount": 23.5}, want: 23.5},
		{name: "Negative", rec: finance.RawRecord{"amount": -40.25}, want: 40.25},
		{name: "Int", rec: finance.RawRecord{"amount": 10}, want: 10},
		{name: "JSONNumber", rec: finance.RawRecord{"amount": json.Number("-7.5")}, want: 7.5},
		{name: "DotString", rec: finance.RawRecord{"amount": "23.50"}, want: 23.5},
		{name: "BrazilianString", rec: finance.RawRecord{"amount": "R$ 1.234,56"}, want: 1234.56},
		{name: "Garbage", rec: finance.RawRecord{"amount": "abc"}, want: 0},
		{name: "Bool", rec: finance.RawRecord{"amount": true}, want: 0},
		{name: "Missing", rec: finance.RawRecord{}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, r.Amount(tt.rec), 1e-9)
		})
	}
}

func TestResolver_Date(t *testing.T) {
	pt := normalize.New("pt-BR", "BRL")
	us := normalize.New("en-US", "USD")

	tests := []struct {
		name   string
		rec    finance.RawRecord
		wantPT string
		wantUS string
		iso    string
	}{
		{
			name:   "DateOnly",
			rec:    finance.RawRecord{"date": "2026-10-05"},
			wantPT: "05/10/2026",
			wantUS: "10/05/2026",
			iso:    "2026-10-05",
		},
		{
			name:   "RFC3339",
			rec:    finance.RawRecord{"createdAt": "2026-01-31T10:00:00Z"},
			wantPT: "31/01/2026",
			wantUS: "01/31/2026",
			iso:    "2026-01-31",
		},
		{
			name:   "Time",
			rec:    finance.RawRecord{"transaction_date": time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)},
			wantPT: "01/12/2025",
			wantUS: "12/01/2025",
			iso:    "2025-12-01",
		},
		{
			name:   "Unparsable",
			rec:    finance.RawRecord{"date": "yesterday"},
			wantPT: finance.DateUnavailable,
			wantUS: finance.DateUnavailable,
			iso:    finance.DateUnavailable,
		},
		{
			name:   "Missing",
			rec:    finance.RawRecord{},
			wantPT: finance.DateUnavailable,
			wantUS: finance.DateUnavailable,
			iso:    finance.DateUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantPT, pt.Date(tt.rec))
			assert.Equal(t, tt.wantUS, us.Date(tt.rec))
			assert.Equal(t, tt.iso, pt.ISODate(tt.rec))
		})
	}
}

func TestResolver_Kind(t *testing.T) {
	r := normalize.New("pt-BR", "BRL")

	tests := []struct {
		name string
		rec  finance.RawRecord
		cats []finance.CategoryAggregate
		want finance.Kind
	}{
		{name: "ExplicitIncome", rec: finance.RawRecord{"type": "income", "typeId": 1}, want: finance.KindIncome},
		{name: "ExplicitPortuguese", rec: finance.RawRecord{"type": "Receita"}, want: finance.KindIncome},
		{name: "ExplicitExpense", rec: finance.RawRecord{"type": "EXPENSE"}, want: finance.KindExpense},
		{name: "TypeIDSentinelString", rec: finance.RawRecord{"typeId": "1"}, want: finance.KindExpense},
		{name: "TypeIDSentinelNumber", rec: finance.RawRecord{"type_id": float64(1)}, want: finance.KindExpense},
		{name: "TypeIDOther", rec: finance.RawRecord{"typeId": 2}, want: finance.KindIncome},
		{name: "CategoryIDSentinel", rec: finance.RawRecord{"categoryId": 1}, want: finance.KindExpense},
		{
			name: "CategoryListKind",
			rec:  finance.RawRecord{"categoryId": "7"},
			cats: categories(),
			want: finance.KindIncome,
		},
		{name: "UnknownTypeFallsThrough", rec: finance.RawRecord{"type": "weird", "typeId": 5}, want: finance.KindIncome},
		{name: "NoSignal", rec: finance.RawRecord{"description": "Uber"}, want: finance.KindExpense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Kind(tt.rec, tt.cats))
		})
	}
}

func TestResolver_Totality(t *testing.T) {
	r := normalize.New("pt-BR", "BRL")

	records := []finance.RawRecord{
		nil,
		{},
		{"description": nil, "category": nil, "amount": nil, "date": nil, "type": nil},
		{"description": []any{1, 2}, "category": map[string]any{"name": 5}, "amount": map[string]any{}, "date": 3.5, "type": false},
		{"categoryId": []string{"1"}, "typeId": map[string]any{}},
		{"amount": "NaN", "date": float64(-1)},
	}

	fields := []normalize.Field{
		normalize.FieldName, normalize.FieldCategory, normalize.FieldAmount, normalize.FieldDate, normalize.FieldKind,
	}

	for _, rec := range records {
		for _, field := range fields {
			assert.NotPanics(t, func() {
				v := r.Resolve(rec, field, categories())

				switch field {
				case normalize.FieldAmount:
					assert.IsType(t, float64(0), v)
				case normalize.FieldKind:
					assert.IsType(t, finance.Kind(""), v)
				default:
					s, ok := v.(string)
					assert.True(t, ok)
					assert.NotEmpty(t, s)
				}
			})
		}
	}
}

func TestResolver_TransactionFixedPoint(t *testing.T) {
	r := normalize.New("pt-BR", "BRL")

	canonical := []finance.CanonicalTransaction{
		{Name: "Uber", CategoryName: "Transporte", Amount: 23.5, Date: "2026-10-05", Kind: finance.KindExpense},
		{Name: finance.NoName, CategoryName: finance.NoCategory, Amount: 0, Date: finance.DateUnavailable, Kind: finance.KindIncome},
	}

	for _, tx := range canonical {
		assert.Equal(t, tx, r.Transaction(tx.Record(), categories()))
	}
}

func TestResolver_Transaction(t *testing.T) {
	r := normalize.New("pt-BR", "BRL")

	got := r.Transaction(finance.RawRecord{
		"id":          "abc",
		"title":       "Almoço",
		"categoryId":  3,
		"amount":      "-45,90",
		"date":        "2026-10-10T12:30:00-03:00",
		"typeId":      "1",
		"isFavorite":  true,
		"unknown_key": "ignored",
	}, categories())

	assert.Equal(t, finance.CanonicalTransaction{
		Name:         "Almoço",
		CategoryName: "Transporte",
		Amount:       45.9,
		Date:         "2026-10-10",
		Kind:         finance.KindExpense,
	}, got)
}

func TestResolver_CategoryAggregate(t *testing.T) {
	r := normalize.New("pt-BR", "BRL")

	got := r.CategoryAggregate(finance.RawRecord{
		"id":               float64(4),
		"name":             "Investimentos",
		"typeId":           3,
		"totalSpent":       "150.00",
		"transactionCount": float64(2),
	})

	assert.Equal(t, "4", got.ID)
	assert.Equal(t, "Investimentos", got.Name)
	assert.Equal(t, finance.CategorySavings, got.Kind)
	if assert.NotNil(t, got.TotalAmount) {
		assert.InDelta(t, 150.0, *got.TotalAmount, 1e-9)
	}
	if assert.NotNil(t, got.TransactionCount) {
		assert.Equal(t, 2, *got.TransactionCount)
	}

	bare := r.CategoryAggregate(finance.RawRecord{"type": "receita"})
	assert.Equal(t, finance.NoCategory, bare.Name)
	assert.Equal(t, finance.CategoryIncome, bare.Kind)
	assert.Nil(t, bare.TotalAmount)
	assert.Nil(t, bare.TransactionCount)
}

func TestResolver_BalanceAndProfile(t *testing.T) {
	r := normalize.New("pt-BR", "BRL")

	balance := r.Balance(finance.RawRecord{
		"totalBalance":      "1.500,00",
		"total_income":      2000,
		"expenses":          json.Number("500"),
		"change_percentage": 12.5,
	})
	assert.InDelta(t, 1500.0, balance.Total, 1e-9)
	assert.InDelta(t, 2000.0, balance.Income, 1e-9)
	assert.InDelta(t, 500.0, balance.Expenses, 1e-9)
	assert.InDelta(t, 0.0, balance.Change, 1e-9)
	assert.InDelta(t, 12.5, balance.ChangePercentage, 1e-9)

	profile := r.Profile(finance.RawRecord{"full_name": "Maria Silva", "email": "maria@example.com"})
	assert.Equal(t, finance.Profile{Name: "Maria Silva", Email: "maria@example.com"}, profile)
}
