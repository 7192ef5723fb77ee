package fincontext

import (
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/finnyai/internal/finance"
)

var kindLabels = map[finance.Kind]string{
	finance.KindIncome:  "Receita",
	finance.KindExpense: "Despesa",
}

var categoryHeadings = map[finance.CategoryKind]string{
	finance.CategoryExpense: "Categorias de despesa",
	finance.CategoryIncome:  "Categorias de receita",
	finance.CategorySavings: "Categorias de poupança",
}

func (a *Aggregator) profileSection(rec finance.RawRecord) finance.Section {
	p := a.resolver.Profile(rec)

	var b strings.Builder
	b.WriteString("Perfil do usuário:")

	if p.Name != "" {
		fmt.Fprintf(&b, "\nNome: %s", p.Name)
	}

	if p.Email != "" {
		fmt.Fprintf(&b, "\nEmail: %s", p.Email)
	}

	return finance.Section{Name: finance.SectionProfile, Body: b.String()}
}

func (a *Aggregator) balanceSection(rec finance.RawRecord) finance.Section {
	bal := a.resolver.Balance(rec)
	f := a.resolver.Formatter()

	var b strings.Builder
	b.WriteString("Resumo financeiro:")
	fmt.Fprintf(&b, "\nSaldo total: %s", f.Money(bal.Total))
	fmt.Fprintf(&b, "\nReceitas: %s", f.Money(bal.Income))
	fmt.Fprintf(&b, "\nDespesas: %s", f.Money(bal.Expenses))
	fmt.Fprintf(&b, "\nVariação no mês: %s (%s)", f.Money(bal.Change), f.Percent(bal.ChangePercentage))

	return finance.Section{Name: finance.SectionBalance, Body: b.String()}
}

func (a *Aggregator) transactionsSection(recs []finance.RawRecord, cats []finance.CategoryAggregate) finance.Section {
	f := a.resolver.Formatter()

	var b strings.Builder

	if len(recs) == 0 {
		b.WriteString("Transações recentes: nenhuma transação encontrada.")
		return finance.Section{Name: finance.SectionTransactions, Body: b.String()}
	}

	fmt.Fprintf(&b, "Transações recentes (%d):", len(recs))

	for i, rec := range recs {
		fmt.Fprintf(&b, "\n%d. %s | %s | Categoria: %s | Data: %s | %s",
			i+1,
			a.resolver.Name(rec),
			f.Money(a.resolver.Amount(rec)),
			a.resolver.Category(rec, cats),
			a.resolver.Date(rec),
			kindLabels[a.resolver.Kind(rec, cats)],
		)
	}

	return finance.Section{Name: finance.SectionTransactions, Body: b.String()}
}

// categorySections renders one section per category kind, always in
// finance.CategoryKinds order.
func (a *Aggregator) categorySections(cats []finance.CategoryAggregate) []finance.Section {
	f := a.resolver.Formatter()
	sections := make([]finance.Section, 0, len(finance.CategoryKinds))

	for _, kind := range finance.CategoryKinds {
		var b strings.Builder
		b.WriteString(categoryHeadings[kind] + ":")

		n := 0

		for _, c := range cats {
			if c.Kind != kind {
				continue
			}

			n++

			fmt.Fprintf(&b, "\n- %s", c.Name)

			if c.TotalAmount != nil {
				fmt.Fprintf(&b, ": %s", f.Money(*c.TotalAmount))
			}

			if c.TransactionCount != nil {
				fmt.Fprintf(&b, " (%d transações)", *c.TransactionCount)
			}
		}

		if n == 0 {
			b.WriteString(" nenhuma")
		}

		sections = append(sections, finance.Section{Name: finance.CategorySection(kind), Body: b.String()})
	}

	return sections
}
