package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finnyai/internal/extraction"
	"github.com/MrJamesThe3rd/finnyai/internal/finance"
	"github.com/MrJamesThe3rd/finnyai/internal/normalize"
)

const requestTimeout = 2 * time.Minute

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	finnyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

// RequestCtx returns a context with a standard timeout for assistant calls.
func RequestCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// FormatTransaction renders an extracted transaction as labelled lines.
func FormatTransaction(tx extraction.Transaction, f normalize.Formatter) string {
	kind := "Despesa"
	if tx.Type == finance.KindIncome {
		kind = "Receita"
	}

	lines := []string{
		"Nome:      " + tx.Name,
		"Valor:     " + f.Money(tx.Amount),
		"Data:      " + tx.Date,
		"Tipo:      " + kind,
	}

	if tx.Description != nil {
		lines = append(lines, "Descrição: "+*tx.Description)
	}

	if tx.CategoryName != nil {
		lines = append(lines, "Categoria: "+*tx.CategoryName)
	}

	return strings.Join(lines, "\n")
}

// FormatContextStatus summarizes which sources made it into a context.
func FormatContextStatus(fctx *finance.Context) string {
	if fctx == nil {
		return "Sem dados financeiros"
	}

	if !fctx.Partial() {
		return fmt.Sprintf("Contexto carregado às %s", fctx.GeneratedAt.Format("15:04"))
	}

	missing := make([]string, len(fctx.Missing))
	for i, m := range fctx.Missing {
		missing[i] = string(m)
	}

	return fmt.Sprintf("Contexto parcial (indisponível: %s)", strings.Join(missing, ", "))
}
