package normalize

import (
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	defaultLocale   = "pt-BR"
	defaultCurrency = "BRL"
)

var currencySymbols = map[string]string{
	"BRL": "R$",
	"USD": "US$",
	"EUR": "€",
	"GBP": "£",
}

// Formatter renders money and dates following a locale's conventions.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
	symbol  string
}

func NewFormatter(locale, code string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(defaultLocale)
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.MustParseISO(defaultCurrency)
	}

	symbol, ok := currencySymbols[unit.String()]
	if !ok {
		symbol = unit.String()
	}

	return Formatter{
		tag:     tag,
		printer: message.NewPrinter(tag),
		symbol:  symbol,
	}
}

// Money formats v with two decimals and the currency symbol, using the
// locale's grouping and decimal separators.
func (f Formatter) Money(v float64) string {
	if f.printer == nil {
		f = NewFormatter(defaultLocale, defaultCurrency)
	}

	return f.printer.Sprintf("%s %.2f", f.symbol, v)
}

// Percent formats v (already in percent units) with one decimal.
func (f Formatter) Percent(v float64) string {
	if f.printer == nil {
		f = NewFormatter(defaultLocale, defaultCurrency)
	}

	return f.printer.Sprintf("%.1f%%", v)
}

// Date formats t as the locale writes short dates.
func (f Formatter) Date(t time.Time) string {
	return t.Format(f.dateLayout())
}

func (f Formatter) dateLayout() string {
	base, _ := f.tag.Base()

	switch base.String() {
	case "pt", "es", "fr", "it":
		return "02/01/2006"
	case "en":
		region, _ := f.tag.Region()
		if region.String() == "US" {
			return "01/02/2006"
		}

		return "02/01/2006"
	}

	return time.DateOnly
}
