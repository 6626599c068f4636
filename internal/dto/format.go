package dto

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"wallet/internal/core"
)

// Formatter renders amounts for people, with the digit grouping and
// decimal mark of a language.
type Formatter struct {
	p *message.Printer
}

// NewFormatter falls back to English for an empty or unparsable tag.
func NewFormatter(lang string) Formatter {
	tag, err := language.Parse(lang)
	if err != nil || lang == "" {
		tag = language.English
	}
	return Formatter{p: message.NewPrinter(tag)}
}

// Money always shows two decimals.
func (f Formatter) Money(m core.Money) string {
	return f.p.Sprintf("%.2f", m.Float())
}

func (f Formatter) Count(n int) string {
	return f.p.Sprintf("%d", n)
}
