package menu

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// DefaultTemplate renders the first text unchanged.
const DefaultTemplate = "{0}"

// Escaper neutralises host-provided text before it is placed into a template.
type Escaper func(string) string

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// HTMLEscape escapes the five HTML-significant characters.
func HTMLEscape(text string) string {
	return htmlReplacer.Replace(text)
}

// TerminalEscape strips ANSI sequences and replaces remaining control
// characters with spaces so host text cannot drive the terminal.
func TerminalEscape(text string) string {
	stripped := ansi.Strip(text)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, stripped)
}

// FormatText substitutes the escaped texts into template placeholders {0},
// {1}, ... in order. Only the first occurrence of each placeholder is
// replaced. An empty template falls back to DefaultTemplate and a nil escaper
// to HTMLEscape.
func FormatText(texts Texts, template string, escape Escaper) string {
	if len(texts) == 0 || (len(texts) == 1 && texts[0] == "") {
		return ""
	}
	if template == "" {
		template = DefaultTemplate
	}
	if escape == nil {
		escape = HTMLEscape
	}
	for i, text := range texts {
		template = strings.Replace(template, "{"+strconv.Itoa(i)+"}", escape(text), 1)
	}
	return template
}
