package theme

import "github.com/charmbracelet/lipgloss"

// Palette names the terminal colours a style set is built from.
type Palette struct {
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Bright    lipgloss.Color
	Muted     lipgloss.Color
	Dim       lipgloss.Color
	Highlight lipgloss.Color
	Alert     lipgloss.Color
}

// DefaultPalette is the 256-colour palette used by the overlay.
var DefaultPalette = Palette{
	Accent:    "33",
	Text:      "249",
	Bright:    "255",
	Muted:     "245",
	Dim:       "241",
	Highlight: "238",
	Alert:     "196",
}

// Styles holds the Lip Gloss styles for every overlay element.
type Styles struct {
	Loading               *lipgloss.Style
	Item                  *lipgloss.Style
	ItemIndicator         *lipgloss.Style
	SelectedItemIndicator *lipgloss.Style
	SelectedItem          *lipgloss.Style
	Error                 *lipgloss.Style
	Info                  *lipgloss.Style
	Header                *lipgloss.Style
	MenuTitle             *lipgloss.Style
	Description           *lipgloss.Style
	Status                *lipgloss.Style
	Footer                *lipgloss.Style
}

// New derives a style set from p. The selected row shares the highlight
// background between its indicator and its label.
func New(p Palette) *Styles {
	fg := func(c lipgloss.Color) *lipgloss.Style {
		s := lipgloss.NewStyle().Foreground(c)
		return &s
	}
	selected := lipgloss.NewStyle().Background(p.Highlight)
	indicator := selected.Foreground(p.Accent)
	label := selected.Foreground(p.Bright).Bold(true)

	s := &Styles{
		Loading:               fg(p.Accent),
		Item:                  fg(p.Text),
		ItemIndicator:         fg(p.Highlight),
		SelectedItemIndicator: &indicator,
		SelectedItem:          &label,
		Error:                 fg(p.Alert),
		Info:                  fg(p.Text),
		Header:                fg(p.Accent),
		MenuTitle:             fg(p.Muted),
		Description:           fg(p.Text),
		Status:                fg(p.Dim),
		Footer:                fg(p.Dim),
	}
	*s.Loading = s.Loading.Italic(true)
	*s.Error = s.Error.Bold(true)
	*s.Header = s.Header.Bold(true)
	*s.MenuTitle = s.MenuTitle.Bold(true)
	*s.Description = s.Description.Italic(true)
	return s
}

var defaultStyles = New(DefaultPalette)

// Default returns the shared style set built from DefaultPalette.
func Default() *Styles {
	return defaultStyles
}
