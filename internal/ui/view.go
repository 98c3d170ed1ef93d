package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"

	"github.com/atomicstack/nui-overlay/internal/menu"
	"github.com/atomicstack/nui-overlay/internal/state"
)

const (
	itemIndicator   = "▌"
	noMenusText     = "(no open menus)"
	noButtonsText   = "(no buttons)"
	waitingText     = "waiting for host"
	footerSeparator = "  "
)

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := make([]styledLine, 0, 16)
	open := state.OpenMenus(m.store)
	if len(open) == 0 {
		lines = append(lines, styledLine{text: noMenusText, style: styles.Info})
	}
	active, _ := m.engine.ActiveMenu()
	for i, current := range open {
		if i > 0 {
			lines = append(lines, styledLine{})
		}
		lines = append(lines, m.menuLines(current, current.ID == active.ID)...)
	}
	if desc := m.focusedDescription(); desc != "" {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: desc, style: styles.Description})
	}
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: m.footerText(), style: styles.Footer})
	}
	// Reserve one row for the status line.
	lines = limitHeight(lines, m.height-1, m.width)
	lines = applyWidth(lines, m.width)

	status := applyWidth([]styledLine{m.statusLine()}, m.width)
	lines = append(lines, status...)
	return renderLines(lines)
}

// menuLines renders one open menu: a title row followed by its viewport.
func (m *Model) menuLines(current menu.Menu, active bool) []styledLine {
	buttons := state.MenuButtons(m.store, current)
	title := current.ID.String()
	if len(buttons) > 0 {
		title = fmt.Sprintf("%s  %d/%d", title, current.Index+1, len(buttons))
	}
	titleStyle := styles.MenuTitle
	if active {
		titleStyle = styles.Header
	}
	lines := []styledLine{{text: title, style: titleStyle}}
	if len(buttons) == 0 {
		return append(lines, styledLine{text: noButtonsText, style: styles.Info})
	}
	for _, visible := range state.VisibleButtons(current, buttons, m.engine.WindowLength(current)) {
		lines = append(lines, m.buildItemLine(visible))
	}
	return lines
}

// buildItemLine constructs a single styledLine for a visible button. When
// the model has a width the text is padded so the selected row's background
// spans the full line.
func (m *Model) buildItemLine(visible state.VisibleButton) styledLine {
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	if visible.Current {
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	fullText := itemIndicator + " " + buttonText(visible.Button)
	if m.width > 0 {
		if pad := m.width - lipgloss.Width(fullText); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1,
	}
}

func buttonText(b menu.Button) string {
	var sb strings.Builder
	if b.IsCheckbox() {
		if b.Checked() {
			sb.WriteString("[x] ")
		} else {
			sb.WriteString("[ ] ")
		}
	}
	sb.WriteString(b.Label(menu.TerminalEscape))
	if b.HasList() {
		sb.WriteString("  < ")
		sb.WriteString(menu.TerminalEscape(b.ListValue()))
		sb.WriteString(" >")
	}
	return sb.String()
}

func (m *Model) focusedDescription() string {
	_, button, ok := m.engine.Focused()
	if !ok {
		return ""
	}
	return strings.TrimSpace(button.Description(menu.TerminalEscape))
}

func (m *Model) footerText() string {
	parts := make([]string, 0, 6)
	for _, binding := range m.keys.help() {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, footerSeparator)
}

func (m *Model) statusLine() styledLine {
	if m.errMsg != "" {
		return styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.Error}
	}
	if !m.lastInbound.IsZero() {
		text := "last host message " + humanize.RelTime(m.lastInbound, m.now(), "ago", "from now")
		return styledLine{text: text, style: styles.Status}
	}
	if m.listener != nil && !m.connected {
		return styledLine{text: waitingText, style: styles.Loading}
	}
	return styledLine{}
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		line.text = truncateText(line.text, width)
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil && text != "" {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

// truncateText cuts text to width display cells, marking the cut with an
// ellipsis.
func truncateText(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	if width == 1 {
		return truncate.String(text, 1)
	}
	return truncate.StringWithTail(text, uint(width-1), "…")
}
