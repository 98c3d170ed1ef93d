package state

import "github.com/atomicstack/nui-overlay/internal/menu"

// OpenMenus returns the menus with open set, in collection order.
func OpenMenus(s Store) []menu.Menu {
	var open []menu.Menu
	for _, m := range s.Menus() {
		if m.Open {
			open = append(open, m)
		}
	}
	return open
}

// OpenMenuIDs returns the ids of OpenMenus.
func OpenMenuIDs(s Store) []menu.ID {
	var ids []menu.ID
	for _, m := range OpenMenus(s) {
		ids = append(ids, m.ID)
	}
	return ids
}

// ButtonsByMenu maps each menu id to the buttons it lists. Buttons keep the
// order of the button collection, not the order the menu declares them in.
// Ids that no button carries are skipped.
func ButtonsByMenu(s Store) map[menu.ID][]menu.Button {
	buttons := s.Buttons()
	grouped := make(map[menu.ID][]menu.Button)
	for _, m := range s.Menus() {
		if _, seen := grouped[m.ID]; seen {
			continue
		}
		grouped[m.ID] = resolve(m, buttons)
	}
	return grouped
}

// MenuButtons returns the resolved buttons of a single menu, matching the
// ButtonsByMenu entry for it.
func MenuButtons(s Store, m menu.Menu) []menu.Button {
	return resolve(m, s.Buttons())
}

func resolve(m menu.Menu, buttons []menu.Button) []menu.Button {
	var out []menu.Button
	for _, b := range buttons {
		if m.Lists(b.ID) {
			out = append(out, b)
		}
	}
	return out
}

// VisibleButton pairs a button in a menu's viewport with its position in the
// menu and whether it is the selected one.
type VisibleButton struct {
	Button   menu.Button
	Position int
	Current  bool
}

// VisibleButtons projects buttons[top : top+windowLength] of a menu. The
// upper bound is clamped to the number of buttons; nothing is mutated.
func VisibleButtons(m menu.Menu, buttons []menu.Button, windowLength int) []VisibleButton {
	if windowLength < 1 {
		windowLength = 1
	}
	top := m.Top
	if top < 0 {
		top = 0
	}
	end := top + windowLength
	if end > len(buttons) {
		end = len(buttons)
	}
	if top >= end {
		return nil
	}
	visible := make([]VisibleButton, 0, end-top)
	for pos := top; pos < end; pos++ {
		visible = append(visible, VisibleButton{
			Button:   buttons[pos],
			Position: pos,
			Current:  pos == m.Index,
		})
	}
	return visible
}

// SelectedButton returns the button under the menu's index.
func SelectedButton(m menu.Menu, buttons []menu.Button) (menu.Button, bool) {
	if m.Index < 0 || m.Index >= len(buttons) {
		return menu.Button{}, false
	}
	return buttons[m.Index], true
}

// WindowLength resolves the viewport length of a menu: its own windowLength
// when set, otherwise fallback.
func WindowLength(m menu.Menu, fallback int) int {
	if m.WindowLength >= 1 {
		return m.WindowLength
	}
	if fallback < 1 {
		return 1
	}
	return fallback
}
