package menu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind selects one of the two entity collections mirrored from the host.
type Kind int

const (
	KindMenu Kind = iota
	KindButton
)

func (k Kind) String() string {
	switch k {
	case KindMenu:
		return "menu"
	case KindButton:
		return "button"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ID identifies a menu or button. Hosts send ids as JSON strings or numbers
// and expect them back with the same JSON type, so a numeric id keeps its
// literal behind numericMark. A host string that itself starts with the mark
// has it doubled, which keeps the two forms distinct.
type ID string

const numericMark = "\x00"

// NumericID returns the id for a JSON number literal such as 7 or -1.5.
func NumericID(literal string) ID {
	return ID(numericMark + literal)
}

// Numeric reports whether the host sent the id as a JSON number.
func (id ID) Numeric() bool {
	s := string(id)
	return strings.HasPrefix(s, numericMark) && !strings.HasPrefix(s, numericMark+numericMark)
}

// String returns the id as the host wrote it, without quotes.
func (id ID) String() string {
	if strings.HasPrefix(string(id), numericMark) {
		return string(id)[len(numericMark):]
	}
	return string(id)
}

// MarshalJSON writes numeric ids as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.Numeric() {
		return []byte(id.String()), nil
	}
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts string and number literals.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		if strings.HasPrefix(s, numericMark) {
			s = numericMark + s
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("id must be a string or number, got %s", trimmed)
	}
	*id = NumericID(n.String())
	return nil
}

// Texts holds one or more display strings. A bare JSON string decodes to a
// single element; numbers and booleans keep their literal text.
type Texts []string

// UnmarshalJSON accepts a scalar or an array of scalars. null yields nil so
// callers can tell an absent list from an empty one.
func (t *Texts) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = nil
		return nil
	}
	if trimmed[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		out := make(Texts, 0, len(raw))
		for _, item := range raw {
			s, err := scalarText(item)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*t = out
		return nil
	}
	s, err := scalarText(trimmed)
	if err != nil {
		return err
	}
	*t = Texts{s}
	return nil
}

func scalarText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case '{', '[':
		return "", fmt.Errorf("unsupported text value %s", raw)
	case 'n':
		return "", nil
	default:
		return string(raw), nil
	}
}

func (t Texts) clone() Texts {
	if t == nil {
		return nil
	}
	dup := make(Texts, len(t))
	copy(dup, t)
	return dup
}

// Menu mirrors a host-owned menu. Index and Top are UI-owned transient fields.
type Menu struct {
	ID           ID   `json:"id"`
	Open         bool `json:"open"`
	Buttons      []ID `json:"buttons"`
	Index        int  `json:"index"`
	Top          int  `json:"top"`
	WindowLength int  `json:"windowLength,omitempty"`
}

// Clone returns a deep copy of the menu.
func (m Menu) Clone() Menu {
	dup := m
	if m.Buttons != nil {
		dup.Buttons = make([]ID, len(m.Buttons))
		copy(dup.Buttons, m.Buttons)
	}
	return dup
}

// Lists reports whether the menu references the given button id.
func (m Menu) Lists(id ID) bool {
	for _, candidate := range m.Buttons {
		if candidate == id {
			return true
		}
	}
	return false
}

// Button mirrors a host-owned button. ListIndex is UI-owned.
type Button struct {
	ID           ID     `json:"id"`
	Text         Texts  `json:"text"`
	TextTemplate string `json:"textTemplate"`
	Desc         Texts  `json:"desc"`
	DescTemplate string `json:"descTemplate"`
	Check        *bool  `json:"check"`
	List         Texts  `json:"list"`
	ListIndex    int    `json:"listIndex"`
}

// Clone returns a deep copy of the button.
func (b Button) Clone() Button {
	dup := b
	dup.Text = b.Text.clone()
	dup.Desc = b.Desc.clone()
	dup.List = b.List.clone()
	if b.Check != nil {
		v := *b.Check
		dup.Check = &v
	}
	return dup
}

// IsCheckbox reports whether the host attached a check value. A null check
// counts as absent.
func (b Button) IsCheckbox() bool {
	return b.Check != nil
}

// Checked reports whether the checkbox is ticked.
func (b Button) Checked() bool {
	return b.Check != nil && *b.Check
}

// HasList reports whether the button carries a non-empty value list.
func (b Button) HasList() bool {
	return len(b.List) > 0
}

// ListValue returns the list entry under the cursor, or "" when the cursor
// falls outside the list.
func (b Button) ListValue() string {
	if b.ListIndex < 0 || b.ListIndex >= len(b.List) {
		return ""
	}
	return b.List[b.ListIndex]
}

// Label renders the button text through its template.
func (b Button) Label(escape Escaper) string {
	return FormatText(b.Text, b.TextTemplate, escape)
}

// Description renders the button description through its template.
func (b Button) Description(escape Escaper) string {
	return FormatText(b.Desc, b.DescTemplate, escape)
}
