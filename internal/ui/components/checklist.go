package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/aieduca/biaslab/internal/ui/theme"
)

// Checklist is a multi-select list. Space toggles the highlighted item;
// enter confirms.
type Checklist struct {
	Options   []string
	Checked   []bool
	Cursor    int
	Confirmed bool
}

// NewChecklist creates an unchecked list.
func NewChecklist(options []string) Checklist {
	return Checklist{
		Options: options,
		Checked: make([]bool, len(options)),
	}
}

// Update handles navigation, toggling and confirmation.
func (c Checklist) Update(msg tea.Msg) (Checklist, tea.Cmd) {
	if c.Confirmed {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "space", " ", "x":
		if c.Cursor < len(c.Checked) {
			c.Checked[c.Cursor] = !c.Checked[c.Cursor]
		}
	case "enter":
		c.Confirmed = true
	}
	return c, nil
}

// Indices returns the checked positions in list order.
func (c Checklist) Indices() []int {
	var out []int
	for i, on := range c.Checked {
		if on {
			out = append(out, i)
		}
	}
	return out
}

// View renders the list with check boxes.
func (c Checklist) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		box := "[ ]"
		if c.Checked[i] {
			box = "[x]"
		}
		prefix := "  "
		if i == c.Cursor && !c.Confirmed {
			prefix = "▸ "
		}
		line := prefix + box + " " + opt
		switch {
		case i == c.Cursor && !c.Confirmed:
			b.WriteString(theme.Selected.Render(line))
		case c.Checked[i]:
			b.WriteString(theme.Label.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
