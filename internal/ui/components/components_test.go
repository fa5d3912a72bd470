package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(s string) tea.Msg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	picked := ""
	m := NewMenu([]MenuItem{
		{Label: "off", Disabled: true},
		{Label: "a", Action: func() tea.Cmd { picked = "a"; return nil }},
		{Label: "off2", Disabled: true},
		{Label: "b", Action: func() tea.Cmd { picked = "b"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("initial selection = %d, want 1", m.Selected)
	}
	m, _ = m.Update(key("down"))
	if m.Selected != 3 {
		t.Fatalf("selection after down = %d, want 3", m.Selected)
	}
	m.Update(key("enter"))
	if picked != "b" {
		t.Fatalf("picked %q, want b", picked)
	}
	if !strings.Contains(m.View(), "▸ b") {
		t.Fatalf("view does not mark selection: %q", m.View())
	}
}

func TestMultiChoice_LetterAndEnter(t *testing.T) {
	m := NewMultiChoice("Há viés?", []string{"Sim", "Talvez", "Não", "Não sei"})
	if m.Chosen() != -1 {
		t.Fatal("nothing chosen yet")
	}
	m, _ = m.Update(key("c"))
	m, _ = m.Update(key("enter"))
	if m.Chosen() != 2 {
		t.Fatalf("chosen = %d, want 2", m.Chosen())
	}
	m, _ = m.Update(key("up"))
	if m.Selected != 2 {
		t.Fatal("submitted choice must not move")
	}
}

func TestChecklist_Toggle(t *testing.T) {
	c := NewChecklist([]string{"a", "b", "c"})
	c, _ = c.Update(key("space"))
	c, _ = c.Update(key("down"))
	c, _ = c.Update(key("down"))
	c, _ = c.Update(key("x"))
	c, _ = c.Update(key("up"))
	c, _ = c.Update(key("x"))
	c, _ = c.Update(key("x"))
	c, _ = c.Update(key("enter"))

	got := c.Indices()
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("indices = %v, want [0 2]", got)
	}
	if !c.Confirmed {
		t.Fatal("expected confirmation")
	}
}

func TestProgressBar_Clamps(t *testing.T) {
	p := NewProgressBar("", 1.7, true, 20)
	if !strings.Contains(p.View(), "170%") {
		t.Fatalf("percent label missing: %q", p.View())
	}
}
