// Package library lists catalog content (case studies, lesson plans and
// resources) and shows one entry at a time. Opening an entry counts as
// studying, creating or accessing it.
package library

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/aieduca/biaslab/internal/progress"
	"github.com/aieduca/biaslab/internal/screen"
	"github.com/aieduca/biaslab/internal/ui/components"
	"github.com/aieduca/biaslab/internal/ui/layout"
	"github.com/aieduca/biaslab/internal/ui/theme"
)

// Item is one entry of a library list.
type Item struct {
	Label string
	Hint  string
	// Open records the activity and returns the detail text.
	Open func() (string, []progress.Achievement, error)
}

type openedMsg struct {
	index int
}

// LibraryScreen implements screen.Screen for a content list.
type LibraryScreen struct {
	title string
	env   *screen.Env
	items []Item
	menu  components.Menu

	open     bool
	detail   string
	unlocked []progress.Achievement
	err      error
	scroll   int
}

var _ screen.Screen = (*LibraryScreen)(nil)
var _ screen.KeyHintProvider = (*LibraryScreen)(nil)

// New creates a library screen over items.
func New(title string, env *screen.Env, items []Item) *LibraryScreen {
	menuItems := make([]components.MenuItem, len(items))
	for i, it := range items {
		menuItems[i] = components.MenuItem{
			Label: it.Label,
			Hint:  it.Hint,
			Action: func() tea.Cmd {
				return func() tea.Msg { return openedMsg{index: i} }
			},
		}
	}
	return &LibraryScreen{
		title: title,
		env:   env,
		items: items,
		menu:  components.NewMenu(menuItems),
	}
}

func (l *LibraryScreen) Init() tea.Cmd {
	return nil
}

func (l *LibraryScreen) Title() string {
	return l.title
}

func (l *LibraryScreen) KeyHints() []layout.KeyHint {
	if l.open {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Rolar"},
			{Key: "←", Description: "Lista"},
			{Key: "Esc", Description: "Início"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navegar"},
		{Key: "Enter", Description: "Abrir"},
		{Key: "Esc", Description: "Voltar"},
	}
}

func (l *LibraryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(openedMsg); ok {
		l.openItem(m.index)
		return l, nil
	}

	if !l.open {
		var cmd tea.Cmd
		l.menu, cmd = l.menu.Update(msg)
		return l, cmd
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "up", "k":
			l.scroll = max(l.scroll-1, 0)
		case "down", "j":
			l.scroll++
		case "left", "h", "backspace", "q":
			l.open = false
		}
	}
	return l, nil
}

func (l *LibraryScreen) openItem(i int) {
	if i < 0 || i >= len(l.items) || l.items[i].Open == nil {
		return
	}
	l.detail, l.unlocked, l.err = l.items[i].Open()
	l.open = true
	l.scroll = 0
	if l.err == nil {
		l.env.Save()
	}
}

// Detail returns the text of the open entry.
func (l *LibraryScreen) Detail() string { return l.detail }

func (l *LibraryScreen) View(width, height int) string {
	if len(l.items) == 0 {
		return lipgloss.NewStyle().
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Nenhum conteúdo disponível.\nVerifique o diretório de dados.")
	}
	if !l.open {
		body := theme.Title.Render(l.title) + "\n" +
			theme.Hint.Render(fmt.Sprintf("%d itens", len(l.items))) + "\n\n" +
			l.menu.View()
		text, _ := layout.Scroll(body, max(l.menu.Selected-height+6, 0), height)
		return lipgloss.NewStyle().Padding(0, 2).Render(text)
	}

	var b strings.Builder
	if l.err != nil {
		b.WriteString(theme.Incorrect.Render(l.err.Error()))
	} else {
		for _, a := range l.unlocked {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
				Render("Conquista desbloqueada: " + a.Title()))
			b.WriteString("\n")
		}
		if len(l.unlocked) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(lipgloss.NewStyle().Width(max(width-4, 20)).Render(l.detail))
	}
	text, off := layout.Scroll(b.String(), l.scroll, height)
	l.scroll = off
	return lipgloss.NewStyle().Padding(0, 2).Render(text)
}
