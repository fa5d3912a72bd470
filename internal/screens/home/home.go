package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/aieduca/biaslab/internal/router"
	"github.com/aieduca/biaslab/internal/screen"
	"github.com/aieduca/biaslab/internal/screens/dashboard"
	"github.com/aieduca/biaslab/internal/screens/library"
	"github.com/aieduca/biaslab/internal/screens/simulator"
	"github.com/aieduca/biaslab/internal/ui/components"
)

// HomeScreen is the main menu.
type HomeScreen struct {
	env        *screen.Env
	menu       components.Menu
	menuLabels []string
}

var _ screen.Screen = (*HomeScreen)(nil)

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

// New creates a new HomeScreen.
func New(env *screen.Env) *HomeScreen {
	menuLabels := []string{
		"SIMULADOR DE VIESES",
		"CASOS REAIS",
		"PLANOS DE AULA",
		"RECURSOS",
		"MEU PROGRESSO",
		"SAIR",
	}

	items := []components.MenuItem{
		{Label: menuLabels[0], Action: func() tea.Cmd { return push(simulator.New(env)) }},
		{Label: menuLabels[1], Action: func() tea.Cmd { return push(library.Cases(env)) }},
		{Label: menuLabels[2], Action: func() tea.Cmd { return push(library.Plans(env)) }},
		{Label: menuLabels[3], Action: func() tea.Cmd { return push(library.Resources(env)) }},
		{Label: menuLabels[4], Action: func() tea.Cmd { return push(dashboard.New(env)) }},
		{Label: menuLabels[5], Action: func() tea.Cmd { return tea.Quit }},
	}

	return &HomeScreen{
		env:        env,
		menu:       components.NewMenu(items),
		menuLabels: menuLabels,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header and footer to estimate
	// the terminal height.
	compact := height+8 < 36 || width < 100
	cw := contentWidth(width)

	sections := []string{
		renderTitle(cw, compact),
		renderStatsBar(h.env.Session.Tracker().Summary(), cw),
		renderMenu(h.menuLabels, h.menu.Selected, cw, compact),
	}
	if !h.env.Session.CanReflect() {
		sections = append(sections, renderCoachNote(cw))
	}

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Início"
}
