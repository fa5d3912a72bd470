// Package dashboard shows the learner's progress summary and achievements.
package dashboard

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

// DashboardScreen implements screen.Screen for the progress view.
type DashboardScreen struct {
	env          *screen.Env
	confirmReset bool
	scroll       int
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)

// New creates a progress dashboard.
func New(env *screen.Env) *DashboardScreen {
	return &DashboardScreen{env: env}
}

func (d *DashboardScreen) Init() tea.Cmd {
	return nil
}

func (d *DashboardScreen) Title() string {
	return "Meu Progresso"
}

func (d *DashboardScreen) KeyHints() []layout.KeyHint {
	if d.confirmReset {
		return []layout.KeyHint{
			{Key: "S", Description: "Apagar progresso"},
			{Key: "N", Description: "Cancelar"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Rolar"},
		{Key: "R", Description: "Reiniciar"},
		{Key: "Esc", Description: "Voltar"},
	}
}

func (d *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}

	if d.confirmReset {
		switch kmsg.String() {
		case "s", "y":
			d.env.Session.Tracker().Reset()
			d.env.Save()
			d.confirmReset = false
		case "n":
			d.confirmReset = false
		}
		return d, nil
	}

	switch kmsg.String() {
	case "up", "k":
		d.scroll = max(d.scroll-1, 0)
	case "down", "j":
		d.scroll++
	case "r":
		d.confirmReset = true
	}
	return d, nil
}

func (d *DashboardScreen) View(width, height int) string {
	if d.confirmReset {
		return lipgloss.NewStyle().
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(theme.Incorrect.Render("Apagar todo o progresso?") + "\n\n" +
				theme.Hint.Render("Esta ação não pode ser desfeita. [S/N]"))
	}

	t := d.env.Session.Tracker()
	cw := max(width-4, 20)

	var b strings.Builder
	b.WriteString(renderSummary(t.Summary(), t.Progress(), cw))
	b.WriteString("\n\n")

	b.WriteString(theme.Label.Render("Conquistas"))
	b.WriteString("\n")
	unlocked := t.Achievements()
	if len(unlocked) == 0 {
		b.WriteString(theme.Hint.Render("  Nenhuma conquista ainda. Complete uma simulação para começar!"))
		b.WriteString("\n")
	}
	for _, a := range unlocked {
		b.WriteString(theme.Correct.Render("  " + a.Title()))
		b.WriteString(theme.Subtitle.Render("  " + a.Description))
		b.WriteString("\n")
	}

	if next := t.NextAchievements(); len(next) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Label.Render("Próximas conquistas"))
		b.WriteString("\n")
		for _, l := range next {
			b.WriteString("  " + theme.Body.Render(l.Title()))
			b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %d/%d", l.Progress.Current, l.Progress.Target)))
			b.WriteString("\n  ")
			b.WriteString(components.NewProgressBar("", l.Progress.Percentage/100, true, min(cw-2, 50)).View())
			b.WriteString("\n")
		}
	}

	text, off := layout.Scroll(b.String(), d.scroll, height)
	d.scroll = off
	return lipgloss.NewStyle().Padding(0, 2).Render(text)
}

func renderSummary(sum progress.Summary, st progress.State, cw int) string {
	last := "nunca"
	if ts, ok := sum.LastActivity.Time(); ok {
		last = ts.Local().Format("02/01/2006 15:04")
	}

	rows := [][2]string{
		{"Nível", sum.UserLevel.Label()},
		{"Atividades", fmt.Sprintf("%d", sum.TotalActivities)},
		{"Pontuação média", fmt.Sprintf("%.1f", sum.AverageScore)},
		{"Dias ativos", fmt.Sprintf("%d", sum.DaysActive)},
		{"Última atividade", last},
		{"Simulações", fmt.Sprintf("%d", st.SimulationsCompleted)},
		{"Casos estudados", fmt.Sprintf("%d", st.CasesStudied)},
		{"Planos criados", fmt.Sprintf("%d", st.PlansCreated)},
		{"Recursos acessados", fmt.Sprintf("%d", st.ResourcesAccessed)},
		{"Sessões", fmt.Sprintf("%d", st.Sessions)},
	}

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%-20s", r[0])))
		b.WriteString(theme.Body.Bold(true).Render(r[1]))
	}
	return theme.Card.Width(min(cw, 60)).Render(b.String())
}
