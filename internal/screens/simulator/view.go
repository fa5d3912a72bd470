package simulator

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/aieduca/biaslab/internal/bias"
	"github.com/aieduca/biaslab/internal/ui/layout"
	"github.com/aieduca/biaslab/internal/ui/theme"
)

func (s *SimulatorScreen) View(width, height int) string {
	cw := max(width-4, 20)

	var body string
	switch s.phase {
	case PhasePickType:
		body = s.renderPicker()
	case PhaseResult:
		body = s.renderResult(cw)
	default:
		body = s.renderScenario(cw) + "\n\n" + s.renderQuestion()
	}

	text, off := layout.Scroll(body, s.scroll, height)
	if s.phase == PhaseResult {
		s.scroll = off
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(text)
}

func (s *SimulatorScreen) renderPicker() string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Escolha o tipo de sistema de IA"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Você vai analisar um cenário e procurar sinais de viés."))
	b.WriteString("\n\n")
	b.WriteString(s.typeMenu.View())
	return b.String()
}

func (s *SimulatorScreen) renderScenario(cw int) string {
	sc := s.current
	if sc == nil {
		return ""
	}
	wrap := lipgloss.NewStyle().Width(cw - 4)

	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("Cenário #%d  %s", sc.ID, sc.Type.Label())))
	b.WriteString("\n\n")
	b.WriteString(theme.Label.Render("Contexto"))
	b.WriteString("\n")
	b.WriteString(wrap.Render(sc.Context))
	b.WriteString("\n\n")
	b.WriteString(theme.Label.Render("Situação"))
	b.WriteString("\n")
	b.WriteString(wrap.Render(sc.Situation))
	return theme.Card.Width(cw).Render(b.String())
}

func (s *SimulatorScreen) renderQuestion() string {
	switch s.phase {
	case PhaseDetect:
		return s.detect.View()
	case PhaseIdentify:
		return theme.Body.Bold(true).Render("Quais tipos de viés você identifica?") + "\n" +
			theme.Hint.Render("Marque zero ou mais opções.") + "\n\n" +
			s.identify.View()
	case PhaseSolution:
		return theme.Body.Bold(true).Render("Que solução você propõe?") + "\n\n" +
			s.solution.View()
	}
	return ""
}

func (s *SimulatorScreen) renderResult(cw int) string {
	r := s.result
	if r == nil {
		return ""
	}
	ev := r.Evaluation
	wrap := lipgloss.NewStyle().Width(cw)

	var b strings.Builder
	b.WriteString(theme.ScoreStyle(ev.Score).Render(fmt.Sprintf("Pontuação: %d/100", ev.Score)))
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("   Precisão: %d%%   Nível: %s", ev.Accuracy, ev.Level.Label())))
	b.WriteString("\n\n")
	b.WriteString(wrap.Render(ev.Feedback))
	b.WriteString("\n\n")

	b.WriteString(theme.Label.Render("Análise detalhada"))
	b.WriteString("\n")
	for _, line := range ev.DetailedFeedback {
		b.WriteString(wrap.Render("  " + line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(theme.Label.Render("Explicação"))
	b.WriteString("\n")
	b.WriteString(wrap.Render(ev.Explanation))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Resposta esperada: " + typeLabels(r.Scenario.CorrectIdentification)))
	b.WriteString("\n\n")

	b.WriteString(theme.Label.Render("Recomendações"))
	b.WriteString("\n")
	for _, rec := range ev.Recommendations {
		b.WriteString(wrap.Render("  • " + rec))
		b.WriteString("\n")
	}

	if len(r.Unlocked) > 0 {
		b.WriteString("\n")
		for _, a := range r.Unlocked {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
				Render("Conquista desbloqueada: " + a.Title()))
			b.WriteString("\n")
		}
	}

	switch {
	case s.reflecting:
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("O tutor está analisando sua resposta..."))
		b.WriteString("\n")
	case s.reflection != nil:
		b.WriteString("\n")
		b.WriteString(theme.Label.Render("Comentário do tutor"))
		b.WriteString("\n")
		b.WriteString(wrap.Render(s.reflection.Summary))
		b.WriteString("\n")
		writeBullets(&b, wrap, "Pontos fortes", s.reflection.Strengths)
		writeBullets(&b, wrap, "Para melhorar", s.reflection.Improvements)
	}
	return b.String()
}

func writeBullets(b *strings.Builder, wrap lipgloss.Style, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(theme.Body.Bold(true).Render(title))
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString(wrap.Render("  • " + it))
		b.WriteString("\n")
	}
}

func typeLabels(types []bias.Type) string {
	if len(types) == 0 {
		return "-"
	}
	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = t.Label()
	}
	return strings.Join(labels, ", ")
}
