package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/aieduca/biaslab/internal/progress"
	"github.com/aieduca/biaslab/internal/screens/welcome"
	"github.com/aieduca/biaslab/internal/ui/theme"
)

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	// Leave room for the frame border (2) + inner padding (4).
	return min(max(frameWidth-6, 20), 60)
}

func renderTitle(cw int, compact bool) string {
	width := cw
	if compact {
		width = 0
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(welcome.RenderBanner(width))
}

// renderStatsBar renders the learner summary in a bordered box matching
// content width.
func renderStatsBar(sum progress.Summary, cw int) string {
	levelStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	trophyStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	scoreStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)

	stats := fmt.Sprintf("%s  %s  %s",
		levelStyle.Render(sum.UserLevel.Label()),
		trophyStyle.Render(fmt.Sprintf("🏆 %d", sum.AchievementsEarned)),
		scoreStyle.Render(fmt.Sprintf("Média %.0f", sum.AverageScore)),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 28

// renderMenu renders each menu item as a fixed-width button, or as plain
// lines when the terminal is short.
func renderMenu(items []string, selected int, cw int, compact bool) string {
	var rows []string
	for i, label := range items {
		switch {
		case compact && i == selected:
			rows = append(rows, lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Primary).
				Bold(true).
				Render(" ▸ "+label+" "))
		case compact:
			rows = append(rows, theme.Unselected.Render("   "+label))
		case i == selected:
			rows = append(rows, lipgloss.NewStyle().
				Width(buttonWidth).
				Align(lipgloss.Center).
				Bold(true).
				Foreground(theme.Text).
				Background(theme.Primary).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(theme.Primary).
				Render("▸ "+label))
		default:
			rows = append(rows, lipgloss.NewStyle().
				Width(buttonWidth).
				Align(lipgloss.Center).
				Foreground(theme.Text).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(theme.Border).
				Render(label))
		}
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(rows, "\n"))
}

// renderCoachNote renders a dim hint when no LLM provider is configured.
func renderCoachNote(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render("Defina uma chave de API de LLM para ativar o tutor (biaslab --help)")
}

// renderFrame wraps content in a double-border frame, centered in the
// given dimensions.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
