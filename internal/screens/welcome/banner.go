package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/aieduca/biaslab/internal/ui/theme"
)

const bannerArt = `
 ██████╗ ██╗ █████╗ ███████╗██╗      █████╗ ██████╗
 ██╔══██╗██║██╔══██╗██╔════╝██║     ██╔══██╗██╔══██╗
 ██████╔╝██║███████║███████╗██║     ███████║██████╔╝
 ██╔══██╗██║██╔══██║╚════██║██║     ██╔══██║██╔══██╗
 ██████╔╝██║██║  ██║███████║███████╗██║  ██║██████╔╝
 ╚═════╝ ╚═╝╚═╝  ╚═╝╚══════╝╚══════╝╚═╝  ╚═╝╚═════╝`

const bannerCompact = "B I A S L A B"

// RenderBanner returns the banner in the primary color, or a compact
// fallback for terminals narrower than 54 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 54 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
