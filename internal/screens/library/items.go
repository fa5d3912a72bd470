package library

import (
	"fmt"
	"strings"

	"github.com/aieduca/biaslab/internal/catalog"
	"github.com/aieduca/biaslab/internal/progress"
	"github.com/aieduca/biaslab/internal/screen"
)

// Cases lists the real-world case studies.
func Cases(env *screen.Env) *LibraryScreen {
	cat := env.Session.Catalog()
	items := make([]Item, len(cat.Cases))
	for i, cs := range cat.Cases {
		items[i] = Item{
			Label: fmt.Sprintf("%s %s (%d)", cs.Severity.Icon(), cs.Title, cs.Year),
			Hint:  cs.Category,
			Open: func() (string, []progress.Achievement, error) {
				got, unlocked, err := env.Session.StudyCase(cs.ID)
				return renderCase(got), unlocked, err
			},
		}
	}
	return New("Casos Reais", env, items)
}

// Plans lists the lesson-plan templates. Opening one generates it with the
// template's default customization.
func Plans(env *screen.Env) *LibraryScreen {
	cat := env.Session.Catalog()
	items := make([]Item, len(cat.Plans))
	for i, p := range cat.Plans {
		items[i] = Item{
			Label: p.Title,
			Hint:  fmt.Sprintf("%s, %d min", p.TargetGrade, p.SuggestedDuration),
			Open: func() (string, []progress.Achievement, error) {
				plan, unlocked, err := env.Session.CreatePlan(p.ID, catalog.DefaultCustomization(p))
				if err != nil {
					return "", nil, err
				}
				return plan.Text(), unlocked, nil
			},
		}
	}
	return New("Planos de Aula", env, items)
}

// Resources lists the library grouped by kind.
func Resources(env *screen.Env) *LibraryScreen {
	cat := env.Session.Catalog()
	var items []Item
	for _, kind := range catalog.AllResourceKinds() {
		for _, r := range cat.ResourcesByKind(kind) {
			items = append(items, Item{
				Label: fmt.Sprintf("[%s] %s", kind.Label(), r.Title),
				Hint:  r.Author,
				Open: func() (string, []progress.Achievement, error) {
					got, unlocked, err := env.Session.AccessResource(r.ID)
					return renderResource(got), unlocked, err
				},
			})
		}
	}
	return New("Recursos", env, items)
}

func renderCase(cs catalog.CaseStudy) string {
	if cs.ID == "" {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s · %d · Gravidade %s %s\n\n", cs.Title, cs.Category, cs.Year, cs.Severity.Icon(), cs.Severity)
	fmt.Fprintf(&b, "%s\n\n", cs.Description)
	fmt.Fprintf(&b, "Tipo de viés: %s\n%s\n\n", cs.BiasType, cs.BiasExplanation)
	fmt.Fprintf(&b, "Impacto:\n%s\n", cs.Impact)
	if cs.Solution != "" {
		fmt.Fprintf(&b, "\nSolução:\n%s\n", cs.Solution)
	}
	writeList(&b, "Lições aprendidas", cs.Lessons)
	writeList(&b, "Perguntas para discussão", cs.DiscussionQuestions)
	return b.String()
}

func renderResource(r catalog.Resource) string {
	if r.ID == "" {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s", r.Title, r.Kind.Label())
	for _, s := range []string{r.Author, r.Venue, r.Level, r.Duration, r.Category} {
		if s != "" {
			fmt.Fprintf(&b, " · %s", s)
		}
	}
	fmt.Fprintf(&b, "\n\n%s\n", r.Description)
	if r.URL != "" {
		fmt.Fprintf(&b, "\n%s\n", r.URL)
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "• %s\n", it)
	}
}
