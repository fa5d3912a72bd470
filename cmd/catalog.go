package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aieduca/biaslab/internal/catalog"
	"github.com/aieduca/biaslab/internal/session"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Browse real-world cases of AI bias",
}

var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases, optionally filtered by category and severity",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		severity, _ := cmd.Flags().GetString("severity")

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		cases := rt.svc.Catalog.FilterCases(catalog.CaseFilter{Category: category, Severity: severity})
		w := cmd.OutOrStdout()
		if len(cases) == 0 {
			fmt.Fprintln(w, "Nenhum caso encontrado.")
			return nil
		}
		fmt.Fprintf(w, "%-28s  %-4s  %-10s  %-20s  %s\n", "ID", "Ano", "Gravidade", "Categoria", "Título")
		fmt.Fprintln(w, rule)
		for _, cs := range cases {
			fmt.Fprintf(w, "%-28s  %-4d  %s %-8s  %-20s  %s\n",
				truncate(cs.ID, 28), cs.Year, cs.Severity.Icon(), cs.Severity, cs.Category, cs.Title)
		}
		fmt.Fprintln(w)
		for _, cc := range rt.svc.Catalog.CountByCategory() {
			fmt.Fprintf(w, "%s: %d  ", cc.Category, cc.Count)
		}
		fmt.Fprintln(w)
		return nil
	},
}

var casesStudyCmd = &cobra.Command{
	Use:   "study <id>",
	Short: "Read a case and count it as studied",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(_ *runtime, s *session.Session) error {
			cs, unlocked, err := s.StudyCase(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printCase(w, cs)
			printUnlocked(w, unlocked)
			return nil
		})
	},
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Browse and customize lesson-plan templates",
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lesson-plan templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		w := cmd.OutOrStdout()
		if len(rt.svc.Catalog.Plans) == 0 {
			fmt.Fprintln(w, "Nenhum plano de aula disponível.")
			return nil
		}
		for _, p := range rt.svc.Catalog.Plans {
			fmt.Fprintf(w, "%-32s  %3d min  %s\n", truncate(p.ID, 32), p.SuggestedDuration, p.Title)
		}
		return nil
	},
}

var plansGenerateCmd = &cobra.Command{
	Use:   "generate <id>",
	Short: "Customize a lesson plan for a class",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		return withSession(cmd, func(_ *runtime, s *session.Session) error {
			tmpl, ok := s.Catalog().Plan(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", session.ErrUnknownPlan, args[0])
			}
			cust := catalog.DefaultCustomization(tmpl)
			fs := cmd.Flags()
			if fs.Changed("duration") {
				cust.Duration, _ = fs.GetInt("duration")
			}
			if fs.Changed("class-size") {
				cust.ClassSize, _ = fs.GetInt("class-size")
			}
			if fs.Changed("grade") {
				cust.GradeLevel, _ = fs.GetString("grade")
			}
			if fs.Changed("focus") {
				cust.FocusArea, _ = fs.GetString("focus")
			}

			plan, unlocked, err := s.CreatePlan(tmpl.ID, cust)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out != "" {
				if err := os.WriteFile(out, []byte(plan.Text()), 0o644); err != nil {
					return fmt.Errorf("write plan: %w", err)
				}
				fmt.Fprintf(w, "Plano salvo em %s\n", out)
			} else {
				fmt.Fprint(w, plan.Text())
			}
			printUnlocked(w, unlocked)
			return nil
		})
	},
}

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Browse the resource library",
}

var resourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List resources, optionally of one kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		w := cmd.OutOrStdout()
		for _, k := range catalog.AllResourceKinds() {
			if kind != "" && string(k) != kind {
				continue
			}
			rs := rt.svc.Catalog.ResourcesByKind(k)
			if len(rs) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s\n%s\n", k.Label(), rule)
			for _, r := range rs {
				fmt.Fprintf(w, "%-36s  %s\n", truncate(r.ID, 36), r.Title)
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

var resourcesOpenCmd = &cobra.Command{
	Use:   "open <id>",
	Short: "Show a resource and count the access",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(_ *runtime, s *session.Session) error {
			r, unlocked, err := s.AccessResource(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printResource(w, r)
			printUnlocked(w, unlocked)
			return nil
		})
	},
}

func printCase(w io.Writer, cs catalog.CaseStudy) {
	fmt.Fprintf(w, "%s (%d)\n%s\n", cs.Title, cs.Year, rule)
	fmt.Fprintf(w, "Categoria: %s   Gravidade: %s %s\n\n", cs.Category, cs.Severity.Icon(), cs.Severity)
	fmt.Fprintf(w, "%s\n\nTipo de viés: %s\n%s\n\nImpacto: %s\n", cs.Description, cs.BiasType, cs.BiasExplanation, cs.Impact)
	if cs.Solution != "" {
		fmt.Fprintf(w, "\nSolução: %s\n", cs.Solution)
	}
	printList(w, "Lições aprendidas", cs.Lessons)
	printList(w, "Questões para discussão", cs.DiscussionQuestions)
}

func printResource(w io.Writer, r catalog.Resource) {
	fmt.Fprintf(w, "[%s] %s\n%s\n", r.Kind.Label(), r.Title, rule)
	for _, f := range []struct{ label, value string }{
		{"Autor", r.Author},
		{"Fonte", r.Venue},
		{"Nível", r.Level},
		{"Duração", r.Duration},
		{"Categoria", r.Category},
	} {
		if f.value != "" {
			fmt.Fprintf(w, "%s: %s\n", f.label, f.value)
		}
	}
	fmt.Fprintf(w, "\n%s\n", r.Description)
	if r.URL != "" {
		fmt.Fprintf(w, "\n%s\n", r.URL)
	}
}

func init() {
	casesListCmd.Flags().String("category", "", "Filter by category")
	casesListCmd.Flags().String("severity", "", "Filter by severity (Alta, Média, Baixa)")
	addSessionFlag(casesStudyCmd)
	casesCmd.AddCommand(casesListCmd, casesStudyCmd)

	fs := plansGenerateCmd.Flags()
	fs.Int("duration", 0, fmt.Sprintf("Lesson length in minutes (%d-%d)", catalog.MinDuration, catalog.MaxDuration))
	fs.Int("class-size", 0, fmt.Sprintf("Number of students (%d-%d)", catalog.MinClassSize, catalog.MaxClassSize))
	fs.String("grade", "", "Grade level")
	fs.String("focus", "", "Focus area")
	fs.StringP("output", "o", "", "Write the plan to a text file")
	addSessionFlag(plansGenerateCmd)
	plansCmd.AddCommand(plansListCmd, plansGenerateCmd)

	resourcesListCmd.Flags().String("kind", "", "Only book, article, video or link")
	addSessionFlag(resourcesOpenCmd)
	resourcesCmd.AddCommand(resourcesListCmd, resourcesOpenCmd)
}
