package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aieduca/biaslab/internal/bias"
	"github.com/aieduca/biaslab/internal/scenario"
	"github.com/aieduca/biaslab/internal/session"
)

const reflectTimeout = 30 * time.Second

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Generate practice scenarios and inspect the template set",
}

var scenarioTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List scenario types",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		for _, t := range scenario.AllTypes() {
			fmt.Fprintf(w, "%-24s  %s\n", t, t.Label())
		}
	},
}

var scenarioStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics of the loaded scenario templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		st := rt.svc.Engine.Statistics()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), st)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Total de cenários:   %d\n", st.TotalScenarios)
		fmt.Fprintf(w, "Tipo mais comum:     %s\n", st.MostCommonType)
		types := make([]string, len(st.TypesAvailable))
		for i, t := range st.TypesAvailable {
			types[i] = string(t)
		}
		fmt.Fprintf(w, "Tipos disponíveis:   %s\n", strings.Join(types, ", "))
		return nil
	},
}

var scenarioNewCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"new"},
	Short:   "Generate a scenario and make it the session's current one",
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		asJSON, _ := cmd.Flags().GetBool("json")
		return withSession(cmd, func(_ *runtime, s *session.Session) error {
			sc := s.NewScenario(scenario.ParseType(typ))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), sc)
			}
			printScenario(cmd.OutOrStdout(), sc)
			fmt.Fprintln(cmd.OutOrStdout(), "\nResponda com: biaslab evaluate --detected yes --types selection --solution \"...\"")
			return nil
		})
	},
}

var scenarioShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the session's current scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(_ *runtime, s *session.Session) error {
			sc := s.Current()
			if sc == nil {
				return fmt.Errorf("%w: run `biaslab scenario generate` first", session.ErrNoScenario)
			}
			printScenario(cmd.OutOrStdout(), *sc)
			return nil
		})
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Answer the session's current scenario",
	Long: `Evaluate an answer to the current scenario.

--detected accepts yes, possibly, no or unsure. --types takes a comma-separated
list of bias ids or labels (see "biaslab biases").`,
	RunE: func(cmd *cobra.Command, args []string) error {
		detected, _ := cmd.Flags().GetString("detected")
		types, _ := cmd.Flags().GetString("types")
		solution, _ := cmd.Flags().GetString("solution")
		asJSON, _ := cmd.Flags().GetBool("json")

		det, err := bias.ParseDetection(detected)
		if err != nil {
			return err
		}
		identified, err := bias.ParseList(types)
		if err != nil {
			return err
		}
		ans := scenario.Answer{Detected: det, Identified: identified, Solution: solution}

		return withSession(cmd, func(_ *runtime, s *session.Session) error {
			res, err := s.Submit(ans)
			if err != nil {
				return fmt.Errorf("%w: run `biaslab scenario generate` first", err)
			}

			var note string
			if s.CanReflect() {
				ctx, cancel := context.WithTimeout(cmd.Context(), reflectTimeout)
				note = s.Reflect(ctx, res).Markdown()
				cancel()
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					session.Result
					Reflection string `json:"reflection,omitempty"`
				}{res, note})
			}
			printResult(cmd.OutOrStdout(), res)
			if note != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nTutor\n%s\n%s", rule, note)
			}
			return nil
		})
	},
}

var biasesCmd = &cobra.Command{
	Use:   "biases",
	Short: "List the bias types with their definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), bias.Registry())
		}
		w := cmd.OutOrStdout()
		for _, info := range bias.Registry() {
			fmt.Fprintf(w, "%-16s  %s\n%18s%s\n", info.Type, info.Label, "", info.Definition)
		}
		return nil
	},
}

func printScenario(w io.Writer, sc scenario.Scenario) {
	fmt.Fprintf(w, "Cenário #%d · %s\n%s\n", sc.ID, sc.Type.Label(), rule)
	fmt.Fprintf(w, "Contexto: %s\n\n%s\n", sc.Context, sc.Situation)
}

func printResult(w io.Writer, res session.Result) {
	ev := res.Evaluation
	fmt.Fprintf(w, "Pontuação: %d/100   Precisão: %d%%   Nível: %s\n%s\n", ev.Score, ev.Accuracy, ev.Level.Label(), rule)
	fmt.Fprintln(w, ev.Feedback)
	printList(w, "Detalhes", ev.DetailedFeedback)
	fmt.Fprintf(w, "\nExplicação\n%s\n", ev.Explanation)
	printList(w, "Recomendações", ev.Recommendations)
	printUnlocked(w, res.Unlocked)
}

func init() {
	for _, c := range []*cobra.Command{scenarioNewCmd, scenarioShowCmd, evaluateCmd} {
		addSessionFlag(c)
	}
	for _, c := range []*cobra.Command{scenarioStatsCmd, scenarioNewCmd, evaluateCmd, biasesCmd} {
		c.Flags().Bool("json", false, "Print JSON")
	}

	scenarioNewCmd.Flags().StringP("type", "t", string(scenario.CandidateSelection), "Scenario type id or label")

	evaluateCmd.Flags().StringP("detected", "d", "", "Is there bias? yes, possibly, no or unsure")
	evaluateCmd.Flags().String("types", "", "Comma-separated bias types identified")
	evaluateCmd.Flags().StringP("solution", "s", "", "Proposed mitigation")
	_ = evaluateCmd.MarkFlagRequired("detected")

	scenarioCmd.AddCommand(scenarioTypesCmd)
	scenarioCmd.AddCommand(scenarioStatsCmd)
	scenarioCmd.AddCommand(scenarioNewCmd)
	scenarioCmd.AddCommand(scenarioShowCmd)
}
