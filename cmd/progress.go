package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aieduca/biaslab/internal/progress"
	"github.com/aieduca/biaslab/internal/session"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect, export or reset learning progress",
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the progress summary and counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withSession(cmd, func(_ *runtime, s *session.Session) error {
			tr := s.Tracker()
			sum := tr.Summary()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					Summary  progress.Summary `json:"summary"`
					Progress progress.State   `json:"progress"`
				}{sum, tr.Progress()})
			}

			w := cmd.OutOrStdout()
			st := tr.Progress()
			fmt.Fprintf(w, "Sessão %s\n%s\n", s.ID, rule)
			fmt.Fprintf(w, "Nível:             %s\n", sum.UserLevel.Label())
			fmt.Fprintf(w, "Atividades:        %d\n", sum.TotalActivities)
			fmt.Fprintf(w, "Pontuação média:   %.1f\n", sum.AverageScore)
			fmt.Fprintf(w, "Conquistas:        %d/%d\n", sum.AchievementsEarned, len(progress.Registry()))
			fmt.Fprintf(w, "Dias ativos:       %d\n", sum.DaysActive)
			if t, ok := sum.LastActivity.Time(); ok {
				fmt.Fprintf(w, "Última atividade:  %s\n", t.Local().Format("2006-01-02 15:04"))
			}
			fmt.Fprintln(w)
			for _, a := range progress.Counters() {
				fmt.Fprintf(w, "%-22s %d\n", a, st.Count(a))
			}
			return nil
		})
	},
}

var progressAchievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List unlocked achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(_ *runtime, s *session.Session) error {
			w := cmd.OutOrStdout()
			earned := s.Tracker().Achievements()
			if len(earned) == 0 {
				fmt.Fprintln(w, "Nenhuma conquista ainda.")
				return nil
			}
			for _, a := range earned {
				fmt.Fprintf(w, "%s\n   %s\n", a.Title(), a.Description)
			}
			return nil
		})
	},
}

var progressNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show locked achievements and how close they are",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(_ *runtime, s *session.Session) error {
			w := cmd.OutOrStdout()
			next := s.Tracker().NextAchievements()
			if len(next) == 0 {
				fmt.Fprintln(w, "Todas as conquistas foram desbloqueadas!")
				return nil
			}
			for _, la := range next {
				fmt.Fprintf(w, "%-28s  %3.0f%%  (%d/%d)\n",
					la.Title(), la.Progress.Percentage, la.Progress.Current, la.Progress.Target)
			}
			return nil
		})
	},
}

var progressExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export progress as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		return withSession(cmd, func(_ *runtime, s *session.Session) error {
			text, err := s.Tracker().Export()
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Progresso exportado para %s\n", out)
			return nil
		})
	},
}

var progressImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace progress with a previous export (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read export: %w", err)
		}
		// Validate before touching the session so a bad file reports why.
		if _, err := progress.ParseExport(string(data)); err != nil {
			return err
		}
		return withSession(cmd, func(_ *runtime, s *session.Session) error {
			if !s.Tracker().Import(string(data)) {
				return fmt.Errorf("import rejected")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Progresso importado.")
			return nil
		})
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all progress of the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm(cmd, "Apagar todo o progresso? [s/N] ") {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelado.")
			return nil
		}
		return withSession(cmd, func(_ *runtime, s *session.Session) error {
			s.Tracker().Reset()
			fmt.Fprintln(cmd.OutOrStdout(), "Progresso reiniciado.")
			return nil
		})
	},
}

var progressSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		infos, err := st.SnapshotRepo().Sessions(cmd.Context())
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		w := cmd.OutOrStdout()
		if len(infos) == 0 {
			fmt.Fprintln(w, "No stored sessions.")
			return nil
		}
		fmt.Fprintf(w, "%-36s  %-9s  %s\n", "Session", "Snapshots", "Last seen")
		fmt.Fprintln(w, rule)
		for _, info := range infos {
			fmt.Fprintf(w, "%-36s  %-9d  %s\n",
				info.SessionID, info.Snapshots, info.LastSeen.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}

func init() {
	for _, c := range []*cobra.Command{
		progressShowCmd, progressAchievementsCmd, progressNextCmd,
		progressExportCmd, progressImportCmd, progressResetCmd,
	} {
		addSessionFlag(c)
		progressCmd.AddCommand(c)
	}
	progressShowCmd.Flags().Bool("json", false, "Print JSON")
	progressExportCmd.Flags().StringP("output", "o", "", "Write the export to a file")
	progressResetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	progressCmd.AddCommand(progressSessionsCmd)
}
