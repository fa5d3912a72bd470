package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aieduca/biaslab/internal/app"
	"github.com/aieduca/biaslab/internal/screen"
	"github.com/aieduca/biaslab/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the interactive terminal app",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	addPlayFlags(playCmd)
}

func addPlayFlags(c *cobra.Command) {
	addSessionFlag(c)
	c.Flags().Bool("no-splash", false, "Skip the welcome screen")
}

// runPlay opens the store, resumes the learner's session and launches the TUI.
func runPlay(cmd *cobra.Command) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	id, _ := cmd.Flags().GetString("session")
	noSplash, _ := cmd.Flags().GetBool("no-splash")

	repo := rt.store.SnapshotRepo()
	s, created, err := session.LoadOrCreate(cmd.Context(), repo, id, rt.svc)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	// Every terminal run is a new learning session.
	s.Begin()

	log := rt.log.Named("tui")
	log.Info("terminal session started",
		zap.String("session", s.ID),
		zap.Bool("created", created),
		zap.Bool("coach", s.CanReflect()),
	)

	return app.Run(&screen.Env{Session: s, Repo: repo, Logger: log}, noSplash)
}
