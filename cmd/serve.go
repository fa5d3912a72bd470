package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aieduca/biaslab/internal/config"
	"github.com/aieduca/biaslab/internal/session"
	"github.com/aieduca/biaslab/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API for browser sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := rt.log.Logger
		repo := rt.store.SnapshotRepo()

		// Sessions whose cookie has expired can never be resumed.
		if maxAge := rt.cfg.Server.SessionMaxAge; maxAge > 0 {
			n, err := repo.Expire(ctx, time.Now().Add(-maxAge))
			if err != nil {
				return fmt.Errorf("expire sessions: %w", err)
			}
			if n > 0 {
				log.Info("expired stale session snapshots", zap.Int64("count", n))
			}
		}

		rt.loader.Watch(log, func(c *config.Config) {
			if err := rt.log.SetLevel(c.Logging.Level); err != nil {
				log.Warn("apply log level", zap.Error(err))
				return
			}
			log.Info("log level changed", zap.Stringer("level", rt.log.Level()))
		})

		reg := session.NewRegistry(rt.svc, repo)
		srv := web.NewServer(rt.cfg.Server, reg, rt.svc, log.Named("web"))
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
}
