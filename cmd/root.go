package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aieduca/biaslab/internal/catalog"
	"github.com/aieduca/biaslab/internal/coach"
	"github.com/aieduca/biaslab/internal/config"
	"github.com/aieduca/biaslab/internal/llm"
	"github.com/aieduca/biaslab/internal/logging"
	"github.com/aieduca/biaslab/internal/scenario"
	"github.com/aieduca/biaslab/internal/session"
	"github.com/aieduca/biaslab/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "biaslab",
	Short: "Learn to spot bias in AI systems",
	Long: "BiasLab: terminal and web app for practicing the detection of bias in AI systems,\n" +
		"with real case studies, lesson plans and a resource library.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default ./biaslab.yaml or $XDG_CONFIG_HOME/biaslab/biaslab.yaml)")
	pf.String("data-dir", "", "Directory with scenario and catalog data files")
	pf.String("db", "", "Path to SQLite database file (overrides BIASLAB_DB env var)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")

	addPlayFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scenarioCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(biasesCmd)
	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(plansCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// flagKeys maps config keys to the flags that override them. Commands
// that do not define a flag simply skip it.
var flagKeys = map[string]string{
	"data.dir":      "data-dir",
	"store.path":    "db",
	"logging.level": "log-level",
	"server.addr":   "addr",
}

// loadConfig reads the config file, environment and flags of cmd.
func loadConfig(cmd *cobra.Command) (*config.Loader, *config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	loader := config.New(file)
	if err := loader.BindFlags(cmd.Flags(), flagKeys); err != nil {
		return nil, nil, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	return loader, cfg, nil
}

// resolveDBPath returns the configured database path (--db, BIASLAB_STORE_PATH
// or the config file), then BIASLAB_DB, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.Store.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// runtime is everything a command needs to work with sessions.
type runtime struct {
	loader *config.Loader
	cfg    *config.Config
	log    *logging.Logger
	store  *store.Store
	svc    session.Services
}

// setup loads config, opens the logger and store, and builds the shared
// session services. The LLM coach is optional: a misconfigured provider is
// logged and the app runs without it.
func setup(cmd *cobra.Command) (*runtime, error) {
	loader, cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	log := logger.Logger
	if f := loader.File(); f != "" {
		log.Debug("config loaded", zap.String("file", f))
	}

	engine := scenario.LoadEngine(cfg.Data.Dir, scenario.WithLogger(log.Named("scenario")))
	cat := catalog.Load(cfg.Data.Dir, log.Named("catalog"))

	provider, err := llm.NewProvider(cmd.Context(), cfg.LLM, st.EventRepo(), log.Named("llm"))
	if err != nil {
		log.Warn("llm provider not configured, coach disabled", zap.Error(err))
		provider = nil
	}

	return &runtime{
		loader: loader,
		cfg:    cfg,
		log:    logger,
		store:  st,
		svc: session.Services{
			Engine:  engine,
			Catalog: cat,
			Coach:   coach.New(provider, cfg.Coach, log.Named("coach")),
			Logger:  log.Named("session"),
		},
	}, nil
}

func (rt *runtime) Close() {
	_ = rt.store.Close()
	_ = rt.log.Close()
}

// openSession loads the named session, creating it when the store has
// none yet. Created sessions are counted as started.
func (rt *runtime) openSession(ctx context.Context, id string) (*session.Session, error) {
	s, created, err := session.LoadOrCreate(ctx, rt.store.SnapshotRepo(), id, rt.svc)
	if err != nil {
		return nil, err
	}
	if created {
		s.Begin()
	}
	return s, nil
}

// withSession runs fn on the session named by --session and saves it.
func withSession(cmd *cobra.Command, fn func(*runtime, *session.Session) error) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	id, _ := cmd.Flags().GetString("session")
	ctx := cmd.Context()
	s, err := rt.openSession(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(rt, s); err != nil {
		return err
	}
	if err := s.Save(ctx, rt.store.SnapshotRepo()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// DefaultSession is the session ID used by the terminal commands.
const DefaultSession = "local"

func addSessionFlag(c *cobra.Command) {
	c.Flags().String("session", DefaultSession, "Session ID to read and update")
}
