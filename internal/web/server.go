// Package web serves the learning tools as a JSON API over gin.
package web

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aieduca/biaslab/internal/config"
	"github.com/aieduca/biaslab/internal/session"
)

const (
	evictInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

// Server is the HTTP shell around a session registry.
type Server struct {
	cfg    config.ServerConfig
	reg    *session.Registry
	svc    session.Services
	logger *zap.Logger
	engine *gin.Engine
}

// NewServer builds the router. svc must be the same services the registry
// was built with.
func NewServer(cfg config.ServerConfig, reg *session.Registry, svc session.Services, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		reg:    reg,
		svc:    svc,
		logger: logger.Named("web"),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	if s.cfg.Mode != "" {
		gin.SetMode(s.cfg.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.logger))

	store := cookie.NewStore(s.secret())
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(s.cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cookieName, store))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.reg.Len()})
	})

	api := r.Group("/api")
	{
		api.GET("/biases", s.listBiases)
		api.GET("/scenarios/types", s.listScenarioTypes)
		api.GET("/scenarios/stats", s.scenarioStats)
		api.GET("/cases", s.listCases)
		api.GET("/cases/:id", s.getCase)
		api.GET("/plans", s.listPlans)
		api.GET("/plans/:id", s.getPlan)
		api.GET("/resources", s.listResources)
	}

	learner := api.Group("")
	learner.Use(SessionLoader(s.reg, s.logger))
	{
		learner.POST("/scenarios", s.newScenario)
		learner.GET("/scenarios/current", s.currentScenario)
		learner.POST("/evaluations", s.evaluate)

		learner.POST("/cases/:id/study", s.studyCase)
		learner.POST("/plans/:id/generate", s.generatePlan)
		learner.POST("/resources/:id/access", s.accessResource)

		learner.GET("/progress", s.getProgress)
		learner.GET("/progress/summary", s.progressSummary)
		learner.GET("/progress/achievements", s.achievements)
		learner.GET("/progress/next", s.nextAchievements)
		learner.GET("/progress/export", s.exportProgress)
		learner.POST("/progress/import", s.importProgress)
		learner.POST("/progress/reset", s.resetProgress)
	}
	return r
}

func (s *Server) secret() []byte {
	if s.cfg.SessionSecret != "" {
		return []byte(s.cfg.SessionSecret)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	s.logger.Warn("server.session_secret not set; cookies will not survive a restart")
	return key
}

// Run serves on cfg.Addr until ctx is cancelled, evicting idle sessions in
// the background.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.SessionIdle > 0 {
		go s.reg.Run(ctx, evictInterval, s.cfg.SessionIdle)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
