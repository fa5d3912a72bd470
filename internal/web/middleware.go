package web

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aieduca/biaslab/internal/session"
)

const (
	cookieName    = "biaslab"
	sessionKey    = "sid"
	ctxSessionKey = "biaslab.session"
)

// RequestLogger logs one line per request: errors for 5xx, warnings for
// 4xx and debug for everything else.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("server error", fields...)
		case status >= 400:
			log.Warn("client error", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}

// SessionLoader makes sure every request has a learner session. The
// cookie carries only the session ID; unknown or missing IDs get a fresh
// session.
func SessionLoader(reg *session.Registry, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie := sessions.Default(c)
		id, _ := cookie.Get(sessionKey).(string)

		if id != "" {
			ok, err := reg.Has(c.Request.Context(), id)
			if err != nil {
				abortError(c, err)
				return
			}
			if !ok {
				id = ""
			}
		}
		if id == "" {
			var err error
			if id, err = reg.Create(c.Request.Context()); err != nil {
				abortError(c, err)
				return
			}
			cookie.Set(sessionKey, id)
			if err := cookie.Save(); err != nil {
				log.Warn("save session cookie", zap.Error(err))
			}
		}
		c.Set(ctxSessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(ctxSessionKey)
}
