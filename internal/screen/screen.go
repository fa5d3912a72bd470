package screen

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/aieduca/biaslab/internal/session"
	"github.com/aieduca/biaslab/internal/store"
	"github.com/aieduca/biaslab/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

const saveTimeout = 5 * time.Second

// Env is shared by every screen of one terminal run. Screens mutate the
// session only from Update, so no locking is needed.
type Env struct {
	Session *session.Session
	Repo    store.SnapshotRepo
	Logger  *zap.Logger
}

// Save persists the session. Failures are logged; the run goes on with
// in-memory progress.
func (e *Env) Save() {
	if e == nil || e.Repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := e.Session.Save(ctx, e.Repo); err != nil && e.Logger != nil {
		e.Logger.Warn("save progress", zap.Error(err))
	}
}
