package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aieduca/biaslab/internal/store"
)

// Registry holds live sessions by ID. Each session has its own lock so
// requests for different learners never wait on each other. When a
// SnapshotRepo is set, sessions are saved after every call to With and
// reloaded on demand after eviction or restart.
type Registry struct {
	svc  Services
	repo store.SnapshotRepo

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	session  *Session
	lastUsed time.Time
}

// NewRegistry returns an empty registry. repo may be nil for purely
// in-memory sessions.
func NewRegistry(svc Services, repo store.SnapshotRepo) *Registry {
	return &Registry{
		svc:      svc.withDefaults(),
		repo:     repo,
		sessions: make(map[string]*entry),
	}
}

// Create starts and registers a new session and returns its ID.
func (r *Registry) Create(ctx context.Context) (string, error) {
	s := New(r.svc)
	if r.repo != nil {
		if err := s.Save(ctx, r.repo); err != nil {
			return "", err
		}
	}
	r.mu.Lock()
	r.sessions[s.ID] = &entry{session: s, lastUsed: r.svc.Now()}
	r.mu.Unlock()
	return s.ID, nil
}

// With runs fn on session id while holding that session's lock, then
// saves it. It returns ErrUnknownSession for IDs that are neither live
// nor stored.
func (r *Registry) With(ctx context.Context, id string, fn func(*Session) error) error {
	e, err := r.lookup(ctx, id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = r.svc.Now()

	fnErr := fn(e.session)
	if r.repo != nil {
		if err := e.session.Save(ctx, r.repo); err != nil {
			return errors.Join(fnErr, err)
		}
	}
	return fnErr
}

// Has reports whether id names a live or stored session, loading it into
// the registry when stored.
func (r *Registry) Has(ctx context.Context, id string) (bool, error) {
	_, err := r.lookup(ctx, id)
	if errors.Is(err, ErrUnknownSession) {
		return false, nil
	}
	return err == nil, err
}

func (r *Registry) lookup(ctx context.Context, id string) (*entry, error) {
	if id == "" {
		return nil, ErrUnknownSession
	}
	r.mu.Lock()
	e, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		return e, nil
	}
	if r.repo == nil {
		return nil, ErrUnknownSession
	}

	s, err := Load(ctx, r.repo, id, r.svc)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// Another request may have loaded it meanwhile.
	if e, ok := r.sessions[id]; ok {
		return e, nil
	}
	e = &entry{session: s, lastUsed: r.svc.Now()}
	r.sessions[id] = e
	return e, nil
}

// Evict drops sessions idle for longer than idle and returns how many
// were dropped. With a repo they come back on the next With; without one
// they are gone.
func (r *Registry) Evict(idle time.Duration) int {
	cutoff := r.svc.Now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
		e.mu.Unlock()
	}
	if n > 0 {
		r.svc.Logger.Debug("sessions evicted", zap.Int("count", n), zap.Int("live", len(r.sessions)))
	}
	return n
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Run evicts idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Evict(idle)
		}
	}
}
