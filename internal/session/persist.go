package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aieduca/biaslab/internal/progress"
	"github.com/aieduca/biaslab/internal/store"
)

// KeepSnapshots is how many snapshots are retained per session.
const KeepSnapshots = 5

// ErrUnknownSession is returned when no snapshot exists for an ID.
var ErrUnknownSession = errors.New("unknown session")

// Snapshot captures the session for storage.
func (s *Session) Snapshot() store.SnapshotData {
	data := store.SnapshotData{
		Version:   store.SnapshotVersion,
		StartedAt: s.StartedAt,
		Progress:  s.tracker.Progress(),
	}
	if s.current != nil {
		sc := *s.current
		data.Scenario = &sc
	}
	if s.lastEvaluation != nil {
		ev := *s.lastEvaluation
		data.LastEvaluation = &ev
	}
	return data
}

// Save writes a snapshot and prunes older ones.
func (s *Session) Save(ctx context.Context, repo store.SnapshotRepo) error {
	snap := &store.Snapshot{
		SessionID: s.ID,
		Timestamp: s.svc.Now(),
		Data:      s.Snapshot(),
	}
	if err := repo.Save(ctx, snap); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	if err := repo.Prune(ctx, s.ID, KeepSnapshots); err != nil {
		s.logger.Warn("prune snapshots", zap.Error(err))
	}
	return nil
}

// Load restores the latest snapshot of id. It returns ErrUnknownSession
// when the store has none.
func Load(ctx context.Context, repo store.SnapshotRepo, id string, svc Services) (*Session, error) {
	snap, err := repo.Latest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	if snap.Data.Version > store.SnapshotVersion {
		return nil, fmt.Errorf("session %s: snapshot version %d is newer than supported %d",
			id, snap.Data.Version, store.SnapshotVersion)
	}

	s := Resume(id, snap.Data.Progress, svc)
	if !snap.Data.StartedAt.IsZero() {
		s.StartedAt = snap.Data.StartedAt
	}
	s.current = snap.Data.Scenario
	s.lastEvaluation = snap.Data.LastEvaluation
	return s, nil
}

// LoadOrCreate restores id or, when the store has no snapshot, creates an
// empty session with that ID. The boolean reports whether it was created.
// A created session is not counted until Begin is called.
func LoadOrCreate(ctx context.Context, repo store.SnapshotRepo, id string, svc Services) (*Session, bool, error) {
	s, err := Load(ctx, repo, id, svc)
	if errors.Is(err, ErrUnknownSession) {
		return Resume(id, progress.NewState(), svc), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return s, false, nil
}
