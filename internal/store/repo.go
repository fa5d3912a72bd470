package store

import (
	"context"
	"time"

	"github.com/aieduca/biaslab/internal/progress"
	"github.com/aieduca/biaslab/internal/scenario"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match
}

// SnapshotVersion is the current SnapshotData layout.
const SnapshotVersion = 1

// SnapshotData captures a learning session at a point in time.
type SnapshotData struct {
	Version        int                  `json:"version"`
	StartedAt      time.Time            `json:"started_at"`
	Progress       progress.State       `json:"progress"`
	Scenario       *scenario.Scenario   `json:"scenario,omitempty"`
	LastEvaluation *scenario.Evaluation `json:"last_evaluation,omitempty"`
}

// Snapshot represents a point-in-time capture of one session.
type Snapshot struct {
	ID        int
	SessionID string
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SessionInfo describes a stored session.
type SessionInfo struct {
	SessionID string
	Snapshots int
	LastSeen  time.Time
}

// SnapshotRepo manages session snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot. Sequence is assigned when zero.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot of the session, or nil if none exist.
	Latest(ctx context.Context, sessionID string) (*Snapshot, error)

	// Prune deletes all but the keep most recent snapshots of the session.
	Prune(ctx context.Context, sessionID string, keep int) error

	// Sessions lists stored sessions, most recently seen first.
	Sessions(ctx context.Context) ([]SessionInfo, error)

	// Delete removes every snapshot of the session.
	Delete(ctx context.Context, sessionID string) error

	// Expire removes snapshots older than before and returns how many were deleted.
	Expire(ctx context.Context, before time.Time) (int64, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
