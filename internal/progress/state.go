// Package progress tracks a learner's activity counters, derives achievement
// unlocks and summarizes their level.
package progress

import (
	"encoding/json"
	"slices"
	"time"
)

// Activity names a progress counter.
type Activity string

const (
	SimulationsCompleted Activity = "simulations_completed"
	CasesStudied         Activity = "cases_studied"
	PlansCreated         Activity = "plans_created"
	ResourcesAccessed    Activity = "resources_accessed"
	TotalScore           Activity = "total_score"
	Sessions             Activity = "sessions"
)

// Counters returns the six counter names.
func Counters() []Activity {
	return []Activity{
		SimulationsCompleted,
		CasesStudied,
		PlansCreated,
		ResourcesAccessed,
		TotalScore,
		Sessions,
	}
}

// Known reports whether a names a counter.
func (a Activity) Known() bool {
	return slices.Contains(Counters(), a)
}

// Timestamp is an ISO-8601 instant as stored in history and exports. The
// zero value encodes as JSON null.
type Timestamp string

// NewTimestamp formats t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.Format(time.RFC3339Nano))
}

// timestampLayouts are tried in order; the zone-less layouts accept exports
// produced by tools that write local ISO time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time parses the timestamp. ok is false for empty or malformed values.
func (t Timestamp) Time() (time.Time, bool) {
	if t == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, string(t)); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// MarshalJSON encodes the empty timestamp as null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// UnmarshalJSON decodes null as the empty timestamp.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = Timestamp(s)
	return nil
}

// ActivityRecord is one entry of the append-only activity history.
type ActivityRecord struct {
	Type      Activity  `json:"type"`
	Value     int       `json:"value"`
	Score     *int      `json:"score"`
	Timestamp Timestamp `json:"timestamp"`
}

// State is the full progress record of one learner.
type State struct {
	SimulationsCompleted int              `json:"simulations_completed"`
	CasesStudied         int              `json:"cases_studied"`
	PlansCreated         int              `json:"plans_created"`
	ResourcesAccessed    int              `json:"resources_accessed"`
	TotalScore           int              `json:"total_score"`
	Sessions             int              `json:"sessions"`
	LastActivity         Timestamp        `json:"last_activity"`
	Achievements         []AchievementID  `json:"achievements"`
	ActivityHistory      []ActivityRecord `json:"activity_history"`
}

// NewState returns the zeroed initial state.
func NewState() State {
	return State{
		Achievements:    []AchievementID{},
		ActivityHistory: []ActivityRecord{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Achievements = slices.Clone(s.Achievements)
	if out.Achievements == nil {
		out.Achievements = []AchievementID{}
	}
	out.ActivityHistory = make([]ActivityRecord, len(s.ActivityHistory))
	for i, rec := range s.ActivityHistory {
		if rec.Score != nil {
			score := *rec.Score
			rec.Score = &score
		}
		out.ActivityHistory[i] = rec
	}
	return out
}

// counter returns a pointer to the named counter, or nil.
func (s *State) counter(a Activity) *int {
	switch a {
	case SimulationsCompleted:
		return &s.SimulationsCompleted
	case CasesStudied:
		return &s.CasesStudied
	case PlansCreated:
		return &s.PlansCreated
	case ResourcesAccessed:
		return &s.ResourcesAccessed
	case TotalScore:
		return &s.TotalScore
	case Sessions:
		return &s.Sessions
	default:
		return nil
	}
}

// Count returns the value of the named counter, or 0 for unknown names.
func (s State) Count(a Activity) int {
	if p := s.counter(a); p != nil {
		return *p
	}
	return 0
}

// AverageScore is total score over completed simulations, 0 when none.
func (s State) AverageScore() float64 {
	if s.SimulationsCompleted == 0 {
		return 0
	}
	return float64(s.TotalScore) / float64(s.SimulationsCompleted)
}

// TotalActivities sums the four activity counters.
func (s State) TotalActivities() int {
	return s.SimulationsCompleted + s.CasesStudied + s.PlansCreated + s.ResourcesAccessed
}

// HasAchievement reports whether id is unlocked.
func (s State) HasAchievement(id AchievementID) bool {
	return slices.Contains(s.Achievements, id)
}
