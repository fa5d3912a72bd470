package progress

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Tracker owns one learner's State. It is not safe for concurrent use;
// callers that share a Tracker must serialize access.
type Tracker struct {
	state State
	now   func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the clock used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a Tracker with zeroed state.
func New(opts ...Option) *Tracker {
	return Restore(NewState(), opts...)
}

// Restore creates a Tracker from a previously saved state.
func Restore(s State, opts ...Option) *Tracker {
	t := &Tracker{state: s.Clone(), now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Update adds value to the named counter and records the activity. Unknown
// activity names leave the counters unchanged but are still recorded. When
// activity is SimulationsCompleted and score is non-nil, score is added to
// the total. Returns achievements unlocked by this call.
func (t *Tracker) Update(activity Activity, value int, score *int) []Achievement {
	if p := t.state.counter(activity); p != nil {
		*p += value
	}
	if activity == SimulationsCompleted && score != nil {
		t.state.TotalScore += *score
	}

	now := NewTimestamp(t.now())
	rec := ActivityRecord{Type: activity, Value: value, Timestamp: now}
	if score != nil {
		s := *score
		rec.Score = &s
	}
	t.state.ActivityHistory = append(t.state.ActivityHistory, rec)
	t.state.LastActivity = now

	return t.checkAchievements()
}

// Record is Update with value 1 and no score.
func (t *Tracker) Record(activity Activity) []Achievement {
	return t.Update(activity, 1, nil)
}

// RecordSimulation records one completed simulation with its score.
func (t *Tracker) RecordSimulation(score int) []Achievement {
	return t.Update(SimulationsCompleted, 1, &score)
}

func (t *Tracker) checkAchievements() []Achievement {
	var unlocked []Achievement
	for _, a := range registry {
		if t.state.HasAchievement(a.ID) {
			continue
		}
		if a.Unlocked(t.state) {
			t.state.Achievements = append(t.state.Achievements, a.ID)
			unlocked = append(unlocked, a)
		}
	}
	return unlocked
}

// Progress returns a deep copy of the current state.
func (t *Tracker) Progress() State {
	return t.state.Clone()
}

// Achievements returns the unlocked achievements in unlock order. Ids that
// are not in the registry are skipped.
func (t *Tracker) Achievements() []Achievement {
	out := make([]Achievement, 0, len(t.state.Achievements))
	for _, id := range t.state.Achievements {
		if a, ok := LookupAchievement(id); ok {
			out = append(out, a)
		}
	}
	return out
}

// NextAchievements returns every locked achievement with its progress.
func (t *Tracker) NextAchievements() []LockedAchievement {
	var out []LockedAchievement
	for _, a := range registry {
		if t.state.HasAchievement(a.ID) {
			continue
		}
		out = append(out, LockedAchievement{Achievement: a, Progress: a.Progress(t.state)})
	}
	return out
}

// UserLevel is the coarse classification shown in the summary.
type UserLevel string

const (
	UserNew          UserLevel = "new"
	UserBeginner     UserLevel = "beginner"
	UserIntermediate UserLevel = "intermediate"
	UserAdvanced     UserLevel = "advanced"
	UserExpert       UserLevel = "expert"
)

// Label returns the learner-facing level name.
func (l UserLevel) Label() string {
	switch l {
	case UserExpert:
		return "Especialista"
	case UserAdvanced:
		return "Avançado"
	case UserIntermediate:
		return "Intermediário"
	case UserBeginner:
		return "Iniciante"
	case UserNew:
		return "Novo"
	default:
		return string(l)
	}
}

// LevelFor classifies activity volume and average score.
func LevelFor(totalActivities int, avgScore float64) UserLevel {
	switch {
	case totalActivities >= 50 && avgScore >= 80:
		return UserExpert
	case totalActivities >= 25 && avgScore >= 70:
		return UserAdvanced
	case totalActivities >= 10 && avgScore >= 60:
		return UserIntermediate
	case totalActivities >= 5:
		return UserBeginner
	default:
		return UserNew
	}
}

// Summary is the derived aggregate view of a State.
type Summary struct {
	TotalActivities    int       `json:"total_activities"`
	AverageScore       float64   `json:"average_score"`
	AchievementsEarned int       `json:"achievements_earned"`
	UserLevel          UserLevel `json:"user_level"`
	DaysActive         int       `json:"days_active"`
	LastActivity       Timestamp `json:"last_activity"`
}

// Summary derives aggregate statistics from the current state.
func (t *Tracker) Summary() Summary {
	total := t.state.TotalActivities()
	avg := t.state.AverageScore()
	return Summary{
		TotalActivities:    total,
		AverageScore:       math.Round(avg*10) / 10,
		AchievementsEarned: len(t.state.Achievements),
		UserLevel:          LevelFor(total, avg),
		DaysActive:         daysActive(t.state.ActivityHistory),
		LastActivity:       t.state.LastActivity,
	}
}

// daysActive counts distinct calendar dates, skipping malformed timestamps.
func daysActive(history []ActivityRecord) int {
	days := make(map[string]struct{})
	for _, rec := range history {
		ts, ok := rec.Timestamp.Time()
		if !ok {
			continue
		}
		days[ts.Format(time.DateOnly)] = struct{}{}
	}
	return len(days)
}

// Reset replaces the state with the zeroed initial state.
func (t *Tracker) Reset() {
	t.state = NewState()
}

// Export serializes the state as indented JSON.
func (t *Tracker) Export() (string, error) {
	b, err := json.MarshalIndent(t.state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal progress: %w", err)
	}
	return string(b), nil
}

// Import replaces the state with a previously exported one. It returns false
// and leaves the state untouched when text is malformed or lacks any of the
// six counters.
func (t *Tracker) Import(text string) bool {
	s, err := ParseExport(text)
	if err != nil {
		return false
	}
	t.state = s
	return true
}

// ParseExport decodes and validates exported progress.
func ParseExport(text string) (State, error) {
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return State{}, fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := exportSchema()
	if err != nil {
		return State{}, err
	}
	if err := schema.Validate(parsed); err != nil {
		return State{}, fmt.Errorf("invalid progress export: %w", err)
	}

	s := NewState()
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return State{}, fmt.Errorf("decode progress: %w", err)
	}
	s.Achievements = dedupe(s.Achievements)
	return s.Clone(), nil
}

func dedupe(ids []AchievementID) []AchievementID {
	seen := make(map[AchievementID]bool, len(ids))
	out := make([]AchievementID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

var exportSchema = sync.OnceValues(compileExportSchema)

func compileExportSchema() (*jsonschema.Schema, error) {
	counter := map[string]any{"type": "integer"}
	props := map[string]any{
		"last_activity": map[string]any{"type": []any{"string", "null"}},
		"achievements": map[string]any{
			"type":  []any{"array", "null"},
			"items": map[string]any{"type": "string"},
		},
		"activity_history": map[string]any{
			"type": []any{"array", "null"},
			"items": map[string]any{
				"type":     "object",
				"required": []any{"type"},
				"properties": map[string]any{
					"type":      map[string]any{"type": "string"},
					"value":     map[string]any{"type": "integer"},
					"score":     map[string]any{"type": []any{"integer", "null"}},
					"timestamp": map[string]any{"type": []any{"string", "null"}},
				},
			},
		},
	}
	required := make([]any, 0, len(Counters()))
	for _, c := range Counters() {
		props[string(c)] = counter
		required = append(required, string(c))
	}
	def := map[string]any{
		"type":       "object",
		"required":   required,
		"properties": props,
	}

	c := jsonschema.NewCompiler()
	const url = "schema://progress-export.json"
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return compiled, nil
}
