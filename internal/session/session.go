// Package session binds one learner's progress to the scenario engine,
// the catalog and the optional coach.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aieduca/biaslab/internal/catalog"
	"github.com/aieduca/biaslab/internal/coach"
	"github.com/aieduca/biaslab/internal/progress"
	"github.com/aieduca/biaslab/internal/scenario"
)

var (
	ErrNoScenario      = errors.New("no scenario in progress")
	ErrUnknownCase     = errors.New("unknown case study")
	ErrUnknownPlan     = errors.New("unknown lesson plan")
	ErrUnknownResource = errors.New("unknown resource")
)

// Services are the shared, read-only dependencies of every session.
type Services struct {
	Engine  *scenario.Engine
	Catalog *catalog.Catalog
	Coach   *coach.Coach
	Logger  *zap.Logger
	Now     func() time.Time
}

func (svc Services) withDefaults() Services {
	if svc.Engine == nil {
		svc.Engine = scenario.NewEngine()
	}
	if svc.Catalog == nil {
		svc.Catalog = &catalog.Catalog{Resources: catalog.DefaultResources()}
	}
	if svc.Logger == nil {
		svc.Logger = zap.NewNop()
	}
	if svc.Now == nil {
		svc.Now = time.Now
	}
	return svc
}

// Session is one learner's working state. It is not safe for concurrent
// use; Registry serializes access for the HTTP shell.
type Session struct {
	ID        string
	StartedAt time.Time

	svc     Services
	logger  *zap.Logger
	tracker *progress.Tracker

	current        *scenario.Scenario
	lastScenario   *scenario.Scenario
	lastEvaluation *scenario.Evaluation
}

// Result is the outcome of submitting an answer.
type Result struct {
	Scenario   scenario.Scenario      `json:"scenario"`
	Answer     scenario.Answer        `json:"answer"`
	Evaluation scenario.Evaluation    `json:"evaluation"`
	Unlocked   []progress.Achievement `json:"unlocked"`
}

// New starts a fresh session with a random ID and counts it.
func New(svc Services) *Session {
	s := open(uuid.NewString(), progress.NewState(), svc)
	s.Begin()
	return s
}

// Resume rebuilds a session from saved state without counting a new
// session. Call Begin when the learner actually starts working.
func Resume(id string, state progress.State, svc Services) *Session {
	return open(id, state, svc)
}

func open(id string, state progress.State, svc Services) *Session {
	svc = svc.withDefaults()
	return &Session{
		ID:        id,
		StartedAt: svc.Now(),
		svc:       svc,
		logger:    svc.Logger.With(zap.String("session", id)),
		tracker:   progress.Restore(state, progress.WithClock(svc.Now)),
	}
}

// Begin records the start of a learning session.
func (s *Session) Begin() []progress.Achievement {
	s.StartedAt = s.svc.Now()
	return s.record(progress.Sessions, nil)
}

// Tracker exposes the progress tracker for reads and import/export.
func (s *Session) Tracker() *progress.Tracker { return s.tracker }

// Engine returns the scenario engine backing this session.
func (s *Session) Engine() *scenario.Engine { return s.svc.Engine }

// Catalog returns the catalog backing this session.
func (s *Session) Catalog() *catalog.Catalog { return s.svc.Catalog }

// Current returns the scenario awaiting an answer, if any.
func (s *Session) Current() *scenario.Scenario { return s.current }

// LastEvaluation returns the most recent evaluation, if any.
func (s *Session) LastEvaluation() *scenario.Evaluation { return s.lastEvaluation }

// NewScenario generates a scenario of type t and makes it current,
// replacing any unanswered one.
func (s *Session) NewScenario(t scenario.Type) scenario.Scenario {
	sc := s.svc.Engine.Generate(t)
	s.current = &sc
	s.logger.Debug("scenario generated", zap.Stringer("scenario", sc))
	return sc
}

// Submit scores ans against the current scenario and records the
// simulation with its score. The scenario is consumed so the same answer
// cannot be counted twice.
func (s *Session) Submit(ans scenario.Answer) (Result, error) {
	if s.current == nil {
		return Result{}, ErrNoScenario
	}
	sc := *s.current
	ev := s.svc.Engine.Evaluate(sc, ans)

	s.lastScenario = &sc
	s.lastEvaluation = &ev
	s.current = nil

	unlocked := s.tracker.RecordSimulation(ev.Score)
	s.logger.Info("answer evaluated",
		zap.Int("scenario", sc.ID),
		zap.Int("score", ev.Score),
		zap.String("level", string(ev.Level)),
		zap.Int("unlocked", len(unlocked)),
	)
	return Result{Scenario: sc, Answer: ans, Evaluation: ev, Unlocked: unlocked}, nil
}

// CanReflect reports whether a coach is configured.
func (s *Session) CanReflect() bool { return s.svc.Coach.Enabled() }

// Reflect asks the coach about a submitted result. It does not touch the
// session, so callers may run it outside the session lock.
func (s *Session) Reflect(ctx context.Context, r Result) *coach.Reflection {
	return s.svc.Coach.Reflect(ctx, r.Scenario, r.Answer, r.Evaluation)
}

// StudyCase returns a case study and counts it as studied.
func (s *Session) StudyCase(id string) (catalog.CaseStudy, []progress.Achievement, error) {
	cs, ok := s.svc.Catalog.Case(id)
	if !ok {
		return catalog.CaseStudy{}, nil, fmt.Errorf("%w: %q", ErrUnknownCase, id)
	}
	return cs, s.record(progress.CasesStudied, nil), nil
}

// CreatePlan customizes a lesson plan template and counts it as created.
func (s *Session) CreatePlan(id string, c catalog.Customization) (catalog.Plan, []progress.Achievement, error) {
	tmpl, ok := s.svc.Catalog.Plan(id)
	if !ok {
		return catalog.Plan{}, nil, fmt.Errorf("%w: %q", ErrUnknownPlan, id)
	}
	plan, err := catalog.GeneratePlan(tmpl, c)
	if err != nil {
		return catalog.Plan{}, nil, err
	}
	return plan, s.record(progress.PlansCreated, nil), nil
}

// AccessResource returns a resource and counts the access.
func (s *Session) AccessResource(id string) (catalog.Resource, []progress.Achievement, error) {
	r, ok := s.svc.Catalog.Resource(id)
	if !ok {
		return catalog.Resource{}, nil, fmt.Errorf("%w: %q", ErrUnknownResource, id)
	}
	return r, s.record(progress.ResourcesAccessed, nil), nil
}

func (s *Session) record(a progress.Activity, score *int) []progress.Achievement {
	unlocked := s.tracker.Update(a, 1, score)
	for _, ach := range unlocked {
		s.logger.Info("achievement unlocked", zap.String("achievement", string(ach.ID)))
	}
	return unlocked
}
