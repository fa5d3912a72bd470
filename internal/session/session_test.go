package session

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aieduca/biaslab/internal/bias"
	"github.com/aieduca/biaslab/internal/catalog"
	"github.com/aieduca/biaslab/internal/coach"
	"github.com/aieduca/biaslab/internal/llm"
	"github.com/aieduca/biaslab/internal/progress"
	"github.com/aieduca/biaslab/internal/scenario"
	"github.com/aieduca/biaslab/internal/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testServices(clock *fakeClock) Services {
	engine := scenario.NewEngine(
		scenario.WithRand(rand.New(rand.NewPCG(7, 11))),
		scenario.WithTemplates([]scenario.Template{{
			Type:                  scenario.FacialRecognition,
			Context:               "Sistema de reconhecimento facial na escola",
			Situation:             "O sistema falha mais com estudantes negros.",
			BiasType:              bias.Racial,
			CorrectIdentification: []bias.Type{bias.Racial, bias.Representation},
		}}),
	)
	cat := &catalog.Catalog{
		Cases: []catalog.CaseStudy{{ID: "compas", Title: "COMPAS", Category: "Justiça", Severity: catalog.SeverityHigh}},
		Plans: []catalog.LessonPlan{{
			ID:                "intro",
			Title:             "Introdução",
			SuggestedDuration: 50,
			Activities: []catalog.Activity{
				{Name: "A1"}, {Name: "A2"}, {Name: "A3"}, {Name: "A4"},
			},
		}},
		Resources: []catalog.Resource{{ID: "weapons-of-math-destruction", Kind: catalog.KindBook, Title: "Weapons of Math Destruction"}},
	}
	return Services{Engine: engine, Catalog: cat, Now: clock.Now}
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)}
}

func perfectAnswer() scenario.Answer {
	return scenario.Answer{
		Detected:   bias.DetectYes,
		Identified: []bias.Type{bias.Racial},
		Solution:   "Ampliar a diversidade dos dados de treinamento e testar por grupo.",
	}
}

func TestNew_CountsSession(t *testing.T) {
	s := New(testServices(newClock()))

	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Tracker().Progress().Sessions)
	assert.Nil(t, s.Current())
}

func TestSubmit_RequiresScenario(t *testing.T) {
	s := New(testServices(newClock()))
	_, err := s.Submit(perfectAnswer())
	assert.ErrorIs(t, err, ErrNoScenario)
	assert.Equal(t, 0, s.Tracker().Progress().SimulationsCompleted)
}

func TestSubmit_RecordsScore(t *testing.T) {
	s := New(testServices(newClock()))
	sc := s.NewScenario(scenario.FacialRecognition)
	require.NotNil(t, s.Current())
	assert.Equal(t, sc, *s.Current())

	res, err := s.Submit(perfectAnswer())
	require.NoError(t, err)
	assert.Equal(t, 100, res.Evaluation.Score)
	assert.Equal(t, scenario.LevelExpert, res.Evaluation.Level)
	require.Len(t, res.Unlocked, 1)
	assert.Equal(t, progress.FirstSimulation, res.Unlocked[0].ID)

	st := s.Tracker().Progress()
	assert.Equal(t, 1, st.SimulationsCompleted)
	assert.Equal(t, 100, st.TotalScore)
	assert.Nil(t, s.Current(), "scenario is consumed by Submit")
	require.NotNil(t, s.LastEvaluation())
	assert.Equal(t, res.Evaluation, *s.LastEvaluation())

	_, err = s.Submit(perfectAnswer())
	assert.ErrorIs(t, err, ErrNoScenario, "second submit of the same scenario is rejected")
}

func TestCatalogActivities(t *testing.T) {
	s := New(testServices(newClock()))

	_, _, err := s.StudyCase("missing")
	assert.ErrorIs(t, err, ErrUnknownCase)
	cs, _, err := s.StudyCase("compas")
	require.NoError(t, err)
	assert.Equal(t, "COMPAS", cs.Title)

	_, _, err = s.CreatePlan("intro", catalog.Customization{Duration: 10})
	assert.Error(t, err)
	_, _, err = s.CreatePlan("nope", catalog.Customization{})
	assert.ErrorIs(t, err, ErrUnknownPlan)

	c := catalog.Customization{Duration: 45, GradeLevel: catalog.GradeLevels[0], ClassSize: 20, FocusArea: catalog.FocusAreas[0]}
	plan, unlocked, err := s.CreatePlan("intro", c)
	require.NoError(t, err)
	assert.Len(t, plan.Activities, catalog.ShortActivities)
	require.Len(t, unlocked, 1)
	assert.Equal(t, progress.PlanCreator, unlocked[0].ID)

	_, _, err = s.AccessResource("nope")
	assert.ErrorIs(t, err, ErrUnknownResource)
	_, _, err = s.AccessResource("weapons-of-math-destruction")
	require.NoError(t, err)

	st := s.Tracker().Progress()
	assert.Equal(t, 1, st.CasesStudied)
	assert.Equal(t, 1, st.PlansCreated, "invalid customization is not counted")
	assert.Equal(t, 1, st.ResourcesAccessed)
}

func TestReflect_UsesCoach(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"summary":"Ótima análise.","strengths":["detecção"],"improvements":[]}`),
	})
	svc := testServices(newClock())
	svc.Coach = coach.New(mock, coach.DefaultConfig(), nil)
	s := New(svc)
	s.NewScenario(scenario.FacialRecognition)
	res, err := s.Submit(perfectAnswer())
	require.NoError(t, err)

	r := s.Reflect(t.Context(), res)
	require.NotNil(t, r)
	assert.Equal(t, "Ótima análise.", r.Summary)
	assert.Equal(t, 100, s.Tracker().Progress().TotalScore, "reflection never changes the score")
}

func TestReflect_WithoutCoach(t *testing.T) {
	s := New(testServices(newClock()))
	assert.Nil(t, s.Reflect(t.Context(), Result{}))
}

func openRepo(t *testing.T) store.SnapshotRepo {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st.SnapshotRepo()
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	svc := testServices(newClock())

	s := New(svc)
	s.NewScenario(scenario.FacialRecognition)
	_, err := s.Submit(perfectAnswer())
	require.NoError(t, err)
	pending := s.NewScenario(scenario.FacialRecognition)
	require.NoError(t, s.Save(ctx, repo))

	got, err := Load(ctx, repo, s.ID, svc)
	require.NoError(t, err)
	if diff := cmp.Diff(s.Tracker().Progress(), got.Tracker().Progress()); diff != "" {
		t.Fatalf("progress mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, got.Current())
	assert.Equal(t, pending, *got.Current())
	require.NotNil(t, got.LastEvaluation())
	assert.Equal(t, 100, got.LastEvaluation().Score)
	assert.True(t, s.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, 1, got.Tracker().Progress().Sessions, "loading does not count a session")
}

func TestSave_PrunesOldSnapshots(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	s := New(testServices(newClock()))
	for range KeepSnapshots + 3 {
		require.NoError(t, s.Save(ctx, repo))
	}
	infos, err := repo.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, KeepSnapshots, infos[0].Snapshots)
}

func TestLoadOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	svc := testServices(newClock())

	s, created, err := LoadOrCreate(ctx, repo, "local", svc)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "local", s.ID)
	assert.Equal(t, 0, s.Tracker().Progress().Sessions)

	s.Begin()
	require.NoError(t, s.Save(ctx, repo))

	again, created, err := LoadOrCreate(ctx, repo, "local", svc)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, again.Tracker().Progress().Sessions)

	_, err = Load(ctx, repo, "other", svc)
	assert.True(t, errors.Is(err, ErrUnknownSession))
}

func TestRegistry_WithPersists(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	svc := testServices(newClock())

	reg := NewRegistry(svc, repo)
	id, err := reg.Create(ctx)
	require.NoError(t, err)

	err = reg.With(ctx, id, func(s *Session) error {
		_, _, err := s.StudyCase("compas")
		return err
	})
	require.NoError(t, err)

	// A fresh registry over the same store sees the saved state.
	reg2 := NewRegistry(svc, repo)
	err = reg2.With(ctx, id, func(s *Session) error {
		assert.Equal(t, 1, s.Tracker().Progress().CasesStudied)
		assert.Equal(t, 1, s.Tracker().Progress().Sessions)
		return nil
	})
	require.NoError(t, err)

	err = reg2.With(ctx, "does-not-exist", func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrUnknownSession)
	err = reg2.With(ctx, "", func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestRegistry_ReturnsCallbackError(t *testing.T) {
	reg := NewRegistry(testServices(newClock()), nil)
	id, err := reg.Create(context.Background())
	require.NoError(t, err)

	err = reg.With(context.Background(), id, func(s *Session) error {
		_, err := s.Submit(perfectAnswer())
		return err
	})
	assert.ErrorIs(t, err, ErrNoScenario)
}

func TestRegistry_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(testServices(newClock()), nil)
	id, err := reg.Create(ctx)
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.With(ctx, id, func(s *Session) error {
				_, _, err := s.AccessResource("weapons-of-math-destruction")
				return err
			})
		}()
	}
	wg.Wait()

	require.NoError(t, reg.With(ctx, id, func(s *Session) error {
		assert.Equal(t, workers, s.Tracker().Progress().ResourcesAccessed)
		return nil
	}))
}

func TestRegistry_Evict(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	repo := openRepo(t)
	reg := NewRegistry(testServices(clock), repo)

	idle, err := reg.Create(ctx)
	require.NoError(t, err)
	clock.Advance(20 * time.Minute)
	active, err := reg.Create(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())

	assert.Equal(t, 1, reg.Evict(10*time.Minute))
	assert.Equal(t, 1, reg.Len())

	// The evicted session reloads from the store.
	require.NoError(t, reg.With(ctx, idle, func(s *Session) error { return nil }))
	assert.Equal(t, 2, reg.Len())
	require.NoError(t, reg.With(ctx, active, func(s *Session) error { return nil }))
}

func TestRegistry_Has(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "has.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	svc := testServices(newClock())

	id, err := NewRegistry(svc, s.SnapshotRepo()).Create(t.Context())
	require.NoError(t, err)

	reg := NewRegistry(svc, s.SnapshotRepo())
	ok, err := reg.Has(t.Context(), id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, reg.Len())

	ok, err = reg.Has(t.Context(), uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = reg.Has(t.Context(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}
