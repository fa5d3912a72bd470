package web

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aieduca/biaslab/internal/bias"
	"github.com/aieduca/biaslab/internal/catalog"
	"github.com/aieduca/biaslab/internal/coach"
	"github.com/aieduca/biaslab/internal/config"
	"github.com/aieduca/biaslab/internal/llm"
	"github.com/aieduca/biaslab/internal/progress"
	"github.com/aieduca/biaslab/internal/scenario"
	"github.com/aieduca/biaslab/internal/session"
	"github.com/aieduca/biaslab/internal/store"
)

func testServices(c *coach.Coach) session.Services {
	engine := scenario.NewEngine(
		scenario.WithRand(rand.New(rand.NewPCG(3, 5))),
		scenario.WithTemplates([]scenario.Template{{
			Type:                  scenario.AutoGrading,
			Context:               "Correção automática de redações",
			Situation:             "Textos com variantes regionais recebem notas menores.",
			BiasType:              bias.Cultural,
			CorrectIdentification: []bias.Type{bias.Cultural, bias.Socioeconomic},
		}}),
	)
	cat := &catalog.Catalog{
		Cases: []catalog.CaseStudy{
			{ID: "compas", Title: "COMPAS", Category: "Justiça", Severity: catalog.SeverityHigh},
			{ID: "tay", Title: "Tay", Category: "Redes Sociais", Severity: catalog.SeverityMedium},
		},
		Plans: []catalog.LessonPlan{{
			ID:                "intro",
			Title:             "Introdução aos Vieses",
			SuggestedDuration: 60,
			Activities:        []catalog.Activity{{Name: "A1"}, {Name: "A2"}, {Name: "A3"}, {Name: "A4"}},
		}},
		Resources: catalog.DefaultResources(),
	}
	return session.Services{Engine: engine, Catalog: cat, Coach: c}
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newClient(t *testing.T, h http.Handler) *client {
	return &client{t: t, handler: h}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(c.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	if got := w.Result().Cookies(); len(got) > 0 {
		c.cookies = got
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func newTestServer(t *testing.T, svc session.Services, repo store.SnapshotRepo) (*Server, *session.Registry) {
	t.Helper()
	reg := session.NewRegistry(svc, repo)
	cfg := config.ServerConfig{Mode: gin.TestMode, SessionSecret: "test-secret-test-secret-test-sec", SessionMaxAge: time.Hour}
	return NewServer(cfg, reg, svc, nil), reg
}

func TestCatalogEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, testServices(nil), nil)
	c := newClient(t, srv.Handler())

	w := c.do(http.MethodGet, "/api/biases", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]bias.Info](t, w), 7)

	w = c.do(http.MethodGet, "/api/scenarios/types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]scenarioTypeView](t, w), 5)

	w = c.do(http.MethodGet, "/api/cases?severity=Alta", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cases := decode[[]catalog.CaseStudy](t, w)
	require.Len(t, cases, 1)
	assert.Equal(t, "compas", cases[0].ID)

	w = c.do(http.MethodGet, "/api/cases/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodGet, "/api/resources?kind=book", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, r := range decode[[]catalog.Resource](t, w) {
		assert.Equal(t, catalog.KindBook, r.Kind)
	}
}

func TestSimulationFlow(t *testing.T) {
	srv, reg := newTestServer(t, testServices(nil), nil)
	c := newClient(t, srv.Handler())

	w := c.do(http.MethodPost, "/api/evaluations", scenario.Answer{Detected: bias.DetectYes})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	require.NotEmpty(t, c.cookies, "expected session cookie")
	require.Equal(t, 1, reg.Len())

	w = c.do(http.MethodPost, "/api/scenarios", map[string]string{"type": "Avaliação Automática"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sc := decode[scenario.Scenario](t, w)
	assert.Equal(t, scenario.AutoGrading, sc.Type)
	assert.Equal(t, bias.Cultural, sc.BiasType)

	w = c.do(http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sc.ID, decode[scenario.Scenario](t, w).ID)

	w = c.do(http.MethodPost, "/api/evaluations", map[string]any{
		"bias_detected":         "yes",
		"identified_bias_types": []string{"cultural"},
		"solution":              "Treinar com redações de todas as regiões e auditar as notas por grupo.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[evaluationResponse](t, w)
	assert.Equal(t, 100, res.Evaluation.Score)
	assert.Equal(t, scenario.LevelExpert, res.Evaluation.Level)
	assert.Nil(t, res.Reflection)
	require.Len(t, res.Unlocked, 1)
	assert.Equal(t, progress.FirstSimulation, res.Unlocked[0].ID)

	// The scenario is consumed by the evaluation.
	w = c.do(http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.do(http.MethodGet, "/api/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[progress.State](t, w)
	assert.Equal(t, 1, state.SimulationsCompleted)
	assert.Equal(t, 100, state.TotalScore)
	assert.Equal(t, 1, state.Sessions)
	assert.Equal(t, 1, reg.Len(), "cookie must keep the same session")
}

func TestNewScenario_RequiresType(t *testing.T) {
	srv, _ := newTestServer(t, testServices(nil), nil)
	c := newClient(t, srv.Handler())

	w := c.do(http.MethodPost, "/api/scenarios", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "Type")
}

func TestEvaluation_WithCoach(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"summary":"Boa análise.","strengths":["identificou o viés cultural"],"improvements":[]}`)})
	srv, _ := newTestServer(t, testServices(coach.New(mock, coach.DefaultConfig(), nil)), nil)
	c := newClient(t, srv.Handler())

	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/scenarios", map[string]string{"type": "auto-grading"}).Code)
	w := c.do(http.MethodPost, "/api/evaluations", scenario.Answer{Detected: bias.DetectPossibly})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[evaluationResponse](t, w)
	require.NotNil(t, res.Reflection)
	assert.Equal(t, "Boa análise.", res.Reflection.Summary)
	assert.Len(t, mock.Calls(), 1)
}

func TestCatalogActivitiesUnlock(t *testing.T) {
	srv, _ := newTestServer(t, testServices(nil), nil)
	c := newClient(t, srv.Handler())

	w := c.do(http.MethodPost, "/api/plans/intro/generate", map[string]any{
		"duration": 90, "grade_level": "Ensino Médio", "class_size": 30, "focus_area": "Casos Reais",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode[planResponse](t, w)
	assert.Len(t, plan.Plan.Activities, 5)
	assert.Contains(t, plan.Text, "PLANO DE AULA: Introdução aos Vieses")
	require.Len(t, plan.Unlocked, 1)
	assert.Equal(t, progress.PlanCreator, plan.Unlocked[0].ID)

	w = c.do(http.MethodPost, "/api/plans/intro/generate", map[string]any{"duration": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodPost, "/api/plans/intro/generate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 60, decode[planResponse](t, w).Plan.Duration)

	w = c.do(http.MethodPost, "/api/cases/compas/study", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "COMPAS", decode[unlockResponse[catalog.CaseStudy]](t, w).Item.Title)

	w = c.do(http.MethodPost, "/api/resources/nope/access", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodGet, "/api/progress/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[progress.Summary](t, w)
	// Two plans and one case; sessions are not activities.
	assert.Equal(t, 3, sum.TotalActivities)
	assert.Equal(t, 1, sum.AchievementsEarned)

	w = c.do(http.MethodGet, "/api/progress/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, l := range decode[[]progress.LockedAchievement](t, w) {
		assert.NotEqual(t, progress.PlanCreator, l.ID)
	}
}

func TestProgressExportImportReset(t *testing.T) {
	srv, _ := newTestServer(t, testServices(nil), nil)
	c := newClient(t, srv.Handler())

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/cases/tay/study", nil).Code)
	w := c.do(http.MethodGet, "/api/progress/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.String()
	assert.Contains(t, w.Header().Get("Content-Disposition"), "progresso.json")

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/progress/reset", nil).Code)
	state := decode[progress.State](t, c.do(http.MethodGet, "/api/progress", nil))
	assert.Zero(t, state.CasesStudied)

	w = c.do(http.MethodPost, "/api/progress/import", `{"sessions": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodPost, "/api/progress/import", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	state = decode[progress.State](t, c.do(http.MethodGet, "/api/progress", nil))
	assert.Equal(t, 1, state.CasesStudied)
}

func TestSessionsSurviveRestart(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc := testServices(nil)
	srv, _ := newTestServer(t, svc, s.SnapshotRepo())
	c := newClient(t, srv.Handler())
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/cases/compas/study", nil).Code)

	// A new server with the same secret and store sees the same learner.
	restarted, reg := newTestServer(t, svc, s.SnapshotRepo())
	c.handler = restarted.Handler()
	state := decode[progress.State](t, c.do(http.MethodGet, "/api/progress", nil))
	assert.Equal(t, 1, state.CasesStudied)
	assert.Equal(t, 1, reg.Len())
}

func TestRequestLogger_Levels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, p := range []string{"/ok", "/bad", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/bad", entries[1].ContextMap()["path"])
}
