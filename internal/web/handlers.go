package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aieduca/biaslab/internal/bias"
	"github.com/aieduca/biaslab/internal/catalog"
	"github.com/aieduca/biaslab/internal/coach"
	"github.com/aieduca/biaslab/internal/progress"
	"github.com/aieduca/biaslab/internal/scenario"
	"github.com/aieduca/biaslab/internal/session"
)

type scenarioTypeView struct {
	ID    scenario.Type `json:"id"`
	Label string        `json:"label"`
}

type scenarioRequest struct {
	Type string `json:"type" binding:"required"`
}

type evaluationResponse struct {
	session.Result
	Reflection *coach.Reflection `json:"reflection,omitempty"`
}

type unlockResponse[T any] struct {
	Item     T                      `json:"item"`
	Unlocked []progress.Achievement `json:"unlocked"`
}

type planResponse struct {
	Plan     catalog.Plan           `json:"plan"`
	Text     string                 `json:"text"`
	Unlocked []progress.Achievement `json:"unlocked"`
}

func (s *Server) listBiases(c *gin.Context) {
	c.JSON(http.StatusOK, bias.Registry())
}

func (s *Server) listScenarioTypes(c *gin.Context) {
	types := scenario.AllTypes()
	out := make([]scenarioTypeView, len(types))
	for i, t := range types {
		out[i] = scenarioTypeView{ID: t, Label: t.Label()}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) scenarioStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Engine.Statistics())
}

func (s *Server) newScenario(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var sc scenario.Scenario
	err := s.reg.With(c.Request.Context(), sessionID(c), func(sess *session.Session) error {
		sc = sess.NewScenario(scenario.ParseType(req.Type))
		return nil
	})
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sc)
}

func (s *Server) currentScenario(c *gin.Context) {
	var sc *scenario.Scenario
	err := s.reg.With(c.Request.Context(), sessionID(c), func(sess *session.Session) error {
		if cur := sess.Current(); cur != nil {
			v := *cur
			sc = &v
			return nil
		}
		return session.ErrNoScenario
	})
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

// evaluate scores the answer under the session lock, then asks the coach
// without holding it.
func (s *Server) evaluate(c *gin.Context) {
	var ans scenario.Answer
	if err := c.ShouldBindJSON(&ans); err != nil {
		badRequest(c, err)
		return
	}
	var res session.Result
	err := s.reg.With(c.Request.Context(), sessionID(c), func(sess *session.Session) error {
		var err error
		res, err = sess.Submit(ans)
		return err
	})
	if err != nil {
		abortError(c, err)
		return
	}
	out := evaluationResponse{Result: res}
	if s.svc.Coach.Enabled() {
		out.Reflection = s.svc.Coach.Reflect(c.Request.Context(), res.Scenario, res.Answer, res.Evaluation)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listCases(c *gin.Context) {
	cases := s.svc.Catalog.FilterCases(catalog.CaseFilter{
		Category: c.Query("category"),
		Severity: c.Query("severity"),
	})
	c.JSON(http.StatusOK, cases)
}

func (s *Server) getCase(c *gin.Context) {
	cs, ok := s.svc.Catalog.Case(c.Param("id"))
	if !ok {
		abortError(c, session.ErrUnknownCase)
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (s *Server) studyCase(c *gin.Context) {
	var out unlockResponse[catalog.CaseStudy]
	err := s.reg.With(c.Request.Context(), sessionID(c), func(sess *session.Session) error {
		var err error
		out.Item, out.Unlocked, err = sess.StudyCase(c.Param("id"))
		return err
	})
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listPlans(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Catalog.Plans)
}

func (s *Server) getPlan(c *gin.Context) {
	tmpl, ok := s.svc.Catalog.Plan(c.Param("id"))
	if !ok {
		abortError(c, session.ErrUnknownPlan)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plan":         tmpl,
		"defaults":     catalog.DefaultCustomization(tmpl),
		"grade_levels": catalog.GradeLevels,
		"focus_areas":  catalog.FocusAreas,
	})
}

// generatePlan customizes a plan. Missing fields in the body keep the
// template's defaults.
func (s *Server) generatePlan(c *gin.Context) {
	id := c.Param("id")
	tmpl, ok := s.svc.Catalog.Plan(id)
	if !ok {
		abortError(c, session.ErrUnknownPlan)
		return
	}
	cust := catalog.DefaultCustomization(tmpl)
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&cust); err != nil {
			badRequest(c, err)
			return
		}
	}
	if err := cust.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	var out planResponse
	err := s.reg.With(c.Request.Context(), sessionID(c), func(sess *session.Session) error {
		var err error
		out.Plan, out.Unlocked, err = sess.CreatePlan(id, cust)
		return err
	})
	if err != nil {
		abortError(c, err)
		return
	}
	out.Text = out.Plan.Text()
	c.JSON(http.StatusOK, out)
}

func (s *Server) listResources(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Catalog.ResourcesByKind(catalog.ResourceKind(c.Query("kind"))))
}

func (s *Server) accessResource(c *gin.Context) {
	var out unlockResponse[catalog.Resource]
	err := s.reg.With(c.Request.Context(), sessionID(c), func(sess *session.Session) error {
		var err error
		out.Item, out.Unlocked, err = sess.AccessResource(c.Param("id"))
		return err
	})
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// withTracker runs fn on the caller's tracker and writes its result.
func (s *Server) withTracker(c *gin.Context, fn func(*progress.Tracker) (any, error)) {
	var out any
	err := s.reg.With(c.Request.Context(), sessionID(c), func(sess *session.Session) error {
		var err error
		out, err = fn(sess.Tracker())
		return err
	})
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getProgress(c *gin.Context) {
	s.withTracker(c, func(t *progress.Tracker) (any, error) { return t.Progress(), nil })
}

func (s *Server) progressSummary(c *gin.Context) {
	s.withTracker(c, func(t *progress.Tracker) (any, error) { return t.Summary(), nil })
}

func (s *Server) achievements(c *gin.Context) {
	s.withTracker(c, func(t *progress.Tracker) (any, error) { return t.Achievements(), nil })
}

func (s *Server) nextAchievements(c *gin.Context) {
	s.withTracker(c, func(t *progress.Tracker) (any, error) { return t.NextAchievements(), nil })
}

func (s *Server) exportProgress(c *gin.Context) {
	var text string
	err := s.reg.With(c.Request.Context(), sessionID(c), func(sess *session.Session) error {
		var err error
		text, err = sess.Tracker().Export()
		return err
	})
	if err != nil {
		abortError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="progresso.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(text))
}

func (s *Server) importProgress(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	if _, err := progress.ParseExport(string(body)); err != nil {
		badRequest(c, err)
		return
	}
	s.withTracker(c, func(t *progress.Tracker) (any, error) {
		t.Import(string(body))
		return t.Summary(), nil
	})
}

func (s *Server) resetProgress(c *gin.Context) {
	s.withTracker(c, func(t *progress.Tracker) (any, error) {
		t.Reset()
		return t.Summary(), nil
	})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// abortError maps domain errors to HTTP statuses.
func abortError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrUnknownCase),
		errors.Is(err, session.ErrUnknownPlan),
		errors.Is(err, session.ErrUnknownResource):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrNoScenario):
		status = http.StatusConflict
	case errors.Is(err, session.ErrUnknownSession):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
