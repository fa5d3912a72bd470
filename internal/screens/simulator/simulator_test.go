package simulator

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/aieduca/biaslab/internal/bias"
	"github.com/aieduca/biaslab/internal/coach"
	"github.com/aieduca/biaslab/internal/llm"
	"github.com/aieduca/biaslab/internal/scenario"
	"github.com/aieduca/biaslab/internal/screen"
	"github.com/aieduca/biaslab/internal/session"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testEnv(c *coach.Coach) *screen.Env {
	engine := scenario.NewEngine(
		scenario.WithRand(rand.New(rand.NewPCG(1, 2))),
		scenario.WithTemplates([]scenario.Template{{
			Type:                  scenario.FacialRecognition,
			Context:               "Controle de acesso por reconhecimento facial",
			Situation:             "Funcionários negros são barrados com mais frequência.",
			BiasType:              bias.Racial,
			CorrectIdentification: []bias.Type{bias.Racial, bias.Representation},
		}}),
	)
	return &screen.Env{Session: session.New(session.Services{Engine: engine, Coach: c})}
}

func update(t *testing.T, s *SimulatorScreen, msgs ...tea.Msg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, m := range msgs {
		_, cmd = s.Update(m)
	}
	return cmd
}

// answerPerfectly walks the screen from the type picker to the result.
func answerPerfectly(t *testing.T, s *SimulatorScreen) tea.Cmd {
	t.Helper()
	update(t, s, typeChosenMsg{Type: scenario.FacialRecognition})
	if s.Phase() != PhaseDetect {
		t.Fatalf("phase = %v, want detect", s.Phase())
	}

	update(t, s, keyPress('a'), specialKey(tea.KeyEnter))
	if s.Phase() != PhaseIdentify {
		t.Fatalf("phase = %v, want identify", s.Phase())
	}

	// Racial is the sixth bias type.
	for range 5 {
		update(t, s, specialKey(tea.KeyDown))
	}
	update(t, s, keyPress('x'), specialKey(tea.KeyEnter))
	if s.Phase() != PhaseSolution {
		t.Fatalf("phase = %v, want solution", s.Phase())
	}

	s.solution.Model.SetValue("Diversificar os dados de treinamento e testar por grupo racial.")
	return update(t, s, specialKey(tea.KeyEnter))
}

func TestSimulator_FullRound(t *testing.T) {
	env := testEnv(nil)
	s := New(env)
	if s.Phase() != PhasePickType {
		t.Fatal("expected type picker first")
	}
	if !strings.Contains(s.View(100, 40), "Reconhecimento Facial") {
		t.Fatal("picker should list scenario types")
	}

	cmd := answerPerfectly(t, s)
	if cmd != nil {
		t.Fatal("no coach configured, expected no command")
	}
	if s.Phase() != PhaseResult {
		t.Fatalf("phase = %v, want result", s.Phase())
	}

	ans := s.result.Answer
	if ans.Detected != bias.DetectYes || len(ans.Identified) != 1 || ans.Identified[0] != bias.Racial {
		t.Fatalf("answer = %+v", ans)
	}
	if s.result.Evaluation.Score != 100 {
		t.Fatalf("score = %d, want 100", s.result.Evaluation.Score)
	}
	if got := env.Session.Tracker().Progress().SimulationsCompleted; got != 1 {
		t.Fatalf("simulations = %d, want 1", got)
	}
	view := s.View(100, 60)
	for _, want := range []string{"Pontuação: 100/100", "Conquista desbloqueada"} {
		if !strings.Contains(view, want) {
			t.Errorf("result view missing %q", want)
		}
	}

	update(t, s, keyPress('n'))
	if s.Phase() != PhaseDetect || s.result != nil {
		t.Fatal("'n' should start a new scenario of the same type")
	}
}

func TestSimulator_ChangeType(t *testing.T) {
	s := New(testEnv(nil))
	answerPerfectly(t, s)
	update(t, s, keyPress('t'))
	if s.Phase() != PhasePickType {
		t.Fatalf("phase = %v, want picker", s.Phase())
	}
}

func TestSimulator_CoachReflection(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"summary":"Ótima identificação.","strengths":["viés racial"],"improvements":["cite métricas"]}`)})
	s := New(testEnv(coach.New(mock, coach.DefaultConfig(), nil)))

	cmd := answerPerfectly(t, s)
	if cmd == nil {
		t.Fatal("expected reflection command")
	}
	if !strings.Contains(s.View(100, 60), "tutor está analisando") {
		t.Fatal("expected loading hint while the coach works")
	}

	// A reply for another scenario is ignored.
	update(t, s, reflectionMsg{ScenarioID: s.result.Scenario.ID + 1, Reflection: &coach.Reflection{Summary: "x"}})
	if s.reflection != nil {
		t.Fatal("stale reflection accepted")
	}

	update(t, s, cmd())
	if s.reflection == nil || s.reflection.Summary != "Ótima identificação." {
		t.Fatalf("reflection = %+v", s.reflection)
	}
	if !strings.Contains(s.View(100, 60), "cite métricas") {
		t.Fatal("reflection not rendered")
	}
}

func TestSimulator_EmptyAnswer(t *testing.T) {
	s := New(testEnv(nil))
	update(t, s, typeChosenMsg{Type: scenario.FacialRecognition})
	update(t, s, keyPress('c'), specialKey(tea.KeyEnter)) // "não há viés"
	update(t, s, specialKey(tea.KeyEnter))
	update(t, s, specialKey(tea.KeyEnter))

	if s.Phase() != PhaseResult {
		t.Fatalf("phase = %v, want result", s.Phase())
	}
	if s.result.Evaluation.Score != 0 {
		t.Fatalf("score = %d, want 0", s.result.Evaluation.Score)
	}
}
