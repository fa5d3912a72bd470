// Package simulator is the terminal bias simulator: pick a scenario type,
// read the scenario, answer three questions and see the evaluation.
package simulator

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/aieduca/biaslab/internal/bias"
	"github.com/aieduca/biaslab/internal/coach"
	"github.com/aieduca/biaslab/internal/scenario"
	"github.com/aieduca/biaslab/internal/screen"
	"github.com/aieduca/biaslab/internal/session"
	"github.com/aieduca/biaslab/internal/ui/components"
	"github.com/aieduca/biaslab/internal/ui/layout"
)

// Phase is the step of the simulator the learner is on.
type Phase int

const (
	PhasePickType Phase = iota
	PhaseDetect
	PhaseIdentify
	PhaseSolution
	PhaseResult
)

const (
	solutionLimit  = 500
	reflectTimeout = 30 * time.Second
)

// SimulatorScreen implements screen.Screen for the bias simulator.
type SimulatorScreen struct {
	env   *screen.Env
	phase Phase

	typeMenu components.Menu
	current  *scenario.Scenario
	detect   components.MultiChoice
	identify components.Checklist
	solution components.TextInput

	result     *session.Result
	reflecting bool
	reflection *coach.Reflection
	scroll     int
}

var _ screen.Screen = (*SimulatorScreen)(nil)
var _ screen.KeyHintProvider = (*SimulatorScreen)(nil)

// New creates a simulator starting at the type picker.
func New(env *screen.Env) *SimulatorScreen {
	s := &SimulatorScreen{env: env}
	s.typeMenu = typeMenu()
	return s
}

func typeMenu() components.Menu {
	var items []components.MenuItem
	for _, t := range scenario.AllTypes() {
		items = append(items, components.MenuItem{
			Label: t.Label(),
			Action: func() tea.Cmd {
				return func() tea.Msg { return typeChosenMsg{Type: t} }
			},
		})
	}
	return components.NewMenu(items)
}

func (s *SimulatorScreen) Init() tea.Cmd {
	return nil
}

func (s *SimulatorScreen) Title() string {
	return "Simulador de Vieses"
}

// Phase returns the current step.
func (s *SimulatorScreen) Phase() Phase { return s.phase }

func (s *SimulatorScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case PhaseIdentify:
		return []layout.KeyHint{
			{Key: "Espaço", Description: "Marcar"},
			{Key: "Enter", Description: "Confirmar"},
			{Key: "Esc", Description: "Voltar"},
		}
	case PhaseSolution:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Enviar resposta"},
			{Key: "Esc", Description: "Voltar"},
		}
	case PhaseResult:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Rolar"},
			{Key: "N", Description: "Novo cenário"},
			{Key: "T", Description: "Trocar tipo"},
			{Key: "Esc", Description: "Voltar"},
		}
	default:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navegar"},
			{Key: "Enter", Description: "Selecionar"},
			{Key: "Esc", Description: "Voltar"},
		}
	}
}

func (s *SimulatorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case typeChosenMsg:
		return s, s.start(msg.Type)

	case reflectionMsg:
		if s.result != nil && msg.ScenarioID == s.result.Scenario.ID {
			s.reflecting = false
			s.reflection = msg.Reflection
		}
		return s, nil
	}

	var cmd tea.Cmd
	switch s.phase {
	case PhasePickType:
		s.typeMenu, cmd = s.typeMenu.Update(msg)

	case PhaseDetect:
		s.detect, cmd = s.detect.Update(msg)
		if s.detect.Chosen() >= 0 {
			s.phase = PhaseIdentify
		}

	case PhaseIdentify:
		s.identify, cmd = s.identify.Update(msg)
		if s.identify.Confirmed {
			s.phase = PhaseSolution
			cmd = s.solution.Init()
		}

	case PhaseSolution:
		if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
			return s, s.submit()
		}
		s.solution, cmd = s.solution.Update(msg)

	case PhaseResult:
		cmd = s.handleResultKey(msg)
	}
	return s, cmd
}

// start generates a scenario of type t and resets the answer widgets.
func (s *SimulatorScreen) start(t scenario.Type) tea.Cmd {
	sc := s.env.Session.NewScenario(t)
	s.env.Save()

	s.current = &sc
	s.result = nil
	s.reflection = nil
	s.reflecting = false
	s.scroll = 0

	detections := bias.AllDetections()
	labels := make([]string, len(detections))
	for i, d := range detections {
		labels[i] = d.Label()
	}
	s.detect = components.NewMultiChoice("Há viés neste cenário?", labels)

	types := bias.All()
	typeLabels := make([]string, len(types))
	for i, bt := range types {
		typeLabels[i] = bt.Label()
	}
	s.identify = components.NewChecklist(typeLabels)
	s.solution = components.NewTextInput("Como você reduziria esse viés?", solutionLimit)

	s.phase = PhaseDetect
	return nil
}

// Answer builds the learner's answer from the widgets.
func (s *SimulatorScreen) Answer() scenario.Answer {
	ans := scenario.Answer{Solution: s.solution.Value()}
	if i := s.detect.Chosen(); i >= 0 {
		ans.Detected = bias.AllDetections()[i]
	}
	types := bias.All()
	for _, i := range s.identify.Indices() {
		ans.Identified = append(ans.Identified, types[i])
	}
	return ans
}

func (s *SimulatorScreen) submit() tea.Cmd {
	res, err := s.env.Session.Submit(s.Answer())
	if err != nil {
		// Only possible if the scenario was consumed elsewhere; start over.
		s.phase = PhasePickType
		return nil
	}
	s.env.Save()
	s.result = &res
	s.phase = PhaseResult
	s.scroll = 0

	if !s.env.Session.CanReflect() {
		return nil
	}
	s.reflecting = true
	sess := s.env.Session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reflectTimeout)
		defer cancel()
		return reflectionMsg{ScenarioID: res.Scenario.ID, Reflection: sess.Reflect(ctx, res)}
	}
}

func (s *SimulatorScreen) handleResultKey(msg tea.Msg) tea.Cmd {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch kmsg.String() {
	case "up", "k":
		s.scroll = max(s.scroll-1, 0)
	case "down", "j":
		s.scroll++
	case "n":
		return s.start(s.result.Scenario.Type)
	case "t":
		s.phase = PhasePickType
	}
	return nil
}
