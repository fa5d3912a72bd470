package simulator

import (
	"github.com/aieduca/biaslab/internal/coach"
	"github.com/aieduca/biaslab/internal/scenario"
)

// typeChosenMsg is sent when the learner picks a scenario type.
type typeChosenMsg struct {
	Type scenario.Type
}

// reflectionMsg carries the coach's reply for the scenario with ID
// ScenarioID. Reflection is nil when the coach failed.
type reflectionMsg struct {
	ScenarioID int
	Reflection *coach.Reflection
}
