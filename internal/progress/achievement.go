package progress

import "math"

// AchievementID identifies an achievement.
type AchievementID string

const (
	FirstSimulation AchievementID = "first_simulation"
	CaseExplorer    AchievementID = "case_explorer"
	PlanCreator     AchievementID = "plan_creator"
	ResourceHunter  AchievementID = "resource_hunter"
	BiasExpert      AchievementID = "bias_expert"
	Educator        AchievementID = "educator"
	FrequentLearner AchievementID = "frequent_learner"
)

// Kind selects how an achievement is evaluated.
type Kind int

const (
	// KindCounter unlocks when a single counter reaches Target.
	KindCounter Kind = iota
	// KindScoredCounter additionally requires MinAverage average score.
	KindScoredCounter
	// KindEducator requires both plans and cases thresholds.
	KindEducator
)

// Thresholds for the educator achievement.
const (
	educatorPlans = 3
	educatorCases = 10
)

// Achievement is a static registry entry.
type Achievement struct {
	ID          AchievementID `json:"id"`
	Icon        string        `json:"icon"`
	Name        string        `json:"name"`
	Description string        `json:"description"`

	Kind       Kind     `json:"-"`
	Counter    Activity `json:"-"`
	Target     int      `json:"-"`
	MinAverage float64  `json:"-"`
}

// AchievementProgress reports how close a locked achievement is.
type AchievementProgress struct {
	Current    int     `json:"current"`
	Target     int     `json:"target"`
	Percentage float64 `json:"percentage"`
}

// LockedAchievement pairs a locked achievement with its progress.
type LockedAchievement struct {
	Achievement
	Progress AchievementProgress `json:"progress"`
}

// registry is evaluated in order; unlocks are appended in this order.
var registry = []Achievement{
	{ID: FirstSimulation, Icon: "🎯", Name: "Primeiro Simulador",
		Description: "Completou sua primeira simulação de viés",
		Kind:        KindCounter, Counter: SimulationsCompleted, Target: 1},
	{ID: CaseExplorer, Icon: "📚", Name: "Explorador de Casos",
		Description: "Estudou 5 casos reais de vieses em IA",
		Kind:        KindCounter, Counter: CasesStudied, Target: 5},
	{ID: PlanCreator, Icon: "📝", Name: "Criador de Planos",
		Description: "Criou seu primeiro plano de aula",
		Kind:        KindCounter, Counter: PlansCreated, Target: 1},
	{ID: ResourceHunter, Icon: "📖", Name: "Caçador de Recursos",
		Description: "Acessou 10 recursos educacionais",
		Kind:        KindCounter, Counter: ResourcesAccessed, Target: 10},
	{ID: BiasExpert, Icon: "🏆", Name: "Especialista em Vieses",
		Description: "Completou 10 simulações com pontuação média acima de 80",
		Kind:        KindScoredCounter, Counter: SimulationsCompleted, Target: 10, MinAverage: 80},
	{ID: Educator, Icon: "🎓", Name: "Educador Consciente",
		Description: "Criou 3 planos de aula e estudou 10 casos",
		Kind:        KindEducator, Target: educatorPlans},
	{ID: FrequentLearner, Icon: "📅", Name: "Aprendiz Constante",
		Description: "Realizou atividades em 7 sessões diferentes",
		Kind:        KindCounter, Counter: Sessions, Target: 7},
}

// Registry returns all achievements in evaluation order.
func Registry() []Achievement {
	out := make([]Achievement, len(registry))
	copy(out, registry)
	return out
}

// LookupAchievement returns the registry entry for id.
func LookupAchievement(id AchievementID) (Achievement, bool) {
	for _, a := range registry {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Title returns the icon and name.
func (a Achievement) Title() string {
	if a.Icon == "" {
		return a.Name
	}
	return a.Icon + " " + a.Name
}

// Unlocked reports whether s satisfies the achievement's condition.
func (a Achievement) Unlocked(s State) bool {
	switch a.Kind {
	case KindCounter:
		return s.Count(a.Counter) >= a.Target
	case KindScoredCounter:
		return s.Count(a.Counter) >= a.Target && s.AverageScore() >= a.MinAverage
	case KindEducator:
		return s.PlansCreated >= educatorPlans && s.CasesStudied >= educatorCases
	default:
		return false
	}
}

// Progress reports the achievement's progress indicator for s.
func (a Achievement) Progress(s State) AchievementProgress {
	switch a.Kind {
	case KindEducator:
		ratio := math.Min(
			float64(s.PlansCreated)/educatorPlans,
			float64(s.CasesStudied)/educatorCases,
		)
		return AchievementProgress{
			Current:    min(s.PlansCreated, s.CasesStudied),
			Target:     educatorPlans,
			Percentage: percentage(ratio),
		}
	default:
		current := s.Count(a.Counter)
		return AchievementProgress{
			Current:    current,
			Target:     a.Target,
			Percentage: percentage(float64(current) / float64(a.Target)),
		}
	}
}

func percentage(ratio float64) float64 {
	return math.Max(0, math.Min(100, ratio*100))
}
