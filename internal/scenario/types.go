package scenario

import (
	"fmt"
	"strings"

	"github.com/aieduca/biaslab/internal/bias"
)

// Type is the kind of AI system a scenario describes.
type Type string

const (
	CandidateSelection    Type = "candidate-selection"
	FacialRecognition     Type = "facial-recognition"
	ContentRecommendation Type = "content-recommendation"
	AutoGrading           Type = "auto-grading"
	AutoTranslation       Type = "auto-translation"
)

// AllTypes returns the known scenario types in display order.
func AllTypes() []Type {
	return []Type{
		CandidateSelection,
		FacialRecognition,
		ContentRecommendation,
		AutoGrading,
		AutoTranslation,
	}
}

// Label returns the learner-facing name of the scenario type.
func (t Type) Label() string {
	switch t {
	case CandidateSelection:
		return "Seleção de Candidatos"
	case FacialRecognition:
		return "Reconhecimento Facial"
	case ContentRecommendation:
		return "Recomendação de Conteúdo"
	case AutoGrading:
		return "Avaliação Automática"
	case AutoTranslation:
		return "Tradução Automática"
	default:
		return string(t)
	}
}

// ParseType resolves an id or a label (case-insensitive). Unknown values are
// returned as-is: the engine still generates a scenario for them.
func ParseType(s string) Type {
	s = strings.TrimSpace(s)
	for _, t := range AllTypes() {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Label()) {
			return t
		}
	}
	return Type(s)
}

// UnmarshalText accepts the id or the label.
func (t *Type) UnmarshalText(b []byte) error {
	*t = ParseType(string(b))
	return nil
}

// Scenario is a generated quiz prompt. It is not modified after Generate.
type Scenario struct {
	ID                    int         `json:"id"`
	Type                  Type        `json:"type"`
	Context               string      `json:"context"`
	Situation             string      `json:"situation"`
	BiasType              bias.Type   `json:"bias_type"`
	CorrectIdentification []bias.Type `json:"correct_identification"`
}

// Template is a scenario as stored in the data file.
type Template struct {
	Type                  Type        `json:"type"`
	Context               string      `json:"context"`
	Situation             string      `json:"situation"`
	BiasType              bias.Type   `json:"bias_type"`
	CorrectIdentification []bias.Type `json:"correct_identification,omitempty"`
}

// Answer is the learner's response to a scenario.
type Answer struct {
	Detected   bias.Detection `json:"bias_detected"`
	Identified []bias.Type    `json:"identified_bias_types"`
	Solution   string         `json:"solution"`
}

// Level is the coarse grade attached to an evaluation.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelExpert       Level = "expert"
)

// Label returns the learner-facing level name.
func (l Level) Label() string {
	switch l {
	case LevelBeginner:
		return "Iniciante"
	case LevelIntermediate:
		return "Intermediário"
	case LevelExpert:
		return "Especialista"
	default:
		return string(l)
	}
}

// LevelForScore maps a score to its level.
func LevelForScore(score int) Level {
	switch {
	case score >= 80:
		return LevelExpert
	case score >= 60:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

// Evaluation is the result of scoring one Answer.
type Evaluation struct {
	Score            int      `json:"score"`
	Accuracy         int      `json:"accuracy"`
	Level            Level    `json:"level"`
	Feedback         string   `json:"feedback"`
	DetailedFeedback []string `json:"detailed_feedback"`
	Explanation      string   `json:"explanation"`
	Recommendations  []string `json:"recommendations"`
}

// Statistics summarizes the loaded template set.
type Statistics struct {
	TotalScenarios int    `json:"total_scenarios"`
	TypesAvailable []Type `json:"types_available"`
	MostCommonType string `json:"most_common_type"`
}

// String implements fmt.Stringer for log output.
func (s Scenario) String() string {
	return fmt.Sprintf("#%d %s (%s)", s.ID, s.Type, s.BiasType)
}
