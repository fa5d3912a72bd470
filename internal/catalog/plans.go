package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// Activity is one step of a lesson plan.
type Activity struct {
	Name         string   `json:"name"`
	Duration     string   `json:"duration"`
	Description  string   `json:"description"`
	Materials    []string `json:"materials,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
}

// LessonPlan is a lesson-plan template as stored in the data file.
type LessonPlan struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Objective         string     `json:"objective"`
	SuggestedDuration int        `json:"suggested_duration"`
	TargetGrade       string     `json:"target_grade"`
	Description       string     `json:"description"`
	Materials         []string   `json:"materials"`
	Skills            []string   `json:"skills"`
	Activities        []Activity `json:"activities"`
	Assessment        string     `json:"assessment,omitempty"`
}

// Allowed customization ranges.
const (
	MinDuration  = 30
	MaxDuration  = 120
	MinClassSize = 5
	MaxClassSize = 50

	// Lessons up to ShortLesson minutes keep only the first ShortActivities.
	ShortLesson     = 45
	ShortActivities = 3
	// Lessons of at least LongLesson minutes get the extended debate.
	LongLesson = 90
)

// GradeLevels lists the selectable grade levels.
var GradeLevels = []string{
	"Ensino Fundamental I (1º-5º ano)",
	"Ensino Fundamental II (6º-9º ano)",
	"Ensino Médio",
	"Ensino Superior",
}

// FocusAreas lists the selectable focus areas.
var FocusAreas = []string{
	"Identificação de Vieses",
	"Impactos Sociais",
	"Soluções Práticas",
	"Casos Reais",
	"Desenvolvimento Crítico",
}

var extendedDebate = Activity{
	Name:        "Atividade Adicional - Debate Estendido",
	Duration:    "20 min",
	Description: "Debate aprofundado sobre as implicações éticas dos vieses em IA",
}

// Customization adapts a template to a specific class.
type Customization struct {
	Duration   int    `json:"duration"`
	GradeLevel string `json:"grade_level"`
	ClassSize  int    `json:"class_size"`
	FocusArea  string `json:"focus_area"`
}

// DefaultCustomization returns the customization suggested by tmpl.
func DefaultCustomization(tmpl LessonPlan) Customization {
	d := tmpl.SuggestedDuration
	if d == 0 {
		d = 60
	}
	return Customization{
		Duration:   min(max(d, MinDuration), MaxDuration),
		GradeLevel: GradeLevels[2],
		ClassSize:  25,
		FocusArea:  FocusAreas[0],
	}
}

// Validate checks the customization ranges.
func (c Customization) Validate() error {
	if c.Duration < MinDuration || c.Duration > MaxDuration {
		return fmt.Errorf("duration %d out of range [%d, %d]", c.Duration, MinDuration, MaxDuration)
	}
	if c.ClassSize < MinClassSize || c.ClassSize > MaxClassSize {
		return fmt.Errorf("class size %d out of range [%d, %d]", c.ClassSize, MinClassSize, MaxClassSize)
	}
	if strings.TrimSpace(c.GradeLevel) == "" {
		return fmt.Errorf("grade level is required")
	}
	if strings.TrimSpace(c.FocusArea) == "" {
		return fmt.Errorf("focus area is required")
	}
	return nil
}

// Plan is a lesson plan customized for a class.
type Plan struct {
	LessonPlan
	Customization
}

// GeneratePlan applies c to tmpl. tmpl is not modified.
func GeneratePlan(tmpl LessonPlan, c Customization) (Plan, error) {
	if err := c.Validate(); err != nil {
		return Plan{}, err
	}

	lp := tmpl
	lp.Materials = slices.Clone(tmpl.Materials)
	lp.Skills = slices.Clone(tmpl.Skills)
	lp.Activities = slices.Clone(tmpl.Activities)

	switch {
	case c.Duration <= ShortLesson:
		if len(lp.Activities) > ShortActivities {
			lp.Activities = lp.Activities[:ShortActivities]
		}
	case c.Duration >= LongLesson:
		lp.Activities = append(lp.Activities, extendedDebate)
	}
	return Plan{LessonPlan: lp, Customization: c}, nil
}

// Plan returns the lesson-plan template with the given id.
func (c *Catalog) Plan(id string) (LessonPlan, bool) {
	for _, p := range c.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return LessonPlan{}, false
}

// Text renders the plan in its plain-text download format.
func (p Plan) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PLANO DE AULA: %s\n\n", p.Title)
	fmt.Fprintf(&b, "DURAÇÃO: %d minutos\n", p.Duration)
	fmt.Fprintf(&b, "NÍVEL: %s\n", p.GradeLevel)
	fmt.Fprintf(&b, "TAMANHO DA TURMA: %d alunos\n", p.ClassSize)
	fmt.Fprintf(&b, "FOCO: %s\n\n", p.FocusArea)
	fmt.Fprintf(&b, "OBJETIVO:\n%s\n\n", p.Objective)
	fmt.Fprintf(&b, "DESCRIÇÃO:\n%s\n\n", p.Description)

	b.WriteString("MATERIAIS:\n")
	for _, m := range p.Materials {
		fmt.Fprintf(&b, "• %s\n", m)
	}
	b.WriteString("\nCOMPETÊNCIAS:\n")
	for _, s := range p.Skills {
		fmt.Fprintf(&b, "• %s\n", s)
	}
	b.WriteString("\nATIVIDADES:\n")
	for i, a := range p.Activities {
		fmt.Fprintf(&b, "%d. %s (%s) - %s\n", i+1, a.Name, a.Duration, a.Description)
	}
	if p.Assessment != "" {
		fmt.Fprintf(&b, "\nAVALIAÇÃO:\n%s\n", p.Assessment)
	}
	return b.String()
}

var planSchema = datafileSchema("lesson-plan", []string{
	"title", "objective", "suggested_duration", "target_grade",
	"description", "materials", "skills", "activities",
}, map[string]any{
	"id":                 str(),
	"title":              str(),
	"objective":          str(),
	"suggested_duration": map[string]any{"type": "integer", "minimum": 1},
	"target_grade":       str(),
	"description":        str(),
	"materials":          strList(),
	"skills":             strList(),
	"activities": map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type":     "object",
			"required": []string{"name", "duration", "description"},
			"properties": map[string]any{
				"name":         str(),
				"duration":     str(),
				"description":  str(),
				"materials":    strList(),
				"instructions": strList(),
			},
		},
	},
	"assessment": map[string]any{"type": "string"},
})
