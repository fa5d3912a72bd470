package catalog

import (
	"sort"
	"strings"
)

// Severity grades the real-world harm of a case.
type Severity string

const (
	SeverityLow    Severity = "Baixa"
	SeverityMedium Severity = "Média"
	SeverityHigh   Severity = "Alta"
)

// AllSeverities returns the severities from least to most severe.
func AllSeverities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh}
}

// Icon returns the traffic-light marker for the severity.
func (s Severity) Icon() string {
	switch s {
	case SeverityLow:
		return "🟢"
	case SeverityMedium:
		return "🟡"
	case SeverityHigh:
		return "🔴"
	default:
		return "⚪"
	}
}

// Any matches every value in a filter.
const Any = "Todos"

// CaseStudy is a documented real-world incident of AI bias.
type CaseStudy struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Category            string   `json:"category"`
	Severity            Severity `json:"severity"`
	Year                int      `json:"year"`
	Description         string   `json:"description"`
	BiasType            string   `json:"bias_type"`
	BiasExplanation     string   `json:"bias_explanation"`
	Impact              string   `json:"impact"`
	Solution            string   `json:"solution,omitempty"`
	Lessons             []string `json:"lessons"`
	DiscussionQuestions []string `json:"discussion_questions,omitempty"`
}

// CaseFilter selects cases by category and severity. Empty fields and Any
// match everything.
type CaseFilter struct {
	Category string
	Severity string
}

func matches(want, got string) bool {
	return want == "" || want == Any || strings.EqualFold(want, got)
}

// FilterCases returns the cases matching f, in catalog order.
func (c *Catalog) FilterCases(f CaseFilter) []CaseStudy {
	out := []CaseStudy{}
	for _, cs := range c.Cases {
		if matches(f.Category, cs.Category) && matches(f.Severity, string(cs.Severity)) {
			out = append(out, cs)
		}
	}
	return out
}

// Case returns the case with the given id.
func (c *Catalog) Case(id string) (CaseStudy, bool) {
	for _, cs := range c.Cases {
		if cs.ID == id {
			return cs, true
		}
	}
	return CaseStudy{}, false
}

// CaseCategories returns the distinct case categories, sorted.
func (c *Catalog) CaseCategories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, cs := range c.Cases {
		if !seen[cs.Category] {
			seen[cs.Category] = true
			out = append(out, cs.Category)
		}
	}
	sort.Strings(out)
	return out
}

// CategoryCount is the number of cases in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CountByCategory returns case counts per category, sorted by category.
func (c *Catalog) CountByCategory() []CategoryCount {
	counts := make(map[string]int)
	for _, cs := range c.Cases {
		counts[cs.Category]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for _, cat := range c.CaseCategories() {
		out = append(out, CategoryCount{Category: cat, Count: counts[cat]})
	}
	return out
}

var caseSchema = datafileSchema("real-case", []string{
	"title", "category", "severity", "year", "description",
	"bias_type", "bias_explanation", "impact", "lessons",
}, map[string]any{
	"id":               str(),
	"title":            str(),
	"category":         str(),
	"severity":         map[string]any{"enum": []string{"Baixa", "Média", "Alta"}},
	"year":             map[string]any{"type": "integer", "minimum": 1900},
	"description":      str(),
	"bias_type":        str(),
	"bias_explanation": str(),
	"impact":           str(),
	"solution":         map[string]any{"type": "string"},
	"lessons":          strList(),
	"discussion_questions": map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	},
})
