package scenario

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/aieduca/biaslab/internal/bias"
)

// Rubric weights.
const (
	DetectionPoints      = 30
	IdentificationPoints = 40
	SolutionPoints       = 30

	// MinSolutionLength is the trimmed rune count a solution must exceed.
	MinSolutionLength = 20
)

// solutionKeywords earn a qualitative note but no points.
var solutionKeywords = []string{"dados", "treinamento", "diversidade", "teste", "monitorar"}

var (
	studyTips = []string{
		"Estude os diferentes tipos de vieses em IA e suas características",
		"Pratique com mais cenários para desenvolver intuição",
		"Foque em entender como dados de treinamento afetam os resultados",
	}
	correctiveTip   = "Revise os tipos de vieses e suas definições"
	advancementTips = []string{
		"Explore estudos de caso reais para aprofundar conhecimento",
		"Considere aprender sobre métricas de equidade em ML",
		"Participe de discussões sobre IA ética",
	}
)

// Evaluate scores ans against sc. The score is a pure function of the
// inputs; only Accuracy draws from the engine's random source.
func (e *Engine) Evaluate(sc Scenario, ans Answer) Evaluation {
	score := 0
	var details []string

	if ans.Detected.IndicatesBias() {
		score += DetectionPoints
		details = append(details, "✅ Identificou corretamente a presença de viés")
	} else {
		details = append(details, "❌ Não identificou a presença de viés no cenário")
	}

	matched := matchingTypes(ans.Identified, sc.CorrectIdentification)
	if len(matched) > 0 {
		score += IdentificationPoints
		labels := make([]string, len(matched))
		for i, t := range matched {
			labels[i] = t.Label()
		}
		details = append(details, "✅ Identificou corretamente: "+strings.Join(labels, ", "))
	} else if len(ans.Identified) > 0 {
		details = append(details, "⚠️ Tipos de viés identificados não correspondem ao cenário")
	}

	if solutionLongEnough(ans.Solution) {
		score += SolutionPoints
		if mentionsKeyword(ans.Solution) {
			details = append(details, "✅ Proposta de solução inclui elementos técnicos relevantes")
		} else {
			details = append(details, "⚠️ Solução pode ser mais específica em termos técnicos")
		}
	} else {
		details = append(details, "❌ Solução precisa ser mais detalhada")
	}

	level := LevelForScore(score)
	return Evaluation{
		Score:            score,
		Accuracy:         clamp(score+e.jitter(), 0, 100),
		Level:            level,
		Feedback:         feedbackFor(level),
		DetailedFeedback: details,
		Explanation:      Explain(sc),
		Recommendations:  recommendations(score, len(matched) > 0),
	}
}

// matchingTypes returns the identified types that are also correct, in the
// learner's order and without duplicates.
func matchingTypes(identified, correct []bias.Type) []bias.Type {
	var out []bias.Type
	seen := make(map[bias.Type]bool)
	for _, t := range identified {
		if seen[t] {
			continue
		}
		for _, c := range correct {
			if t == c {
				out = append(out, t)
				seen[t] = true
				break
			}
		}
	}
	return out
}

func solutionLongEnough(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) > MinSolutionLength
}

func mentionsKeyword(s string) bool {
	folded := cases.Fold().String(s)
	for _, kw := range solutionKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

func feedbackFor(l Level) string {
	switch l {
	case LevelExpert:
		return "Excelente análise! Você demonstra compreensão profunda sobre vieses em IA."
	case LevelIntermediate:
		return "Boa análise! Continue desenvolvendo suas habilidades de identificação de vieses."
	default:
		return "Continue praticando! A identificação de vieses requer experiência."
	}
}

func recommendations(score int, typeMatched bool) []string {
	var out []string
	if score < 60 {
		out = append(out, studyTips...)
	}
	if !typeMatched {
		out = append(out, correctiveTip)
	}
	if score >= 60 {
		out = append(out, advancementTips...)
	}
	return out
}

// Explain renders the markdown explanation for a scenario.
func Explain(sc Scenario) string {
	label := sc.BiasType.Label()
	if label == "" {
		label = "Viés não especificado"
	}
	definition := sc.BiasType.Definition()
	if definition == "" {
		definition = "Tipo de viés que pode causar discriminação injusta."
	}

	var b strings.Builder
	b.WriteString("**Análise do Cenário:**\n\n")
	fmt.Fprintf(&b, "Este cenário apresenta um caso de **%s**.\n\n", label)
	b.WriteString("**Por que isso é um problema?**\n")
	b.WriteString(definition + "\n\n")
	b.WriteString("**Como identificar:**\n")
	b.WriteString("- Analise se há disparidades nos resultados entre diferentes grupos\n")
	b.WriteString("- Verifique se os dados de treinamento são representativos\n")
	b.WriteString("- Considere o contexto histórico e social do problema\n\n")
	b.WriteString("**Impacto potencial:**\n")
	b.WriteString("Vieses como este podem perpetuar desigualdades, limitar oportunidades e afetar negativamente grupos já marginalizados.\n")
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
