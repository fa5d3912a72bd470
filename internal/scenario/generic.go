package scenario

import "github.com/aieduca/biaslab/internal/bias"

// genericTemplates back Generate when no loaded template matches.
var genericTemplates = map[Type]Template{
	CandidateSelection: {
		Context:   "Uma empresa usa IA para analisar currículos",
		Situation: "O sistema mostra padrões discriminatórios nas aprovações",
		BiasType:  bias.Representation,
	},
	FacialRecognition: {
		Context:   "Sistema de reconhecimento facial em ambiente educacional",
		Situation: "O sistema tem dificuldade com certas características físicas",
		BiasType:  bias.Racial,
	},
	ContentRecommendation: {
		Context:   "Plataforma educacional recomenda cursos",
		Situation: "As recomendações seguem padrões estereotípicos",
		BiasType:  bias.Gender,
	},
	AutoGrading: {
		Context:   "Sistema de correção automática de textos",
		Situation: "Certas expressões culturais recebem notas menores",
		BiasType:  bias.Cultural,
	},
	AutoTranslation: {
		Context:   "Sistema de tradução em escola internacional",
		Situation: "Profissões são traduzidas com estereótipos de gênero",
		BiasType:  bias.Gender,
	},
}

var defaultTemplate = Template{
	Context:   "Sistema de IA em ambiente educacional",
	Situation: "O sistema apresenta comportamentos discriminatórios",
	BiasType:  bias.Representation,
}

func genericTemplate(t Type) Template {
	tmpl, ok := genericTemplates[t]
	if !ok {
		tmpl = defaultTemplate
	}
	tmpl.Type = t
	return tmpl
}
