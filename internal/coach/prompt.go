package coach

import (
	"fmt"
	"strings"

	"github.com/aieduca/biaslab/internal/scenario"
)

const systemPrompt = `Você é um tutor de ética em inteligência artificial para professores da educação básica. Um participante analisou um cenário de viés algorítmico e recebeu uma nota automática. Escreva uma reflexão curta e formativa em português do Brasil. Não atribua nota e não contradiga a nota recebida.`

func buildUserMessage(sc scenario.Scenario, ans scenario.Answer, ev scenario.Evaluation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Cenário: %s\n", sc.Type.Label())
	fmt.Fprintf(&b, "Contexto: %s\n", sc.Context)
	fmt.Fprintf(&b, "Situação: %s\n", sc.Situation)
	fmt.Fprintf(&b, "Viés presente: %s\n", sc.BiasType.Label())

	b.WriteString("\nResposta do participante:\n")
	fmt.Fprintf(&b, "Detecção: %s\n", ans.Detected.Label())
	if len(ans.Identified) == 0 {
		b.WriteString("Tipos identificados: nenhum\n")
	} else {
		labels := make([]string, len(ans.Identified))
		for i, t := range ans.Identified {
			labels[i] = t.Label()
		}
		fmt.Fprintf(&b, "Tipos identificados: %s\n", strings.Join(labels, ", "))
	}
	solution := strings.TrimSpace(ans.Solution)
	if solution == "" {
		solution = "(sem proposta)"
	}
	fmt.Fprintf(&b, "Proposta de solução: %s\n", solution)

	fmt.Fprintf(&b, "\nNota automática: %d/100 (%s)\n", ev.Score, ev.Level.Label())

	b.WriteString(`
Instruções:
1. Resuma em 2-3 frases o que a resposta revela sobre a compreensão do participante.
2. Liste até 3 pontos fortes concretos.
3. Liste até 3 melhorias concretas, ligadas ao viés presente no cenário.
4. Use linguagem simples e direta, sem jargão estatístico.`)

	return b.String()
}
