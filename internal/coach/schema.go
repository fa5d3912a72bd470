package coach

import "github.com/aieduca/biaslab/internal/llm"

// ReflectionSchema constrains the model reply to a summary plus two
// lists. List length is capped after decoding since strict structured
// output modes reject maxItems.
var ReflectionSchema = &llm.Schema{
	Name:        "bias-reflection",
	Description: "Short formative reflection on a learner's answer to an algorithmic bias scenario.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "Two or three sentences in Brazilian Portuguese about the answer.",
			},
			"strengths": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"improvements": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []string{"summary", "strengths", "improvements"},
		"additionalProperties": false,
	},
}
