package catalog

import "github.com/aieduca/biaslab/internal/datafile"

func datafileSchema(name string, required []string, props map[string]any) datafile.Schema {
	return datafile.Schema{
		Name: name,
		Item: map[string]any{
			"type":       "object",
			"required":   required,
			"properties": props,
		},
	}
}

func str() map[string]any {
	return map[string]any{"type": "string", "minLength": 1}
}

func strList() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string", "minLength": 1},
	}
}
