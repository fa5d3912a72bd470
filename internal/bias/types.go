package bias

import (
	"fmt"
	"strings"
)

// Type identifies one of the bias patterns the learner is asked to recognize.
type Type string

const (
	Confirmation   Type = "confirmation"
	Representation Type = "representation"
	Selection      Type = "selection"
	Cultural       Type = "cultural"
	Gender         Type = "gender"
	Racial         Type = "racial"
	Socioeconomic  Type = "socioeconomic"
)

// Info is a registry entry for a bias type.
type Info struct {
	Type       Type   `json:"id"`
	Label      string `json:"label"`
	Definition string `json:"definition"`
}

var registry = []Info{
	{Confirmation, "Viés de Confirmação", "Tendência de buscar informações que confirmem crenças preexistentes"},
	{Representation, "Viés de Representação", "Dados de treinamento não representam adequadamente a população"},
	{Selection, "Viés de Seleção", "Distorções na forma como os dados foram coletados"},
	{Cultural, "Viés Cultural", "Preconceitos baseados em normas culturais específicas"},
	{Gender, "Viés de Gênero", "Discriminação baseada em gênero"},
	{Racial, "Viés Racial", "Discriminação baseada em raça ou etnia"},
	{Socioeconomic, "Viés Socioeconômico", "Discriminação baseada em classe social"},
}

// All returns every bias type in display order.
func All() []Type {
	out := make([]Type, len(registry))
	for i, info := range registry {
		out[i] = info.Type
	}
	return out
}

// Registry returns a copy of the bias registry in display order.
func Registry() []Info {
	out := make([]Info, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the registry entry for t.
func Lookup(t Type) (Info, bool) {
	for _, info := range registry {
		if info.Type == t {
			return info, true
		}
	}
	return Info{}, false
}

// Label returns the learner-facing label, or the raw id for unknown types.
func (t Type) Label() string {
	if info, ok := Lookup(t); ok {
		return info.Label
	}
	return string(t)
}

// Definition returns the one-sentence definition of the bias type.
func (t Type) Definition() string {
	if info, ok := Lookup(t); ok {
		return info.Definition
	}
	return ""
}

// Known reports whether t is part of the registry.
func (t Type) Known() bool {
	_, ok := Lookup(t)
	return ok
}

// Parse resolves an id or a label (case-insensitive) to a Type.
func Parse(s string) (Type, error) {
	s = strings.TrimSpace(s)
	for _, info := range registry {
		if strings.EqualFold(s, string(info.Type)) || strings.EqualFold(s, info.Label) {
			return info.Type, nil
		}
	}
	return "", fmt.Errorf("unknown bias type %q", s)
}

// ParseList resolves a comma-separated list of ids or labels.
// Empty items are skipped.
func ParseList(s string) ([]Type, error) {
	var out []Type
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := Parse(part)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// UnmarshalText accepts either the stable id or the label. Unknown values
// are kept verbatim so data files with new types still load.
func (t *Type) UnmarshalText(b []byte) error {
	if parsed, err := Parse(string(b)); err == nil {
		*t = parsed
		return nil
	}
	*t = Type(strings.TrimSpace(string(b)))
	return nil
}
