// Package scenario generates bias-awareness quiz scenarios and scores the
// learner's answers with a fixed additive rubric.
package scenario

import (
	"math/rand/v2"
	"slices"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aieduca/biaslab/internal/bias"
	"github.com/aieduca/biaslab/internal/datafile"
)

// TemplateFile is the base name of the scenario template file.
const TemplateFile = "bias_scenarios"

// Scenario ids are drawn from [minID, maxID].
const (
	minID = 1000
	maxID = 9999
)

// Engine generates scenarios from a template set and evaluates answers.
// It is safe for concurrent use.
type Engine struct {
	templates []Template
	logger    *zap.Logger

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used for template choice, ids and
// accuracy jitter.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTemplates sets the template list directly.
func WithTemplates(ts []Template) Option {
	return func(e *Engine) { e.templates = normalizeTemplates(ts) }
}

// NewEngine creates an Engine. Without WithTemplates it has no templates and
// every call to Generate uses the generic fallback.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := uint64(time.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return e
}

// LoadEngine creates an Engine from the template file in dataDir. A missing
// or invalid file is logged and leaves the engine with no templates.
func LoadEngine(dataDir string, opts ...Option) *Engine {
	e := NewEngine(opts...)
	path := datafile.Resolve(dataDir, TemplateFile)
	if path == "" {
		e.logger.Warn("scenario templates not found, using generic scenarios only",
			zap.String("dir", dataDir))
		return e
	}
	var ts []Template
	if err := datafile.Load(path, templateSchema, &ts); err != nil {
		e.logger.Warn("failed to load scenario templates", zap.String("path", path), zap.Error(err))
		return e
	}
	e.templates = normalizeTemplates(ts)
	e.logger.Debug("loaded scenario templates",
		zap.String("path", path), zap.Int("count", len(e.templates)))
	return e
}

// normalizeTemplates fills CorrectIdentification from BiasType when absent.
func normalizeTemplates(ts []Template) []Template {
	out := make([]Template, 0, len(ts))
	for _, t := range ts {
		if len(t.CorrectIdentification) == 0 {
			t.CorrectIdentification = []bias.Type{t.BiasType}
		} else {
			t.CorrectIdentification = slices.Clone(t.CorrectIdentification)
		}
		out = append(out, t)
	}
	return out
}

// Templates returns a copy of the loaded templates.
func (e *Engine) Templates() []Template {
	return normalizeTemplates(e.templates)
}

// Generate returns a scenario of type t. It picks uniformly among matching
// templates and falls back to a generic scenario when none match.
func (e *Engine) Generate(t Type) Scenario {
	var matching []Template
	for _, tmpl := range e.templates {
		if tmpl.Type == t {
			matching = append(matching, tmpl)
		}
	}

	e.mu.Lock()
	var tmpl Template
	if len(matching) > 0 {
		tmpl = matching[e.rng.IntN(len(matching))]
	} else {
		tmpl = genericTemplate(t)
	}
	id := minID + e.rng.IntN(maxID-minID+1)
	e.mu.Unlock()

	correct := slices.Clone(tmpl.CorrectIdentification)
	if len(correct) == 0 {
		correct = []bias.Type{tmpl.BiasType}
	}
	return Scenario{
		ID:                    id,
		Type:                  t,
		Context:               tmpl.Context,
		Situation:             tmpl.Situation,
		BiasType:              tmpl.BiasType,
		CorrectIdentification: correct,
	}
}

// BiasInfo returns the bias registry in display order.
func (e *Engine) BiasInfo() []bias.Info {
	return bias.Registry()
}

// Statistics summarizes the loaded templates. Ties for the most common type
// resolve to the type that appears first in the file.
func (e *Engine) Statistics() Statistics {
	stats := Statistics{
		TotalScenarios: len(e.templates),
		TypesAvailable: []Type{},
		MostCommonType: "N/A",
	}

	counts := make(map[Type]int)
	var order []Type
	for _, t := range e.templates {
		if counts[t.Type] == 0 {
			order = append(order, t.Type)
		}
		counts[t.Type]++
	}

	best := 0
	for _, t := range order {
		if counts[t] > best {
			best = counts[t]
			stats.MostCommonType = string(t)
		}
	}

	stats.TypesAvailable = append(stats.TypesAvailable, order...)
	sort.Slice(stats.TypesAvailable, func(i, j int) bool {
		return stats.TypesAvailable[i] < stats.TypesAvailable[j]
	})
	return stats
}

// jitter returns a uniform integer in [-5, 15].
func (e *Engine) jitter() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.IntN(21) - 5
}

var templateSchema = datafile.Schema{
	Name: "scenario-template",
	Item: map[string]any{
		"type":     "object",
		"required": []string{"type", "context", "situation", "bias_type"},
		"properties": map[string]any{
			"type":      map[string]any{"type": "string", "minLength": 1},
			"context":   map[string]any{"type": "string", "minLength": 1},
			"situation": map[string]any{"type": "string", "minLength": 1},
			"bias_type": map[string]any{"type": "string", "minLength": 1},
			"correct_identification": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "minLength": 1},
			},
		},
	},
}
