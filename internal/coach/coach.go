// Package coach adds an optional model-written reflection to an
// evaluation. The reflection never influences the score.
package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aieduca/biaslab/internal/llm"
	"github.com/aieduca/biaslab/internal/scenario"
)

// MaxItems caps the strengths and improvements lists.
const MaxItems = 3

// Reflection is the model's formative feedback on one answer.
type Reflection struct {
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Coach requests reflections from an LLM provider.
type Coach struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// New returns a coach. A nil provider or a disabled config yields a coach
// whose Reflect always returns nil.
func New(provider llm.Provider, cfg Config, logger *zap.Logger) *Coach {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coach{provider: provider, cfg: cfg, logger: logger.Named("coach")}
}

// Enabled reports whether Reflect will call a provider.
func (c *Coach) Enabled() bool {
	return c != nil && c.provider != nil && c.cfg.Enabled
}

// Reflect asks the model for a reflection on ans. Any failure is logged
// and reported as nil so callers can carry on with the plain evaluation.
func (c *Coach) Reflect(ctx context.Context, sc scenario.Scenario, ans scenario.Answer, ev scenario.Evaluation) *Reflection {
	if !c.Enabled() {
		return nil
	}
	r, err := c.generate(ctx, sc, ans, ev)
	if err != nil {
		c.logger.Warn("reflection failed", zap.Int("scenario", sc.ID), zap.Error(err))
		return nil
	}
	return r
}

func (c *Coach) generate(ctx context.Context, sc scenario.Scenario, ans scenario.Answer, ev scenario.Evaluation) (*Reflection, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeCoach)
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req := llm.UserPrompt(systemPrompt, buildUserMessage(sc, ans, ev), ReflectionSchema, c.cfg.MaxTokens)
	req.Temperature = c.cfg.Temperature

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("reflection: %w", err)
	}

	var out Reflection
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse reflection: %w", err)
	}
	out.Summary = strings.TrimSpace(out.Summary)
	if out.Summary == "" {
		return nil, fmt.Errorf("reflection has empty summary")
	}
	out.Strengths = tidy(out.Strengths)
	out.Improvements = tidy(out.Improvements)
	return &out, nil
}

// tidy drops blank entries and caps the list at MaxItems.
func tidy(items []string) []string {
	out := make([]string, 0, min(len(items), MaxItems))
	for _, it := range items {
		if it = strings.TrimSpace(it); it == "" {
			continue
		}
		out = append(out, it)
		if len(out) == MaxItems {
			break
		}
	}
	return out
}

// Markdown renders the reflection for terminal display.
func (r *Reflection) Markdown() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(r.Summary)
	b.WriteString("\n")
	writeList(&b, "Pontos fortes", r.Strengths)
	writeList(&b, "Para melhorar", r.Improvements)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n**%s**\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}
