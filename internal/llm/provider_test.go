package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
)

const reflectionJSON = `{"summary":"Boa análise","strengths":["detecção"],"improvements":["solução"]}`

func reflectionSchema() *Schema {
	return &Schema{
		Name:        "test-reflection",
		Description: "coach reflection",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"summary":      map[string]any{"type": "string"},
				"strengths":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"improvements": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required":             []string{"summary", "strengths", "improvements"},
			"additionalProperties": false,
		},
	}
}

func testServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAnthropic(t *testing.T, status int, body any) *AnthropicProvider {
	t.Helper()
	srv := testServer(t, status, body)
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-haiku"},
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	return p
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func TestAnthropicProvider_Generate(t *testing.T) {
	p := newTestAnthropic(t, http.StatusOK, anthropicMessage(reflectionJSON, "end_turn"))
	resp, err := p.Generate(context.Background(), UserPrompt("coach", "reflect", reflectionSchema(), 256))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.TotalTokens != 80 {
		t.Errorf("total tokens = %d, want 80", resp.Usage.TotalTokens)
	}
	if resp.StopReason != "end" {
		t.Errorf("stop reason = %q, want end", resp.StopReason)
	}
	if p.ModelID() != "claude-haiku-4-5" {
		t.Errorf("model = %q", p.ModelID())
	}
}

func TestAnthropicProvider_Truncated(t *testing.T) {
	p := newTestAnthropic(t, http.StatusOK, anthropicMessage(`{"summary":"Bo`, "max_tokens"))
	_, err := p.Generate(context.Background(), UserPrompt("", "reflect", reflectionSchema(), 8))
	var truncated *ErrMaxTokensExceeded
	if !errors.As(err, &truncated) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
}

func TestAnthropicProvider_RateLimit(t *testing.T) {
	p := newTestAnthropic(t, http.StatusTooManyRequests, map[string]any{
		"type":  "error",
		"error": map[string]any{"type": "rate_limit_error", "message": "slow down"},
	})
	_, err := p.Generate(context.Background(), UserPrompt("", "reflect", nil, 16))
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
	}
}

func TestAnthropicProvider_ServerError(t *testing.T) {
	p := newTestAnthropic(t, http.StatusInternalServerError, map[string]any{
		"type":  "error",
		"error": map[string]any{"type": "api_error", "message": "boom"},
	})
	_, err := p.Generate(context.Background(), UserPrompt("", "reflect", nil, 16))
	var unavailable *ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
	}
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1760000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	srv := testServer(t, http.StatusOK, chatCompletion(reflectionJSON, "stop"))
	p := newChatProvider("test-key", srv.URL+"/v1", "gpt-4o-mini", nil)

	resp, err := p.Generate(context.Background(), UserPrompt("coach", "reflect", reflectionSchema(), 256))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", resp.Model)
	}
}

func TestOpenAIProvider_SchemaMismatch(t *testing.T) {
	srv := testServer(t, http.StatusOK, chatCompletion(`{"summary":42}`, "stop"))
	p := newChatProvider("test-key", srv.URL+"/v1", "gpt-4o-mini", nil)

	_, err := p.Generate(context.Background(), UserPrompt("", "reflect", reflectionSchema(), 256))
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_RateLimit(t *testing.T) {
	srv := testServer(t, http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{"message": "slow down", "type": "rate_limit", "code": "rate_limit_exceeded"},
	})
	p := newChatProvider("test-key", srv.URL+"/v1", "gpt-4o-mini", nil)

	_, err := p.Generate(context.Background(), UserPrompt("", "reflect", nil, 16))
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
	}
}

func TestOpenRouterProvider(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-haiku-4.5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "anthropic/claude-haiku-4.5" {
		t.Errorf("model = %q, want pass-through", p.ModelID())
	}
	if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "x"}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		name    string
		aliases map[string]string
		want    string
	}{
		{"claude-haiku", anthropicAliases, "claude-haiku-4-5"},
		{"gpt-mini", openaiAliases, "gpt-4.1-mini"},
		{"gemini-flash", geminiAliases, "gemini-2.5-flash"},
		{"custom-model-id", geminiAliases, "custom-model-id"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.name, tt.aliases); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(reflectionSchema().Definition)
	if s.Type != "OBJECT" {
		t.Fatalf("type = %q, want OBJECT", s.Type)
	}
	if len(s.Required) != 3 {
		t.Errorf("required = %v", s.Required)
	}
	strengths := s.Properties["strengths"]
	if strengths == nil || strengths.Items == nil || strengths.Items.Type != "STRING" {
		t.Errorf("strengths = %+v", strengths)
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("expected pricing for gpt-4o-mini")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("cost = %v, want 0.75", got)
	}
	if LookupCost("unknown") != nil {
		t.Error("expected nil for unknown model")
	}
}
