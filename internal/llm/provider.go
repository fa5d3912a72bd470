// Package llm talks to hosted language models for the optional reflection
// coach. Every provider returns JSON validated against a caller schema.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a structured reply for a single request.
type Provider interface {
	// Generate sends the request and returns the model output. When
	// req.Schema is set the content has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID names the model this provider sends requests to.
	ModelID() string
}

// Request is one prompt sent to a provider.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema the reply must satisfy.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response carries the model output and accounting.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

// Usage counts tokens for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, prompt string, schema *Schema, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		Schema:    schema,
		MaxTokens: maxTokens,
	}
}

// resolveModel maps a short alias to a provider model ID. Unknown names
// pass through unchanged so full IDs work too.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
