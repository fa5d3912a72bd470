package llm

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aieduca/biaslab/internal/store"
)

func TestRecording_AppendsEvents(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "llm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(reflectionJSON), Usage: Usage{InputTokens: 12, OutputTokens: 7}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithRecording(mock, ProviderMock, s.EventRepo(), nil)
	ctx := WithPurpose(context.Background(), PurposeCoach)

	_, err = p.Generate(ctx, UserPrompt("system text", "user text", reflectionSchema(), 64))
	require.NoError(t, err)
	_, err = p.Generate(ctx, UserPrompt("", "again", nil, 64))
	require.Error(t, err)

	events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 2)

	byOK := map[bool]store.LLMEvent{}
	for _, ev := range events {
		byOK[ev.Success] = ev
	}
	ok := byOK[true]
	assert.Equal(t, PurposeCoach, ok.Purpose)
	assert.Equal(t, ProviderMock, ok.Provider)
	assert.Equal(t, 12, ok.InputTokens)
	assert.Equal(t, 7, ok.OutputTokens)
	assert.Contains(t, ok.RequestBody, "[system]\nsystem text")
	assert.Contains(t, ok.RequestBody, "[schema: test-reflection]")
	assert.JSONEq(t, reflectionJSON, ok.ResponseBody)

	failed := byOK[false]
	assert.Contains(t, failed.ErrorMessage, "down")
}

func TestRecording_LogsWithoutRepo(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithRecording(mock, ProviderMock, nil, zap.New(core))

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)

	entries := logs.FilterMessage("llm request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, PurposeUnknown, fields["purpose"])
	assert.Equal(t, "mock", fields["model"])
}

func TestTranscript(t *testing.T) {
	got := transcript(Request{
		System:   "be brief",
		Messages: []Message{{Role: RoleUser, Content: "hi"}, {Role: RoleAssistant, Content: "hello"}},
	})
	want := "[system]\nbe brief\n\n[user]\nhi\n\n[assistant]\nhello\n\n"
	if got != want {
		t.Fatalf("transcript = %q, want %q", got, want)
	}
	if strings.Contains(got, "[schema") {
		t.Fatal("unexpected schema section")
	}
}
