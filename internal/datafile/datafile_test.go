package datafile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

var testSchema = Schema{
	Name: "datafile-test-item",
	Item: map[string]any{
		"type":     "object",
		"required": []string{"name"},
		"properties": map[string]any{
			"name":  map[string]any{"type": "string", "minLength": 1},
			"count": map[string]any{"type": "integer"},
		},
	},
}

func TestDecodeBareList(t *testing.T) {
	var got []item
	err := Decode([]byte(`[{"name":"a","count":1},{"name":"b"}]`), FormatJSON, testSchema, &got)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[0].Count != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestDecodeEnvelope(t *testing.T) {
	var got []item
	err := Decode([]byte(`{"version":"1.3.0","items":[{"name":"a"}]}`), FormatJSON, testSchema, &got)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"invalid json", `[{"name":`, "invalid JSON"},
		{"schema", `[{"count":2}]`, "schema validation failed"},
		{"major version", `{"version":"2.0.0","items":[{"name":"a"}]}`, "unsupported version"},
		{"bad version", `{"version":"latest","items":[{"name":"a"}]}`, "invalid version"},
		{"no items", `{"version":"1.0.0"}`, "no items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []item
			err := Decode([]byte(tt.in), FormatJSON, testSchema, &got)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "things.yaml")
	content := "version: \"1.0.0\"\nitems:\n  - name: x\n    count: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := Resolve(dir, "things"); got != path {
		t.Fatalf("Resolve = %q, want %q", got, path)
	}

	var got []item
	if err := Load(path, testSchema, &got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Count != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestResolveMissing(t *testing.T) {
	if got := Resolve(t.TempDir(), "nothing"); got != "" {
		t.Errorf("Resolve = %q, want empty", got)
	}
}
