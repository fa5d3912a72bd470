// Package datafile loads the read-only content files (scenario templates,
// case studies, lesson plans, resources) shipped in the data directory.
//
// A file is either a bare list of items or an envelope of the form
// {"version": "1.2.0", "items": [...]}. Both JSON and YAML are accepted;
// YAML is normalized to JSON before validation so a single JSON Schema
// covers both encodings.
package datafile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedMajor is the only envelope major version this build understands.
const SupportedMajor = "v1"

// Format is the encoding of a data file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatOf infers the encoding from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Schema describes the shape of a single item in a data file.
type Schema struct {
	Name string
	Item map[string]any
}

type envelope struct {
	Version string          `json:"version"`
	Items   json.RawMessage `json:"items"`
}

// Resolve returns the first existing file among base+".json", base+".yaml"
// and base+".yml" inside dir, or "" when none exists.
func Resolve(dir, base string) string {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		p := filepath.Join(dir, base+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads path and decodes its items into out, which must be a pointer
// to a slice.
func Load(path string, schema Schema, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := Decode(data, FormatOf(path), schema, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Decode validates data against schema and decodes the items into out.
func Decode(data []byte, format Format, schema Schema, out any) error {
	raw, err := normalize(data, format)
	if err != nil {
		return err
	}

	items := raw
	if trimmed := strings.TrimSpace(string(raw)); strings.HasPrefix(trimmed, "{") {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("parse envelope: %w", err)
		}
		if err := checkVersion(env.Version); err != nil {
			return err
		}
		if len(env.Items) == 0 {
			return fmt.Errorf("envelope has no items")
		}
		items = env.Items
	}

	var parsed any
	if err := json.Unmarshal(items, &parsed); err != nil {
		return fmt.Errorf("parse items: %w", err)
	}
	compiled, err := compiledSchema(schema)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if err := json.Unmarshal(items, out); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}
	return nil
}

// normalize converts YAML input to JSON bytes.
func normalize(data []byte, format Format) ([]byte, error) {
	if format == FormatJSON {
		if !json.Valid(data) {
			return nil, fmt.Errorf("invalid JSON")
		}
		return data, nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("convert YAML: %w", err)
	}
	return out, nil
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	sv := v
	if !strings.HasPrefix(sv, "v") {
		sv = "v" + sv
	}
	if !semver.IsValid(sv) {
		return fmt.Errorf("invalid version %q", v)
	}
	if major := semver.Major(sv); major != SupportedMajor {
		return fmt.Errorf("unsupported version %q (want %s.x)", v, SupportedMajor)
	}
	return nil
}

var schemaCache sync.Map // map[string]*jsonschema.Schema

func compiledSchema(schema Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def := map[string]any{
		"type":  "array",
		"items": schema.Item,
	}
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
