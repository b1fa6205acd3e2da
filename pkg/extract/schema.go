package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON Schema describing the parameters of one action
type Schema struct {
	name     string
	doc      json.RawMessage
	compiled *jsonschema.Schema
}

// CompileSchema compiles a JSON Schema document
func CompileSchema(name, doc string) (*Schema, error) {
	compiled, err := jsonschema.CompileString(name+".json", doc)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(doc)); err != nil {
		return nil, fmt.Errorf("compact schema %s: %w", name, err)
	}
	return &Schema{name: name, doc: compact.Bytes(), compiled: compiled}, nil
}

// MustCompileSchema is CompileSchema for package-level schemas
func MustCompileSchema(name, doc string) *Schema {
	s, err := CompileSchema(name, doc)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name
func (s *Schema) Name() string { return s.name }

// Raw returns the compact schema document
func (s *Schema) Raw() json.RawMessage { return s.doc }

// String returns the schema document as text
func (s *Schema) String() string { return string(s.doc) }

// Decode validates data against the schema and unmarshals it into out
func (s *Schema) Decode(data []byte, out any) error {
	data = trimFences(data)

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("output is not valid JSON: %w", err)
	}
	if err := s.compiled.Validate(doc); err != nil {
		return fmt.Errorf("output does not match %s schema: %w", s.name, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s parameters: %w", s.name, err)
	}
	return nil
}

// trimFences strips a markdown code fence some models wrap JSON in
func trimFences(data []byte) []byte {
	text := strings.TrimSpace(string(data))
	if !strings.HasPrefix(text, "```") {
		return []byte(text)
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return []byte(strings.TrimSpace(text))
}
