// Package extract turns free text into structured parameters through a
// schema-constrained language model call.
package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"oneinch-agent/config"
	apperrors "oneinch-agent/pkg/errors"
)

// Extractor fills out with parameters extracted for prompt. The result always
// conforms to schema; anything else is an extraction error.
type Extractor interface {
	Extract(ctx context.Context, prompt string, schema *Schema, out any) error
}

// Backend produces a raw JSON document for prompt, shaped after schema
type Backend interface {
	Complete(ctx context.Context, prompt string, schema *Schema) ([]byte, error)
}

// Func adapts a function returning any JSON-marshalable value to an Extractor
type Func func(ctx context.Context, prompt string, schema *Schema) (any, error)

// Extract implements Extractor
func (f Func) Extract(ctx context.Context, prompt string, schema *Schema, out any) error {
	value, err := f(ctx, prompt, schema)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindExtraction, "failed to extract parameters")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindExtraction, "failed to extract parameters")
	}
	return decode(schema, data, out)
}

// SchemaExtractor validates what a Backend returns
type SchemaExtractor struct {
	backend Backend
}

// New wraps a backend
func New(backend Backend) *SchemaExtractor {
	return &SchemaExtractor{backend: backend}
}

// Extract implements Extractor
func (e *SchemaExtractor) Extract(ctx context.Context, prompt string, schema *Schema, out any) error {
	data, err := e.backend.Complete(ctx, prompt, schema)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindExtraction, "failed to extract parameters")
	}
	return decode(schema, data, out)
}

func decode(schema *Schema, data []byte, out any) error {
	if schema == nil {
		return apperrors.New(apperrors.KindExtraction, "no schema given")
	}
	if err := schema.Decode(data, out); err != nil {
		return apperrors.Wrap(err, apperrors.KindExtraction, "failed to extract parameters")
	}
	return nil
}

// FromConfig builds the extractor selected by the configuration
func FromConfig(cfg config.LLMConfig) (*SchemaExtractor, error) {
	switch cfg.Provider {
	case "", "openai":
		backend, err := NewOpenAI(OpenAIConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model})
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	case "ollama":
		backend, err := NewOllama(cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	default:
		return nil, apperrors.Configuration("unknown %s %q", config.KeyLLMProvider, cfg.Provider)
	}
}

// systemPrompt is shared by every backend
func systemPrompt(schema *Schema) string {
	return fmt.Sprintf("You extract parameters for a cross-chain swap assistant. "+
		"Respond with a single JSON object and nothing else. "+
		"Omit optional fields the user did not mention. "+
		"Chain ids are numeric EVM chain ids (Ethereum 1, Gnosis 100, Polygon 137, Arbitrum 42161). "+
		"Use \"native\" as the token address for a chain's native token. "+
		"The object must match this JSON Schema: %s", schema.String())
}
