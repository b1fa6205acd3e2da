package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

const (
	defaultOllamaHost  = "http://localhost:11434"
	defaultOllamaModel = "llama3.2"
)

// Ollama asks a local Ollama server for a JSON object constrained by a schema
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama creates an Ollama backend
func NewOllama(host, model string) (*Ollama, error) {
	if host == "" {
		host = defaultOllamaHost
	}
	if model == "" {
		model = defaultOllamaModel
	}

	u, err := url.Parse(strings.TrimSuffix(host, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid Ollama host %q", host)
	}

	return &Ollama{
		client: api.NewClient(u, http.DefaultClient),
		model:  model,
	}, nil
}

// Complete implements Backend
func (o *Ollama) Complete(ctx context.Context, prompt string, schema *Schema) ([]byte, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  o.model,
		System: systemPrompt(schema),
		Prompt: prompt,
		Format: schema.Raw(),
		Stream: &stream,
		Options: map[string]any{
			"temperature": 0,
		},
	}

	var out strings.Builder
	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama generate failed: %w", err)
	}

	if strings.TrimSpace(out.String()) == "" {
		return nil, fmt.Errorf("ollama returned an empty response")
	}
	return []byte(out.String()), nil
}
