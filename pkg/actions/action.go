// Package actions implements the swap intents the agent can act on: quotes,
// order creation and order listings. Each action decides whether a message is
// relevant, extracts its parameters, calls the swap service through the
// provider and reports the outcome through the host callback.
package actions

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"oneinch-agent/pkg/extract"
	"oneinch-agent/pkg/parser"
	"oneinch-agent/pkg/provider"
)

// Message is an incoming user message
type Message struct {
	UserID string
	Text   string
}

// Response is what an action reports back to the host
type Response struct {
	Text    string         `json:"text"`
	Content map[string]any `json:"content"`
}

// Callback receives the action's response
type Callback func(Response)

// Runtime is the part of the host an action needs
type Runtime interface {
	// Provider returns the shared provider, building it on first use
	Provider(ctx context.Context) (*provider.Provider, error)
	// Extractor returns the schema-constrained extraction capability
	Extractor() extract.Extractor
	// Logger returns the host logger
	Logger() logrus.FieldLogger
}

// Example is one turn of a sample conversation
type Example struct {
	User   string `json:"user"`
	Text   string `json:"text"`
	Action string `json:"action,omitempty"`
}

// Action is a swap intent the host can route messages to
type Action interface {
	Name() string
	Similes() []string
	Description() string
	Examples() [][]Example
	// Keywords are the case-insensitive substrings that make a message relevant
	Keywords() []string
	// Schema describes the extracted parameters; nil when nothing is extracted
	Schema() *extract.Schema
	// Validate reports whether text is relevant to this action
	Validate(text string) bool
	// Handle runs the action and reports whether it succeeded. Failures are
	// reported through cb and never returned.
	Handle(ctx context.Context, rt Runtime, msg Message, cb Callback) bool
}

// definition carries the static metadata shared by every action
type definition struct {
	name        string
	similes     []string
	description string
	examples    [][]Example
	keywords    []string
	schema      *extract.Schema
}

func (d definition) Name() string            { return d.name }
func (d definition) Similes() []string       { return d.similes }
func (d definition) Description() string     { return d.description }
func (d definition) Examples() [][]Example   { return d.examples }
func (d definition) Keywords() []string      { return d.keywords }
func (d definition) Schema() *extract.Schema { return d.schema }

func (d definition) matchesKeyword(text string) bool {
	return parser.ContainsAny(text, d.keywords...)
}

// All returns the swap actions in registration order
func All() []Action {
	return []Action{
		NewGetQuote(),
		NewCreateOrder(),
		NewGetActiveOrders(),
		NewGetOrdersByMaker(),
	}
}

type step func(ctx context.Context, log logrus.FieldLogger, p *provider.Provider) (Response, error)

// run is the failure boundary shared by all actions: whatever goes wrong is
// logged, reported through cb as {error: message} and turned into false.
func run(ctx context.Context, rt Runtime, action, verb string, cb Callback, fn step) bool {
	log := rt.Logger().WithFields(logrus.Fields{
		"action":     action,
		"invocation": uuid.NewString(),
	})

	resp, err := func() (Response, error) {
		p, err := rt.Provider(ctx)
		if err != nil {
			return Response{}, err
		}
		return fn(ctx, log, p)
	}()
	if err != nil {
		log.WithError(err).Errorf("Error %s", verb)
		respond(cb, Response{
			Text:    "Error " + verb + ": " + err.Error(),
			Content: map[string]any{"error": err.Error()},
		})
		return false
	}

	log.Debug("action completed")
	respond(cb, resp)
	return true
}

func respond(cb Callback, resp Response) {
	if cb != nil {
		cb(resp)
	}
}

// extractParams runs the extraction under the configured extraction timeout
func extractParams(ctx context.Context, rt Runtime, p *provider.Provider, prompt string, schema *extract.Schema, out any) error {
	if timeout := p.Config().ExtractTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return rt.Extractor().Extract(ctx, prompt, schema, out)
}
