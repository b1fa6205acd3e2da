// Package runtime is a minimal in-process agent host: it serves settings,
// builds the plugin provider once, supplies the extractor and routes each
// message to a single action.
package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"oneinch-agent/config"
	"oneinch-agent/pkg/actions"
	"oneinch-agent/pkg/extract"
	"oneinch-agent/pkg/plugin"
	"oneinch-agent/pkg/provider"
)

// Result is the outcome of processing one message
type Result struct {
	Action   string           `json:"action,omitempty"`
	Success  bool             `json:"success"`
	Response actions.Response `json:"response"`
}

// Runtime hosts one plugin
type Runtime struct {
	plugin    *plugin.Descriptor
	settings  config.Settings
	extractor extract.Extractor
	log       logrus.FieldLogger

	once     sync.Once
	provider *provider.Provider
	provErr  error
}

// Option configures a Runtime
type Option func(*Runtime)

// WithLogger sets the runtime logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.log = l
		}
	}
}

// WithProvider supplies a ready provider instead of building one from settings
func WithProvider(p *provider.Provider) Option {
	return func(r *Runtime) {
		if p != nil {
			r.once.Do(func() { r.provider = p })
		}
	}
}

// New creates a runtime for the given plugin
func New(p *plugin.Descriptor, settings config.Settings, extractor extract.Extractor, opts ...Option) *Runtime {
	r := &Runtime{
		plugin:    p,
		settings:  settings,
		extractor: extractor,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Provider implements actions.Runtime. The factory runs at most once; its
// error, if any, is returned on every call.
func (r *Runtime) Provider(ctx context.Context) (*provider.Provider, error) {
	r.once.Do(func() {
		factory, ok := r.plugin.Providers[provider.Name]
		if !ok {
			r.provErr = fmt.Errorf("plugin %s has no %s provider", r.plugin.Name, provider.Name)
			return
		}
		r.provider, r.provErr = factory(r.settings)
	})
	return r.provider, r.provErr
}

// Extractor implements actions.Runtime
func (r *Runtime) Extractor() extract.Extractor {
	return r.extractor
}

// Logger implements actions.Runtime
func (r *Runtime) Logger() logrus.FieldLogger {
	return r.log
}

// Process routes text to one action and runs it. ok is false when no action
// claims the message.
func (r *Runtime) Process(ctx context.Context, msg actions.Message) (Result, bool) {
	action, ok := r.plugin.Route(msg.Text)
	if !ok {
		return Result{}, false
	}
	return r.Run(ctx, action, msg), true
}

// Run executes a specific action
func (r *Runtime) Run(ctx context.Context, action actions.Action, msg actions.Message) Result {
	result := Result{Action: action.Name()}
	result.Success = action.Handle(ctx, r, msg, func(resp actions.Response) {
		result.Response = resp
	})
	return result
}
