// Package plugin assembles the swap actions and the provider factory into the
// descriptor a host loads, and decides which action handles a message when
// several claim it.
package plugin

import (
	"oneinch-agent/config"
	"oneinch-agent/pkg/actions"
	"oneinch-agent/pkg/parser"
	"oneinch-agent/pkg/provider"
)

// ProviderFactory builds the shared provider from host settings
type ProviderFactory func(settings config.Settings) (*provider.Provider, error)

// Descriptor is what the host registers
type Descriptor struct {
	Name        string
	Description string
	Actions     []actions.Action
	Providers   map[string]ProviderFactory
}

// New returns the 1inch plugin descriptor
func New() *Descriptor {
	return &Descriptor{
		Name:        provider.Name,
		Description: "Plugin for 1inch cross-chain swaps and order management",
		Actions:     actions.All(),
		Providers: map[string]ProviderFactory{
			provider.Name: func(settings config.Settings) (*provider.Provider, error) {
				return provider.Factory(settings)
			},
		},
	}
}

// Action looks an action up by name
func (d *Descriptor) Action(name string) (actions.Action, bool) {
	for _, a := range d.Actions {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// Relevant returns every action whose relevance check accepts text, in
// registration order
func (d *Descriptor) Relevant(text string) []actions.Action {
	var matched []actions.Action
	for _, a := range d.Actions {
		if a.Validate(text) {
			matched = append(matched, a)
		}
	}
	return matched
}

// Route picks the single action that handles text. Among the relevant
// actions the one whose longest matching keyword is longest wins; ties go to
// the earlier registered action, so read-only actions win over order creation.
func (d *Descriptor) Route(text string) (actions.Action, bool) {
	var (
		best    actions.Action
		bestLen = -1
	)
	for _, a := range d.Relevant(text) {
		keyword, _ := parser.MatchKeyword(text, a.Keywords()...)
		if len(keyword) > bestLen {
			best, bestLen = a, len(keyword)
		}
	}
	return best, best != nil
}
