package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sliitlabs/neuroai/src/config"
	"github.com/sliitlabs/neuroai/src/llm"
)

// Registry holds the configured providers and tracks which one answers by
// default. Registration order decides the initial default, matching the
// order keys were discovered in.
type Registry struct {
	providers   map[string]llm.Provider
	order       []string
	defaultName string
}

// NewRegistry builds a registry from one or more providers. At least one is
// required.
func NewRegistry(list ...llm.Provider) (*Registry, error) {
	if len(list) == 0 {
		return nil, llm.ErrNoProviders
	}

	r := &Registry{providers: make(map[string]llm.Provider, len(list))}
	for _, p := range list {
		if _, dup := r.providers[p.Name()]; dup {
			continue
		}
		r.providers[p.Name()] = p
		r.order = append(r.order, p.Name())
	}
	r.defaultName = r.order[0]
	return r, nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (llm.Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (choices: %s)", llm.ErrUnknownProvider, name, strings.Join(r.Names(), ", "))
	}
	return p, nil
}

// Default returns the current default provider.
func (r *Registry) Default() llm.Provider {
	return r.providers[r.defaultName]
}

// SetDefault changes the default provider.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("%w: %q (choices: %s)", llm.ErrUnknownProvider, name, strings.Join(r.Names(), ", "))
	}
	r.defaultName = name
	return nil
}

// Names returns the registered provider names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Resolve maps a user-supplied provider selection to a registered name,
// case-insensitively. An empty selection resolves to the default.
func (r *Registry) Resolve(selection string) (string, error) {
	if selection == "" {
		return r.defaultName, nil
	}
	selection = strings.ToLower(selection)
	for name := range r.providers {
		if strings.ToLower(name) == selection {
			return name, nil
		}
	}
	sorted := r.Names()
	sort.Strings(sorted)
	return "", fmt.Errorf("%w: %q (choices: %s)", llm.ErrUnknownProvider, selection, strings.Join(sorted, ", "))
}

// FromConfig builds a provider for every section of the configuration whose
// API key is resolvable. Providers with no key are skipped quietly; having
// none at all is an error.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	type builder struct {
		name  string
		build func(Options) (llm.Provider, error)
	}
	builders := []builder{
		{"openai", func(o Options) (llm.Provider, error) { return NewOpenAI(o) }},
		{"anthropic", func(o Options) (llm.Provider, error) { return NewAnthropic(o) }},
		{"google", func(o Options) (llm.Provider, error) { return NewGemini(o) }},
	}

	var list []llm.Provider
	for _, b := range builders {
		pc := cfg.Providers[b.name]
		if pc.Disabled {
			continue
		}
		p, err := b.build(Options{
			Model:   pc.Model,
			APIKey:  pc.APIKey,
			BaseURL: pc.BaseURL,
			Logger:  logger,
		})
		if err != nil {
			// Missing key just means the provider is not configured.
			logger.Debug("provider not configured", "provider", b.name, "error", err)
			continue
		}
		list = append(list, p)
	}

	registry, err := NewRegistry(list...)
	if err != nil {
		return nil, err
	}
	if cfg.Agent.Provider != "" {
		name, err := registry.Resolve(cfg.Agent.Provider)
		if err != nil {
			return nil, err
		}
		if err := registry.SetDefault(name); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
