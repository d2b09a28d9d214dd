// Package generator builds the generative backends used by the paid tier:
// provider clients, failover across providers, and instrumentation.
package generator

import (
	"fmt"
	"sync"

	"roofio/internal/config"
	"roofio/internal/port"
)

// ProviderFactory is a function that creates a Generator from a provider config.
type ProviderFactory func(cfg *config.GeneratorProviderConfig) (port.Generator, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{
		"static": func(_ *config.GeneratorProviderConfig) (port.Generator, error) {
			return NewStatic(""), nil
		},
	}
)

// RegisterProvider registers a generator provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// New creates a Generator from a provider config using the registered factory.
func New(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// Build creates every configured provider, wraps each with instrumentation and
// chains them behind a FailoverGenerator.
func Build(cfg *config.GeneratorConfig, circuits CircuitStore) (port.Generator, error) {
	var gens []port.Generator
	var names []string
	for _, pc := range cfg.Providers() {
		g, err := New(pc)
		if err != nil {
			return nil, err
		}
		gens = append(gens, NewInstrumented(g, pc.Provider, pc.DefaultModel))
		names = append(names, pc.Provider)
	}
	if len(gens) == 1 {
		return gens[0], nil
	}
	return NewFailoverGenerator(gens, names, circuits), nil
}
