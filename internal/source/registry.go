package source

import "fmt"

// Registry maps source keys to their configuration, preserving
// registration order for result merging.
type Registry struct {
	byKey map[string]Config
	order []string
}

// NewRegistry builds the registry of all supported retailers.
func NewRegistry() *Registry {
	return NewRegistryWith(configs...)
}

// NewRegistryWith builds a registry from an explicit config set.
func NewRegistryWith(cfgs ...Config) *Registry {
	r := &Registry{byKey: make(map[string]Config, len(cfgs))}
	for _, cfg := range cfgs {
		r.byKey[cfg.Key] = cfg
		r.order = append(r.order, cfg.Key)
	}
	return r
}

// Get returns the configuration for a source key.
func (r *Registry) Get(key string) (Config, error) {
	cfg, ok := r.byKey[key]
	if !ok {
		return Config{}, fmt.Errorf("unknown source: %s", key)
	}
	return cfg, nil
}

// Keys returns all registered source keys in registration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Has reports whether a source key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.byKey[key]
	return ok
}
