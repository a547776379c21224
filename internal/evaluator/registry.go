package evaluator

import (
	"sort"
	"sync"
)

// Registry maps evaluator-type names to Strategy instances and designates one
// primary strategy whose aggregate becomes the canonical assessment. It is an
// explicitly constructed instance, injected into whatever owns the assessment
// flow, so tests can use fresh registries.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	primary    string
}

// NewRegistry builds a registry pre-populated with the manual strategy as
// primary so the system is usable with zero configuration.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}
	r.Register(ManualName, NewManualStrategy())
	r.primary = ManualName
	return r
}

// Register binds a strategy to a name, silently replacing any previous
// binding for that name.
func (r *Registry) Register(name string, strategy Strategy) {
	if name == "" || strategy == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[name] = strategy
}

// SetPrimary designates the named strategy as primary. It reports false and
// leaves the prior primary unchanged when the name is not registered.
func (r *Registry) SetPrimary(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.strategies[name]; !ok {
		return false
	}
	r.primary = name
	return true
}

// Primary returns the name of the primary strategy.
func (r *Registry) Primary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.primary
}

// Resolve looks up a strategy by name.
func (r *Registry) Resolve(name string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	strategy, ok := r.strategies[name]
	return strategy, ok
}

// Names lists the registered evaluator-type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
