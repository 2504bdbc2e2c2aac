package ai

import (
	"fmt"
	"strings"
	"sync"
)

type StrategyFactory func() Strategy

// Registry maps the configured provider name to a strategy. Selection
// happens once per request, from the freshly loaded settings.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]StrategyFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]StrategyFactory)}
}

func (r *Registry) Register(name string, f StrategyFactory) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

func (r *Registry) Get(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown ai provider: %s", name)
	}
	return f(), nil
}
