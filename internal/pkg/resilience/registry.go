package resilience

import "sync"

// Registry hands out one Executor per operation key, creating it on first
// use. Circuit state lives in the executor, so every saga invocation that
// asks for the same key shares the same breaker and sliding window. The
// mutex only guards the map; calls through different executors never
// contend with each other.
type Registry struct {
	defaults  Config
	overrides map[string]Config
	transient Classifier

	mu    sync.Mutex
	execs map[string]*Executor
}

// NewRegistry builds a registry with per-key config overrides on top of the
// given defaults.
func NewRegistry(defaults Config, overrides map[string]Config, transient Classifier) *Registry {
	return &Registry{
		defaults:  defaults,
		overrides: overrides,
		transient: transient,
		execs:     make(map[string]*Executor),
	}
}

// For returns the executor for key, creating it if needed.
func (r *Registry) For(key string) *Executor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.execs[key]; ok {
		return e
	}
	cfg := r.defaults
	if o, ok := r.overrides[key]; ok {
		cfg = o
	}
	e := NewExecutor(key, cfg, r.transient)
	r.execs[key] = e
	return e
}
