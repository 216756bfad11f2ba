package config

import "sync/atomic"

// Runtime holds the current configuration for hot reload. Reads are lock-free;
// callers that already hold a *Config keep using it while new callers see the
// stored replacement.
//
//	runtime := config.NewRuntime(initial)
//	watcher.OnReload(func(cfg *config.Config) error {
//	    runtime.Store(cfg)
//	    return nil
//	})
type Runtime struct {
	ptr atomic.Pointer[Config]
}

// NewRuntime creates a Runtime holding initial.
func NewRuntime(initial *Config) *Runtime {
	r := &Runtime{}
	r.ptr.Store(initial)
	return r
}

// Get returns the current configuration.
func (r *Runtime) Get() *Config {
	return r.ptr.Load()
}

// Store replaces the current configuration.
func (r *Runtime) Store(cfg *Config) {
	r.ptr.Store(cfg)
}

var _ RuntimeConfig = (*Runtime)(nil)
