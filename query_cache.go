package keep

// ProgramCache stores compiled expression programs keyed by expression
// strings, shared across evaluator backends.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a compiled-program cache on the registry.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *registryConfig) {
		cfg.programCache = cache
	}
}
