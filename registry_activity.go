package keep

import (
	"context"

	"github.com/goliatone/go-keep/pkg/activity"
)

// WithActivityHooks fans registry lifecycle events (register, stash,
// reassign, switch) out to the supplied hooks. Hooks are cloned and nil
// entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *registryConfig) {
		cfg.activityHooks = normalized
	}
}

// ActivityHooks returns a copy of the hooks configured on the registry.
func (r *Registry) ActivityHooks() activity.Hooks {
	return cloneActivityHooks(r.cfg.activityHooks)
}

// emit forwards a lifecycle event to the configured hooks. Hook errors are
// deliberately dropped: event delivery must never turn a successful cache
// operation into a failure.
func (r *Registry) emit(event activity.Event) {
	if !r.emitter.Enabled() {
		return
	}
	_ = r.emitter.Emit(context.Background(), event)
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.Hook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
