package keep

import (
	"fmt"

	"github.com/goliatone/go-keep/internal/bag"
	"github.com/goliatone/go-keep/pkg/activity"
	"github.com/goliatone/go-keep/record"
)

// OpOption configures a single stash/reassign call.
type OpOption func(*opConfig)

type opConfig struct {
	instanceID  string
	hasInstance bool
	payload     any
	hasPayload  bool
}

// WithInstanceID supplies the instance identifier explicitly instead of
// deriving it from the payload's key property.
func WithInstanceID(id string) OpOption {
	return func(cfg *opConfig) {
		cfg.instanceID = id
		cfg.hasInstance = true
	}
}

// WithPayload supplies the payload for StashByKey, bypassing the class's
// registered source lookup.
func WithPayload(payload any) OpOption {
	return func(cfg *opConfig) {
		cfg.payload = payload
		cfg.hasPayload = true
	}
}

func applyOpOptions(opts []OpOption) opConfig {
	cfg := opConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Stash captures the tracked properties of payload into the current branch.
// The write is a field-level upsert merge: properties present on the payload
// overwrite the stored value, properties absent from the payload keep
// whatever was stored before. The branch pool and instance record are
// created lazily on first use.
//
// Payload may be a Bag or any struct; structs cross the boundary as bags,
// with json tags deciding property names.
func (r *Registry) Stash(class string, payload any, opts ...OpOption) bool {
	return r.stash(OpStash, class, payload, applyOpOptions(opts))
}

// StashByKey stashes on behalf of a caller that does not hold the live
// object. The payload comes from WithPayload when supplied, otherwise from
// the class's registered source lookup. A class with neither is a reported
// failure, not an error.
func (r *Registry) StashByKey(class, instanceID string, opts ...OpOption) bool {
	start := r.begin()
	cfg := applyOpOptions(opts)
	cfg.instanceID = instanceID
	cfg.hasInstance = true

	if !cfg.hasPayload {
		r.mu.RLock()
		node, ok := r.classes[class]
		var lookup SourceLookup
		if ok {
			lookup = node.lookup
		}
		branch := r.branch
		r.mu.RUnlock()

		if !ok {
			return r.fail(start, OpStashByKey, class, branch, instanceID, ErrUnknownClass)
		}
		if lookup == nil {
			return r.fail(start, OpStashByKey, class, branch, instanceID, ErrNoSourceLookup)
		}
		cfg.payload = lookup(instanceID)
	}
	return r.stash(OpStashByKey, class, cfg.payload, cfg)
}

func (r *Registry) stash(op Op, class string, payload any, cfg opConfig) bool {
	start := r.begin()

	r.mu.Lock()

	branch := r.branch
	node, ok := r.classes[class]
	if !ok {
		r.mu.Unlock()
		return r.fail(start, op, class, branch, cfg.instanceID, ErrUnknownClass)
	}

	values, err := r.cfg.codec.Encode(bag.Context{Class: class, Instance: cfg.instanceID}, payload)
	if err != nil {
		r.mu.Unlock()
		return r.fail(start, op, class, branch, cfg.instanceID, fmt.Errorf("keep: encode payload: %w", err))
	}

	instanceID, ok := resolveInstanceID(cfg, values, node.keyProp)
	if !ok {
		r.mu.Unlock()
		return r.fail(start, op, class, branch, "", ErrMissingIdentifier)
	}

	// Check, lazily create, then mutate — one atomic step under the lock.
	rec := node.pool(branch).instance(instanceID)
	for _, prop := range node.props {
		value, present := values[prop]
		if !present {
			continue
		}
		rec.values[prop] = record.Clone(value)
	}
	rec.revision = r.cfg.revisionID()
	rec.stashedAt = r.cfg.clock()
	revision := rec.revision
	r.mu.Unlock()

	r.ok(start, op, class, branch, instanceID)
	r.emit(activity.BuildStashEvent(activity.EventInput{
		Class:    class,
		Branch:   branch,
		Instance: instanceID,
		Revision: revision,
	}))
	return true
}

// Reassign restores the stored values for the matching record onto target.
// It is purely read-only against the registry and purely additive to the
// target: tracked properties with no stored entry are left untouched. Any
// miss — unknown class, unresolvable id, absent branch, absent record —
// returns false with target unmodified.
//
// Target may be a Bag or a struct pointer.
func (r *Registry) Reassign(class string, target any, opts ...OpOption) bool {
	start := r.begin()
	cfg := applyOpOptions(opts)

	r.mu.RLock()
	branch := r.branch
	node, ok := r.classes[class]
	if !ok {
		r.mu.RUnlock()
		return r.fail(start, OpReassign, class, branch, cfg.instanceID, ErrUnknownClass)
	}

	instanceID := cfg.instanceID
	if cfg.hasInstance && instanceID == "" {
		r.mu.RUnlock()
		return r.fail(start, OpReassign, class, branch, "", ErrMissingIdentifier)
	}
	if !cfg.hasInstance {
		value, present, err := r.cfg.codec.Lookup(bag.Context{Class: class}, target, node.keyProp)
		if err != nil || !present || !definedIdentifier(value) {
			r.mu.RUnlock()
			return r.fail(start, OpReassign, class, branch, "", ErrMissingIdentifier)
		}
		instanceID = identifierString(value)
	}

	rec, ok := node.find(branch, instanceID)
	if !ok {
		r.mu.RUnlock()
		return r.fail(start, OpReassign, class, branch, instanceID, ErrCacheMiss)
	}
	values := record.CloneBag(rec.values)
	revision := rec.revision
	r.mu.RUnlock()

	if err := r.cfg.codec.Apply(bag.Context{Class: class, Instance: instanceID}, values, target); err != nil {
		return r.fail(start, OpReassign, class, branch, instanceID, err)
	}

	r.ok(start, OpReassign, class, branch, instanceID)
	r.emit(activity.BuildReassignEvent(activity.EventInput{
		Class:    class,
		Branch:   branch,
		Instance: instanceID,
		Revision: revision,
	}))
	return true
}

// resolveInstanceID prefers the explicit override, then the key property on
// the encoded payload. Nil and empty-string key values do not count as
// resolved identifiers.
func resolveInstanceID(cfg opConfig, values record.Bag, keyProp string) (string, bool) {
	if cfg.hasInstance {
		if cfg.instanceID == "" {
			return "", false
		}
		return cfg.instanceID, true
	}
	value, present := values[keyProp]
	if !present || !definedIdentifier(value) {
		return "", false
	}
	return identifierString(value), true
}

func definedIdentifier(value any) bool {
	if value == nil {
		return false
	}
	if s, ok := value.(string); ok {
		return s != ""
	}
	return true
}

// identifierString canonicalizes key-property values: instance ids are
// opaque strings even when the key property holds a number.
func identifierString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
