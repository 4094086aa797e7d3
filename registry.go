// Package keep is an ephemeral, in-memory cache that preserves a fixed set
// of property values across destroy/recreate cycles of an object. Callers
// register a class once, stash live objects into the cache, and reassign the
// stored values onto a freshly created object later. Branches partition the
// cache into isolated instance pools that can be switched between at will.
//
// Every operation returns a boolean: failures (duplicate registration, an
// unknown class, an unresolvable identifier, a cache miss) are expected
// steady-state outcomes reported through the configured Logger, never
// panics or aborts.
package keep

import (
	"errors"
	"sort"
	"sync"

	"github.com/goliatone/go-keep/pkg/activity"
)

var (
	// ErrDuplicateRegistration indicates the class id is already registered.
	ErrDuplicateRegistration = errors.New("keep: duplicate class registration")
	// ErrInvalidRegistration indicates an empty class id or tracked-property list.
	ErrInvalidRegistration = errors.New("keep: invalid class registration")
	// ErrUnknownClass indicates an operation against an unregistered class id.
	ErrUnknownClass = errors.New("keep: unknown class")
	// ErrMissingIdentifier indicates no instance id could be resolved.
	ErrMissingIdentifier = errors.New("keep: missing instance identifier")
	// ErrCacheMiss indicates no record exists for the requested
	// (branch, class, instance) triple.
	ErrCacheMiss = errors.New("keep: cache miss")
	// ErrNoSourceLookup indicates StashByKey had neither a payload nor a
	// registered source lookup to call.
	ErrNoSourceLookup = errors.New("keep: no source lookup registered")
)

// Registry is the store. It owns the class → branch → instance → property
// hierarchy plus the current-branch pointer that scopes stash and reassign.
//
// A single lock guards every operation end to end, so each check-then-act
// sequence (existence check, lazy create, mutate) is atomic per call.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*classNode
	branch  string

	cfg     registryConfig
	emitter *activity.Emitter
}

// New constructs an empty Registry on the default branch. The registry's
// lifetime is owned by the caller; there is no package-level instance.
func New(opts ...Option) *Registry {
	cfg := applyOptions(opts)
	return &Registry{
		classes: make(map[string]*classNode),
		branch:  DefaultBranch,
		cfg:     cfg,
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: len(cfg.activityHooks) > 0,
		}),
	}
}

// Register records a class schema: the properties to persist, the key
// property instance ids derive from, and an optional source lookup. It
// returns true only when a new class node was created; a duplicate class id
// or an empty property list is a reported failure, and the first
// registration's configuration wins for the life of the registry.
func (r *Registry) Register(class string, props []string, opts ...ClassOption) bool {
	start := r.begin()
	if class == "" || len(props) == 0 {
		return r.fail(start, OpRegister, class, "", "", ErrInvalidRegistration)
	}

	cfg := classConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	r.mu.Lock()
	branch := r.branch
	if _, exists := r.classes[class]; exists {
		r.mu.Unlock()
		return r.fail(start, OpRegister, class, branch, "", ErrDuplicateRegistration)
	}
	node := newClassNode(class, props, cfg)
	if len(node.props) == 0 {
		r.mu.Unlock()
		return r.fail(start, OpRegister, class, branch, "", ErrInvalidRegistration)
	}
	r.classes[class] = node
	r.mu.Unlock()

	// Logger and hook callbacks run outside the lock so they may call back
	// into the registry.
	r.ok(start, OpRegister, class, branch, "")
	r.emit(activity.BuildRegisterEvent(activity.EventInput{
		Class: class,
		Props: append([]string(nil), node.props...),
	}))
	return true
}

// Switch sets the current branch for all subsequent stash and reassign
// calls. An empty branch id returns to DefaultBranch. Switching never
// creates branch pools: switching to a fresh branch and immediately
// reassigning is a guaranteed, intentional miss.
func (r *Registry) Switch(branch string) bool {
	start := r.begin()
	if branch == "" {
		branch = DefaultBranch
	}

	r.mu.Lock()
	if r.branch == branch {
		r.mu.Unlock()
		r.ok(start, OpSwitch, "", branch, "")
		return true
	}
	from := r.branch
	r.branch = branch
	r.mu.Unlock()

	r.ok(start, OpSwitch, "", branch, "")
	r.emit(activity.BuildSwitchEvent(activity.EventInput{
		Branch:   branch,
		Metadata: map[string]any{"from": from},
	}))
	return true
}

// CurrentBranch reports the branch stash and reassign currently operate on.
func (r *Registry) CurrentBranch() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.branch
}

// Classes returns the registered class ids in lexicographic order.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// TrackedProps returns the tracked-property list for class in registration
// order, or ok=false when the class is not registered.
func (r *Registry) TrackedProps(class string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	node, ok := r.classes[class]
	if !ok {
		return nil, false
	}
	return append([]string(nil), node.props...), true
}

// Branches returns the branch ids that hold records for class, sorted.
// Branch pools only exist once something was stashed into them.
func (r *Registry) Branches(class string) []string {
	r.mu.RLock()
	node, ok := r.classes[class]
	if !ok {
		r.mu.RUnlock()
		return nil
	}
	branches := make([]string, 0, len(node.branches))
	for name := range node.branches {
		branches = append(branches, name)
	}
	r.mu.RUnlock()
	sort.Strings(branches)
	return branches
}
