package keep

import (
	"time"

	"github.com/goliatone/go-keep/record"
)

const (
	// DefaultBranch is the branch every registry starts on and the one an
	// empty Switch argument returns to.
	DefaultBranch = "*"
	// DefaultKeyProp is the property used to derive instance identifiers
	// when a class registers without an explicit key property.
	DefaultKeyProp = "id"
)

// SourceLookup fetches a live payload by instance id for the StashByKey path.
type SourceLookup func(instanceID string) any

// ClassOption configures a class at registration time. The first successful
// registration wins for the life of the registry.
type ClassOption func(*classConfig)

type classConfig struct {
	keyProp string
	lookup  SourceLookup
}

// WithKeyProp overrides the property instance identifiers are derived from.
func WithKeyProp(name string) ClassOption {
	return func(cfg *classConfig) {
		if name != "" {
			cfg.keyProp = name
		}
	}
}

// WithSourceLookup registers a callback StashByKey uses to fetch the live
// payload when the caller does not supply one.
func WithSourceLookup(fn SourceLookup) ClassOption {
	return func(cfg *classConfig) {
		cfg.lookup = fn
	}
}

// classNode holds one registered class: its fixed tracked-property list and
// the lazily materialized branch pools.
type classNode struct {
	name     string
	props    []string // registration order, duplicates collapsed
	propSet  map[string]struct{}
	keyProp  string
	lookup   SourceLookup
	branches map[string]*branchPool
}

// branchPool is an isolated set of instance records for one class.
type branchPool struct {
	instances map[string]*instanceRecord
}

// instanceRecord is the persisted snapshot for one instance within one
// branch. It is updated in place on every stash, never replaced.
type instanceRecord struct {
	values    record.Bag
	revision  string
	stashedAt time.Time
}

func newClassNode(name string, props []string, cfg classConfig) *classNode {
	node := &classNode{
		name:     name,
		props:    make([]string, 0, len(props)),
		propSet:  make(map[string]struct{}, len(props)),
		keyProp:  cfg.keyProp,
		lookup:   cfg.lookup,
		branches: make(map[string]*branchPool),
	}
	if node.keyProp == "" {
		node.keyProp = DefaultKeyProp
	}
	for _, prop := range props {
		if prop == "" {
			continue
		}
		if _, seen := node.propSet[prop]; seen {
			continue
		}
		node.propSet[prop] = struct{}{}
		node.props = append(node.props, prop)
	}
	return node
}

// pool returns the branch pool, creating it on first use. Branch pools are
// only ever materialized here, from the stash path.
func (n *classNode) pool(branch string) *branchPool {
	p, ok := n.branches[branch]
	if !ok {
		p = &branchPool{instances: make(map[string]*instanceRecord)}
		n.branches[branch] = p
	}
	return p
}

// instance returns the record for id, creating an empty one on first stash.
func (p *branchPool) instance(id string) *instanceRecord {
	rec, ok := p.instances[id]
	if !ok {
		rec = &instanceRecord{values: record.Bag{}}
		p.instances[id] = rec
	}
	return rec
}

// find is the read-only counterpart used by reassign and the query paths.
func (n *classNode) find(branch, id string) (*instanceRecord, bool) {
	p, ok := n.branches[branch]
	if !ok {
		return nil, false
	}
	rec, ok := p.instances[id]
	return rec, ok
}
