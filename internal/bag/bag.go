// Package bag converts arbitrary payloads to and from the property-bag shape
// the registry stores. The cache itself never reads struct fields directly;
// everything crosses this boundary as a map of named values.
package bag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/goliatone/go-keep/record"
)

// Context identifies the record a conversion belongs to, for hook authors and
// error messages.
type Context struct {
	Class    string
	Instance string
}

// PreHook can normalise or reshape a bag before it is handed to the caller.
// Returning a nil bag keeps the current one.
type PreHook func(Context, record.Bag) (record.Bag, error)

// Option configures a Codec.
type Option func(*Codec)

// WithPreHook appends a hook applied after encoding and before Apply.
func WithPreHook(hook PreHook) Option {
	return func(c *Codec) {
		if hook != nil {
			c.preHooks = append(c.preHooks, hook)
		}
	}
}

// WithUseNumber preserves numeric precision by decoding numbers as
// json.Number instead of float64.
func WithUseNumber() Option {
	return func(c *Codec) {
		c.useNumber = true
	}
}

// Codec converts payloads into bags and applies bags back onto targets. The
// zero value is usable.
type Codec struct {
	preHooks  []PreHook
	useNumber bool
}

func New(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Encode converts payload into a bag. Maps pass through (deep cloned so the
// caller keeps ownership); structs and struct pointers round-trip through
// JSON, so json tags decide property names and presence.
func (c *Codec) Encode(ctx Context, payload any) (record.Bag, error) {
	if payload == nil {
		return nil, fmt.Errorf("bag: payload is nil for %s", describe(ctx))
	}

	var out record.Bag
	if m, ok := payload.(map[string]any); ok {
		out = record.CloneBag(m)
	} else {
		buffer, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("bag: marshal payload for %s: %w", describe(ctx), err)
		}
		decoder := json.NewDecoder(bytes.NewReader(buffer))
		if c.useNumber {
			decoder.UseNumber()
		}
		if err := decoder.Decode(&out); err != nil {
			return nil, fmt.Errorf("bag: payload for %s is not an object: %w", describe(ctx), err)
		}
	}

	for _, hook := range c.preHooks {
		next, err := hook(ctx, out)
		if err != nil {
			return nil, fmt.Errorf("bag: pre-hook for %s failed: %w", describe(ctx), err)
		}
		if next != nil {
			out = next
		}
	}
	return out, nil
}

// Apply writes the bag's values onto target. Map targets receive the entries
// directly; struct pointers are patched via JSON decoding, which leaves
// fields absent from the bag untouched.
func (c *Codec) Apply(ctx Context, values record.Bag, target any) error {
	if target == nil {
		return fmt.Errorf("bag: target is nil for %s", describe(ctx))
	}
	if len(values) == 0 {
		return nil
	}

	if m, ok := target.(map[string]any); ok {
		if m == nil {
			return fmt.Errorf("bag: target for %s is a nil map", describe(ctx))
		}
		for key, value := range values {
			m[key] = record.Clone(value)
		}
		return nil
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("bag: target for %s must be a map or non-nil pointer, got %T", describe(ctx), target)
	}

	buffer, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("bag: marshal values for %s: %w", describe(ctx), err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	if c.useNumber {
		decoder.UseNumber()
	}
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("bag: apply values for %s: %w", describe(ctx), err)
	}
	return nil
}

// Lookup reads one property from payload without a full conversion when the
// payload is already a bag.
func (c *Codec) Lookup(ctx Context, payload any, prop string) (any, bool, error) {
	if m, ok := payload.(map[string]any); ok {
		value, present := m[prop]
		return value, present, nil
	}
	encoded, err := c.Encode(ctx, payload)
	if err != nil {
		return nil, false, err
	}
	value, present := encoded[prop]
	return value, present, nil
}

func describe(ctx Context) string {
	switch {
	case ctx.Class == "" && ctx.Instance == "":
		return "record"
	case ctx.Instance == "":
		return fmt.Sprintf("class %q", ctx.Class)
	default:
		return fmt.Sprintf("%s/%s", ctx.Class, ctx.Instance)
	}
}
