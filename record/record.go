// Package record provides deep-clone and field-level merge helpers for the
// property bags the registry stores. Values are opaque to the cache, so both
// helpers work structurally over arbitrary Go values.
package record

import "reflect"

// Bag is a property-name to value mapping, the shape every cached record and
// every payload takes at the registry boundary.
type Bag = map[string]any

// Clone returns a deep copy of value. Maps, slices, arrays, pointers, and
// structs are copied recursively; everything else is returned as-is.
func Clone(value any) any {
	cloned := cloneValue(reflect.ValueOf(value))
	if !cloned.IsValid() {
		return nil
	}
	return cloned.Interface()
}

// CloneBag deep-copies a bag. A nil input yields nil.
func CloneBag(bag Bag) Bag {
	if bag == nil {
		return nil
	}
	out := make(Bag, len(bag))
	for key, value := range bag {
		out[key] = Clone(value)
	}
	return out
}

// Merge composes strong over weak without ever dropping weak-side entries:
// keys present only in weak survive, keys present in strong win, and nested
// bags are merged recursively. Neither input is mutated.
func Merge(strong, weak Bag) Bag {
	if strong == nil && weak == nil {
		return nil
	}
	out := CloneBag(weak)
	if out == nil {
		out = make(Bag, len(strong))
	}
	for key, value := range strong {
		if nested, ok := value.(Bag); ok {
			if existing, ok := out[key].(Bag); ok {
				out[key] = Merge(nested, existing)
				continue
			}
		}
		out[key] = Clone(value)
	}
	return out
}

// MergeAll folds bags ordered strongest to weakest into a single bag.
func MergeAll(bags ...Bag) Bag {
	if len(bags) == 0 {
		return nil
	}
	merged := CloneBag(bags[len(bags)-1])
	for i := len(bags) - 2; i >= 0; i-- {
		merged = Merge(bags[i], merged)
	}
	return merged
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type().Elem())
		clone.Elem().Set(cloneValue(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := cloneValue(v.Elem())
		if !elem.IsValid() {
			return reflect.Zero(v.Type())
		}
		return elem.Convert(v.Type())
	case reflect.Struct:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			field := clone.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(cloneValue(v.Field(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		return reflect.ValueOf(v.Interface())
	}
}
