package keep

import (
	"fmt"
	"sort"
	"strings"
)

// SchemaFormat identifies the representation a schema document encodes.
type SchemaFormat string

// SchemaFormatDescriptors represents the flattened field descriptors.
const SchemaFormatDescriptors SchemaFormat = "descriptors"

// SchemaDocument encapsulates a derived schema output alongside its format
// identifier. Document is JSON-serialisable.
type SchemaDocument struct {
	Format   SchemaFormat
	Document any
}

// FieldDescriptor describes a property path and the inferred type.
type FieldDescriptor struct {
	Path string
	Type string
}

// Schema derives flattened field descriptors for class from the records held
// in the current branch. Tracked properties no record carries yet appear with
// type "unset". The second return is false when the class is unknown.
func (r *Registry) Schema(class string) (SchemaDocument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, ok := r.classes[class]
	if !ok {
		return SchemaDocument{}, false
	}

	seen := map[string]string{}
	if pool, ok := node.branches[r.branch]; ok {
		for _, rec := range pool.instances {
			for _, field := range deriveFieldDescriptors(map[string]any(rec.values), "") {
				if field.Path == "" {
					continue
				}
				if _, exists := seen[field.Path]; !exists {
					seen[field.Path] = field.Type
				}
			}
		}
	}

	descriptors := make([]FieldDescriptor, 0, len(node.props))
	covered := map[string]struct{}{}
	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		descriptors = append(descriptors, FieldDescriptor{Path: path, Type: seen[path]})
		covered[rootSegment(path)] = struct{}{}
	}
	for _, prop := range node.props {
		if _, ok := covered[prop]; ok {
			continue
		}
		descriptors = append(descriptors, FieldDescriptor{Path: prop, Type: "unset"})
	}

	return SchemaDocument{
		Format:   SchemaFormatDescriptors,
		Document: descriptors,
	}, true
}

func deriveFieldDescriptors(value any, prefix string) []FieldDescriptor {
	if value == nil {
		return nil
	}

	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			return []FieldDescriptor{{
				Path: prefix,
				Type: "map[string]any",
			}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			nextPrefix := joinPath(prefix, key)
			fields = append(fields, deriveFieldDescriptors(typed[key], nextPrefix)...)
		}
		return fields
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = typeName(typed[0])
		}
		return []FieldDescriptor{{
			Path: prefix,
			Type: "[]" + elementType,
		}}
	default:
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{
			Path: prefix,
			Type: typeName(typed),
		}}
	}
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}

func rootSegment(path string) string {
	if idx := strings.IndexByte(path, '.'); idx >= 0 {
		return path[:idx]
	}
	return path
}
