package keep

import "testing"

func TestSchemaDerivesFieldDescriptors(t *testing.T) {
	r := New()
	r.Register("player", []string{"hp", "stats", "tags"})
	r.Stash("player", Bag{
		"id": "p1",
		"hp": 42,
		"stats": map[string]any{
			"strength": 10,
			"agility":  7,
		},
		"tags": []any{"elite"},
	})

	doc, ok := r.Schema("player")
	if !ok {
		t.Fatalf("schema: unexpected failure")
	}
	if doc.Format != SchemaFormatDescriptors {
		t.Fatalf("unexpected format %q", doc.Format)
	}
	fields, ok := doc.Document.([]FieldDescriptor)
	if !ok {
		t.Fatalf("unexpected document type %T", doc.Document)
	}

	byPath := map[string]string{}
	for _, field := range fields {
		byPath[field.Path] = field.Type
	}
	if byPath["hp"] != "int" {
		t.Fatalf("expected int hp, got %+v", byPath)
	}
	if byPath["stats.strength"] != "int" || byPath["stats.agility"] != "int" {
		t.Fatalf("expected nested descriptors, got %+v", byPath)
	}
	if byPath["tags"] != "[]string" {
		t.Fatalf("expected slice descriptor, got %+v", byPath)
	}
}

func TestSchemaReportsUnsetProps(t *testing.T) {
	r := New()
	r.Register("player", []string{"hp", "mana"})
	r.Stash("player", Bag{"id": "p1", "hp": 42})

	doc, ok := r.Schema("player")
	if !ok {
		t.Fatalf("schema: unexpected failure")
	}
	fields := doc.Document.([]FieldDescriptor)
	byPath := map[string]string{}
	for _, field := range fields {
		byPath[field.Path] = field.Type
	}
	if byPath["mana"] != "unset" {
		t.Fatalf("expected untouched prop reported unset, got %+v", byPath)
	}
}

func TestSchemaUnknownClass(t *testing.T) {
	r := New()
	if _, ok := r.Schema("ghost"); ok {
		t.Fatalf("expected unknown class to fail")
	}
}
