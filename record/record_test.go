package record

import "testing"

func TestCloneBagDetachesNestedValues(t *testing.T) {
	original := Bag{
		"name":   "widget",
		"labels": map[string]string{"env": "prod"},
		"tags":   []any{"a", "b"},
	}

	cloned := CloneBag(original)
	cloned["labels"].(map[string]string)["env"] = "qa"
	cloned["tags"].([]any)[0] = "z"

	if original["labels"].(map[string]string)["env"] != "prod" {
		t.Fatalf("expected original labels untouched, got %+v", original["labels"])
	}
	if original["tags"].([]any)[0] != "a" {
		t.Fatalf("expected original tags untouched, got %+v", original["tags"])
	}
}

func TestClonePointerAndStruct(t *testing.T) {
	type inner struct {
		Count int
	}
	value := &inner{Count: 3}

	cloned, ok := Clone(value).(*inner)
	if !ok {
		t.Fatalf("expected *inner, got %T", Clone(value))
	}
	cloned.Count = 9
	if value.Count != 3 {
		t.Fatalf("expected original pointer target untouched, got %d", value.Count)
	}

	if got := Clone(nil); got != nil {
		t.Fatalf("expected nil clone for nil input, got %v", got)
	}
}

func TestMergeKeepsWeakEntries(t *testing.T) {
	strong := Bag{"a": 1}
	weak := Bag{"a": 0, "b": 2}

	merged := Merge(strong, weak)

	if merged["a"] != 1 {
		t.Fatalf("expected strong value to win, got %v", merged["a"])
	}
	if merged["b"] != 2 {
		t.Fatalf("expected weak-only value to survive, got %v", merged["b"])
	}
	if strong["b"] != nil || weak["a"] != 0 {
		t.Fatalf("expected inputs unmodified: strong=%+v weak=%+v", strong, weak)
	}
}

func TestMergeRecursesIntoNestedBags(t *testing.T) {
	strong := Bag{"cfg": Bag{"x": 1}}
	weak := Bag{"cfg": Bag{"x": 0, "y": 2}}

	merged := Merge(strong, weak)
	nested := merged["cfg"].(Bag)
	if nested["x"] != 1 || nested["y"] != 2 {
		t.Fatalf("unexpected nested merge result: %+v", nested)
	}
}

func TestMergeAllOrdersStrongestFirst(t *testing.T) {
	merged := MergeAll(
		Bag{"a": 3},
		Bag{"a": 2, "b": 2},
		Bag{"a": 1, "c": 1},
	)
	if merged["a"] != 3 || merged["b"] != 2 || merged["c"] != 1 {
		t.Fatalf("unexpected fold result: %+v", merged)
	}

	if got := MergeAll(); got != nil {
		t.Fatalf("expected nil for empty input, got %+v", got)
	}
}
