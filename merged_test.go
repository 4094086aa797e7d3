package keep

import "testing"

func TestMergedFoldsBranchesStrongestFirst(t *testing.T) {
	r := New()
	r.Register("door", []string{"open", "locked", "color"})

	r.Stash("door", Bag{"id": "east", "open": true, "locked": false, "color": "red"})
	r.Switch("level-2")
	r.Stash("door", Bag{"id": "east", "open": false})

	merged, ok := r.Merged("door", "east", "level-2", DefaultBranch)
	if !ok {
		t.Fatalf("merged: unexpected failure")
	}
	if merged["open"] != false {
		t.Fatalf("strongest branch must win, got %v", merged["open"])
	}
	if merged["locked"] != false || merged["color"] != "red" {
		t.Fatalf("weaker branch must fill gaps, got %+v", merged)
	}
}

func TestMergedDefaultsToCurrentOverDefault(t *testing.T) {
	r := New()
	r.Register("door", []string{"open", "color"})

	r.Stash("door", Bag{"id": "east", "open": true, "color": "red"})
	r.Switch("level-2")
	r.Stash("door", Bag{"id": "east", "open": false})

	merged, ok := r.Merged("door", "east")
	if !ok {
		t.Fatalf("merged: unexpected failure")
	}
	if merged["open"] != false || merged["color"] != "red" {
		t.Fatalf("unexpected merged bag %+v", merged)
	}
}

func TestMergedMisses(t *testing.T) {
	r := New()
	r.Register("door", []string{"open"})

	if _, ok := r.Merged("ghost", "east"); ok {
		t.Fatalf("expected unknown class to fail")
	}
	if _, ok := r.Merged("door", "east"); ok {
		t.Fatalf("expected miss with no records")
	}
}
