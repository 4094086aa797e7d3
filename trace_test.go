package keep

import "testing"

func TestTraceAcrossBranches(t *testing.T) {
	r := New(WithRevisionIDs(func() string { return "rev" }))
	r.Register("door", []string{"open", "locked"})

	r.Stash("door", Bag{"id": "east", "open": true})
	r.Switch("level-2")
	r.Stash("door", Bag{"id": "east", "open": false})
	r.Switch("level-3")
	r.Stash("door", Bag{"id": "east", "locked": true})

	trace, ok := r.Trace("door", "east", "open")
	if !ok {
		t.Fatalf("trace: unexpected failure")
	}
	if trace.Class != "door" || trace.Instance != "east" || trace.Prop != "open" {
		t.Fatalf("unexpected trace header %+v", trace)
	}
	if len(trace.Branches) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(trace.Branches))
	}
	// Sorted branch order: "*", "level-2", "level-3".
	if trace.Branches[0].Branch != DefaultBranch || !trace.Branches[0].Found || trace.Branches[0].Value != true {
		t.Fatalf("unexpected default branch entry %+v", trace.Branches[0])
	}
	if trace.Branches[1].Branch != "level-2" || trace.Branches[1].Value != false {
		t.Fatalf("unexpected level-2 entry %+v", trace.Branches[1])
	}
	if trace.Branches[2].Found {
		t.Fatalf("level-3 never stashed open, got %+v", trace.Branches[2])
	}
	if trace.Branches[0].Revision != "rev" {
		t.Fatalf("expected revision on found entry, got %+v", trace.Branches[0])
	}
}

func TestTraceUnknownClassOrProp(t *testing.T) {
	r := New()
	r.Register("door", []string{"open"})

	if _, ok := r.Trace("ghost", "east", "open"); ok {
		t.Fatalf("expected unknown class to fail")
	}
	if _, ok := r.Trace("door", "east", "color"); ok {
		t.Fatalf("expected untracked prop to fail")
	}
}

func TestTraceJSONRoundTrip(t *testing.T) {
	r := New()
	r.Register("door", []string{"open"})
	r.Stash("door", Bag{"id": "east", "open": true})

	trace, ok := r.Trace("door", "east", "open")
	if !ok {
		t.Fatalf("trace: unexpected failure")
	}
	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if decoded.Class != "door" || decoded.Prop != "open" || len(decoded.Branches) != 1 {
		t.Fatalf("unexpected decoded trace %+v", decoded)
	}
	if decoded.Branches[0].Value != true || !decoded.Branches[0].Found {
		t.Fatalf("unexpected decoded entry %+v", decoded.Branches[0])
	}
	if _, err := TraceFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected malformed payload to fail")
	}
}
