package keep

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-keep/pkg/activity"
)

func TestWithActivityHooksClonesAndFiltersNil(t *testing.T) {
	hook := activity.HookFunc(func(context.Context, activity.Event) error { return nil })

	r := New(WithActivityHooks(activity.Hooks{nil, hook}))
	hooks := r.ActivityHooks()
	if len(hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(hooks))
	}
}

func TestLifecycleEventsReachHooks(t *testing.T) {
	capture := &activity.CaptureHook{}
	r := New(WithActivityHooks(activity.Hooks{capture}))

	r.Register("player", []string{"hp"})
	r.Stash("player", Bag{"id": "p1", "hp": 42})
	r.Reassign("player", Bag{"id": "p1"})
	r.Switch("level-2")

	if len(capture.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(capture.Events))
	}
	verbs := []string{"cache.registered", "cache.stashed", "cache.reassigned", "cache.switched"}
	for i, verb := range verbs {
		if capture.Events[i].Verb != verb {
			t.Fatalf("event %d: expected %q got %q", i, verb, capture.Events[i].Verb)
		}
		if capture.Events[i].Channel != "keep" {
			t.Fatalf("event %d: expected default channel, got %q", i, capture.Events[i].Channel)
		}
	}

	stashed := capture.Events[1]
	if stashed.ObjectType != "player" || stashed.ObjectID != "p1" {
		t.Fatalf("unexpected stash object: %+v", stashed)
	}
	if stashed.Metadata["branch"] != DefaultBranch {
		t.Fatalf("expected branch metadata, got %+v", stashed.Metadata)
	}
	if revision, ok := stashed.Metadata["revision"].(string); !ok || revision == "" {
		t.Fatalf("expected revision metadata, got %+v", stashed.Metadata)
	}

	switched := capture.Events[3]
	if switched.ObjectType != "cache.branch" || switched.ObjectID != "level-2" {
		t.Fatalf("unexpected switch object: %+v", switched)
	}
	if switched.Metadata["from"] != DefaultBranch {
		t.Fatalf("expected from metadata, got %+v", switched.Metadata)
	}
}

func TestFailedOperationsEmitNothing(t *testing.T) {
	capture := &activity.CaptureHook{}
	r := New(WithActivityHooks(activity.Hooks{capture}))

	r.Stash("ghost", Bag{"id": "p1"})
	r.Reassign("ghost", Bag{"id": "p1"})

	if len(capture.Events) != 0 {
		t.Fatalf("failures must not emit events, got %d", len(capture.Events))
	}
}

func TestHooksMayCallBackIntoRegistry(t *testing.T) {
	var r *Registry
	var seen []string
	r = New(WithActivityHooks(activity.Hooks{
		activity.HookFunc(func(_ context.Context, event activity.Event) error {
			seen = append(seen, r.CurrentBranch())
			return nil
		}),
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Register("player", []string{"hp"})
		r.Stash("player", Bag{"id": "p1", "hp": 1})
		r.Switch("level-2")
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("activity hooks deadlocked against the registry lock")
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 events, got %d", len(seen))
	}
	if seen[2] != "level-2" {
		t.Fatalf("expected switch to be visible to the hook, got %q", seen[2])
	}
}

func TestHookErrorsDoNotFailOperations(t *testing.T) {
	failing := activity.HookFunc(func(context.Context, activity.Event) error {
		return context.Canceled
	})
	r := New(WithActivityHooks(activity.Hooks{failing}))

	r.Register("player", []string{"hp"})
	if !r.Stash("player", Bag{"id": "p1", "hp": 1}) {
		t.Fatalf("hook errors must not fail the operation")
	}
}
