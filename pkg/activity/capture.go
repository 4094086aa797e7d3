package activity

import (
	"context"
	"sync"
)

// CaptureHook buffers the cache lifecycle events it receives, in arrival
// order, so tests can assert on what the registry emitted. Setting Err makes
// every Notify report that error after recording.
type CaptureHook struct {
	Events []Event
	Err    error
	mu     sync.Mutex
}

// Notify stores the normalized event and returns the configured error.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, NormalizeEvent(event))
	return h.Err
}
