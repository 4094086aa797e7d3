package activity

import (
	"strings"
	"time"
)

// EventInput describes the common fields for cache lifecycle events.
type EventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Class      string
	Branch     string
	Instance   string
	Revision   string
	Props      []string
	Channel    string
	Recipients []string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildRegisterEvent constructs a normalized activity event for a class
// registration.
func BuildRegisterEvent(input EventInput) Event {
	return buildCacheEvent("cache.registered", input.Class, input)
}

// BuildStashEvent constructs a normalized activity event for a stash write.
func BuildStashEvent(input EventInput) Event {
	return buildCacheEvent("cache.stashed", input.Class, input)
}

// BuildReassignEvent constructs a normalized activity event for a reassign
// read.
func BuildReassignEvent(input EventInput) Event {
	return buildCacheEvent("cache.reassigned", input.Class, input)
}

// BuildSwitchEvent constructs an activity event describing a branch switch.
func BuildSwitchEvent(input EventInput) Event {
	return buildCacheEvent("cache.switched", "cache.branch", input)
}

func buildCacheEvent(verb, objectType string, input EventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Branch != "" {
		metadata = ensureMetadata(metadata)
		metadata["branch"] = input.Branch
	}
	if input.Revision != "" {
		metadata = ensureMetadata(metadata)
		metadata["revision"] = input.Revision
	}
	if len(input.Props) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["props"] = append([]string{}, input.Props...)
	}

	recipients := input.Recipients
	if len(recipients) > 0 {
		recipients = append([]string{}, input.Recipients...)
	}

	objectType = strings.TrimSpace(objectType)
	if objectType == "" {
		objectType = "cache"
	}

	objectID := strings.TrimSpace(input.Instance)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Class)
	}
	if objectID == "" {
		objectID = strings.TrimSpace(input.Branch)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Recipients: recipients,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
