package keep

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/goliatone/go-keep/record"
)

// Trace captures provenance for one property of one instance across every
// branch that holds a record for it.
type Trace struct {
	Class    string       `json:"class"`
	Instance string       `json:"instance"`
	Prop     string       `json:"prop"`
	Branches []Provenance `json:"branches"`
}

// Provenance details what a single branch contributed to a traced property.
type Provenance struct {
	Branch    string    `json:"branch"`
	Revision  string    `json:"revision,omitempty"`
	StashedAt time.Time `json:"stashed_at,omitempty"`
	Value     any       `json:"value,omitempty"`
	Found     bool      `json:"found"`
}

// ToJSON serialises the trace for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// Trace reports where prop is stored for instance across branches. The second
// return is false when the class is unknown or untracks prop.
func (r *Registry) Trace(class, instance, prop string) (Trace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, ok := r.classes[class]
	if !ok {
		return Trace{}, false
	}
	if _, tracked := node.propSet[prop]; !tracked {
		return Trace{}, false
	}

	names := make([]string, 0, len(node.branches))
	for name := range node.branches {
		names = append(names, name)
	}
	sort.Strings(names)

	trace := Trace{
		Class:    class,
		Instance: instance,
		Prop:     prop,
		Branches: make([]Provenance, 0, len(names)),
	}
	for _, name := range names {
		rec, found := node.find(name, instance)
		entry := Provenance{Branch: name}
		if found {
			if value, present := rec.values[prop]; present {
				entry.Found = true
				entry.Value = record.Clone(value)
				entry.Revision = rec.revision
				entry.StashedAt = rec.stashedAt
			}
		}
		trace.Branches = append(trace.Branches, entry)
	}
	return trace, true
}
