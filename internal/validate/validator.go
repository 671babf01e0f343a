// Package validate implements the validator stage: rows missing a required
// field are removed from the working set and counted per field.
package validate

import (
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

// RequiredFields lists the required fields in their fixed check order.
var RequiredFields = []string{"event_id", "user_id", "event_type", "timestamp"}

// FieldNullCount reports how many rows one required-field check dropped.
type FieldNullCount struct {
	Field   string `json:"field"`
	Dropped int    `json:"dropped"`
}

// Validator drops rows with null required fields. It never fails: drops
// are diagnostics, not errors.
type Validator struct{}

// New creates a Validator.
func New() *Validator {
	return &Validator{}
}

// Apply runs the four required-field checks in order and returns the
// surviving rows plus a per-field drop count. Counts are computed against
// the progressively shrinking set: a row missing both event_id and
// user_id is counted only under event_id, the first check that removed
// it. The surviving set is the same regardless of check order.
func (v *Validator) Apply(events []types.RawEvent) ([]types.RawEvent, []FieldNullCount) {
	counts := make([]FieldNullCount, 0, len(RequiredFields))

	working := events
	for _, field := range RequiredFields {
		kept := working[:0:0]
		dropped := 0
		for _, ev := range working {
			if fieldPresent(ev, field) {
				kept = append(kept, ev)
			} else {
				dropped++
			}
		}
		counts = append(counts, FieldNullCount{Field: field, Dropped: dropped})
		working = kept
	}

	return working, counts
}

// fieldPresent reports whether a required field is non-null. An empty
// string counts as missing: the upstream delivery never produces
// meaningful empty identifiers, only absent ones.
func fieldPresent(ev types.RawEvent, field string) bool {
	var p *string
	switch field {
	case "event_id":
		p = ev.EventID
	case "user_id":
		p = ev.UserID
	case "event_type":
		p = ev.EventType
	case "timestamp":
		p = ev.Timestamp
	default:
		return true
	}
	return p != nil && *p != ""
}
