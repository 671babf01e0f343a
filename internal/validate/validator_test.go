package validate

import (
	"testing"

	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

func completeEvent(id string) types.RawEvent {
	return types.RawEvent{
		EventID:   types.StringPtr(id),
		UserID:    types.StringPtr("user-1"),
		EventType: types.StringPtr("page_view"),
		Timestamp: types.StringPtr("2024-03-15T10:30:00Z"),
	}
}

func TestValidator_AllValid(t *testing.T) {
	events := []types.RawEvent{completeEvent("e1"), completeEvent("e2")}

	valid, counts := New().Apply(events)

	if len(valid) != 2 {
		t.Fatalf("expected 2 surviving rows, got %d", len(valid))
	}
	for _, c := range counts {
		if c.Dropped != 0 {
			t.Errorf("expected 0 drops for %s, got %d", c.Field, c.Dropped)
		}
	}
}

func TestValidator_DropsNullRequired(t *testing.T) {
	noUser := completeEvent("e2")
	noUser.UserID = nil
	noTimestamp := completeEvent("e3")
	noTimestamp.Timestamp = nil

	valid, counts := New().Apply([]types.RawEvent{completeEvent("e1"), noUser, noTimestamp})

	if len(valid) != 1 {
		t.Fatalf("expected 1 surviving row, got %d", len(valid))
	}
	if *valid[0].EventID != "e1" {
		t.Errorf("expected surviving event e1, got %s", *valid[0].EventID)
	}

	want := map[string]int{"event_id": 0, "user_id": 1, "event_type": 0, "timestamp": 1}
	for _, c := range counts {
		if c.Dropped != want[c.Field] {
			t.Errorf("field %s: expected %d drops, got %d", c.Field, want[c.Field], c.Dropped)
		}
	}
}

// A row missing several required fields is counted once, under the first
// check that removed it. The later checks run against the shrunken set.
func TestValidator_ShrinkingSetCounts(t *testing.T) {
	missingBoth := types.RawEvent{
		EventType: types.StringPtr("page_view"),
		Timestamp: types.StringPtr("2024-03-15T10:30:00Z"),
	}

	valid, counts := New().Apply([]types.RawEvent{missingBoth, completeEvent("e1")})

	if len(valid) != 1 {
		t.Fatalf("expected 1 surviving row, got %d", len(valid))
	}

	byField := make(map[string]int)
	for _, c := range counts {
		byField[c.Field] = c.Dropped
	}
	if byField["event_id"] != 1 {
		t.Errorf("expected event_id to count the drop, got %d", byField["event_id"])
	}
	if byField["user_id"] != 0 {
		t.Errorf("expected user_id count 0 after shrink, got %d", byField["user_id"])
	}
}

func TestValidator_EmptyStringIsMissing(t *testing.T) {
	empty := completeEvent("e1")
	empty.EventType = types.StringPtr("")

	valid, counts := New().Apply([]types.RawEvent{empty})

	if len(valid) != 0 {
		t.Fatalf("expected 0 surviving rows, got %d", len(valid))
	}
	for _, c := range counts {
		if c.Field == "event_type" && c.Dropped != 1 {
			t.Errorf("expected event_type drop count 1, got %d", c.Dropped)
		}
	}
}

func TestValidator_CountOrder(t *testing.T) {
	_, counts := New().Apply(nil)

	if len(counts) != len(RequiredFields) {
		t.Fatalf("expected %d counts, got %d", len(RequiredFields), len(counts))
	}
	for i, c := range counts {
		if c.Field != RequiredFields[i] {
			t.Errorf("count %d: expected field %s, got %s", i, RequiredFields[i], c.Field)
		}
	}
}

func TestValidator_OptionalFieldsIgnored(t *testing.T) {
	ev := completeEvent("e1")
	// No product, price, session or device fields: still valid.
	valid, _ := New().Apply([]types.RawEvent{ev})
	if len(valid) != 1 {
		t.Fatalf("expected row without optional fields to survive, got %d rows", len(valid))
	}
}
