package enrich

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

func TestEnrich_DerivedFields(t *testing.T) {
	processedAt := time.Date(2024, 3, 16, 8, 0, 0, 0, time.UTC)
	e := New(processedAt)

	ev := types.RawEvent{
		EventID:   types.StringPtr("evt-1"),
		UserID:    types.StringPtr("user-1"),
		SessionID: types.StringPtr("sess-1"),
		EventType: types.StringPtr("add_to_cart"),
		Timestamp: types.StringPtr("2024-03-15T10:30:00Z"),
		ProductID: types.StringPtr("prod-9"),
		Price:     types.Float64Ptr(29.99),
	}

	out := e.Enrich(ev)

	if out.EventDate == nil || *out.EventDate != "2024-03-15" {
		t.Errorf("expected event_date 2024-03-15, got %v", out.EventDate)
	}
	if out.Year == nil || *out.Year != 2024 {
		t.Errorf("expected year 2024, got %v", out.Year)
	}
	if out.Month == nil || *out.Month != "03" {
		t.Errorf("expected month 03, got %v", out.Month)
	}
	if out.Day == nil || *out.Day != "15" {
		t.Errorf("expected day 15, got %v", out.Day)
	}
	if out.Hour == nil || *out.Hour != 10 {
		t.Errorf("expected hour 10, got %v", out.Hour)
	}
	if out.EventCategory != types.CategoryCart {
		t.Errorf("expected category cart, got %s", out.EventCategory)
	}
	if !out.HasProductData {
		t.Error("expected has_product_data true")
	}
	if !out.HasPriceData {
		t.Error("expected has_price_data true")
	}
	if !out.ProcessedTimestamp.Equal(processedAt) {
		t.Errorf("expected processed timestamp %v, got %v", processedAt, out.ProcessedTimestamp)
	}
}

func TestEnrich_UnparseableTimestamp(t *testing.T) {
	e := New(time.Now())

	ev := types.RawEvent{
		EventID:   types.StringPtr("evt-1"),
		UserID:    types.StringPtr("user-1"),
		EventType: types.StringPtr("page_view"),
		Timestamp: types.StringPtr("not-a-timestamp"),
	}

	out := e.Enrich(ev)

	// Row survives with null derived time fields.
	if out.EventDate != nil || out.Year != nil || out.Month != nil || out.Day != nil || out.Hour != nil {
		t.Errorf("expected nil derived time fields, got date=%v year=%v month=%v day=%v hour=%v",
			out.EventDate, out.Year, out.Month, out.Day, out.Hour)
	}
	if out.Timestamp != "not-a-timestamp" {
		t.Errorf("expected original timestamp preserved, got %q", out.Timestamp)
	}
	if out.EventCategory != types.CategoryEngagement {
		t.Errorf("expected classification to run regardless, got %s", out.EventCategory)
	}
}

func TestEnrich_FlagsWithoutProduct(t *testing.T) {
	e := New(time.Now())

	ev := types.RawEvent{
		EventID:   types.StringPtr("evt-1"),
		UserID:    types.StringPtr("user-1"),
		EventType: types.StringPtr("login"),
		Timestamp: types.StringPtr("2024-03-15T10:30:00Z"),
	}

	out := e.Enrich(ev)
	if out.HasProductData {
		t.Error("expected has_product_data false")
	}
	if out.HasPriceData {
		t.Error("expected has_price_data false")
	}
	if out.SessionID != nil {
		t.Errorf("expected nil session_id, got %v", *out.SessionID)
	}
}

func TestParseTimestamp_Layouts(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		date string
	}{
		{"2024-03-15T10:30:00Z", true, "2024-03-15"},
		{"2024-03-15T10:30:00.123456Z", true, "2024-03-15"},
		{"2024-03-15T10:30:00+05:00", true, "2024-03-15"},
		{"2024-03-15T10:30:00", true, "2024-03-15"},
		{"2024-03-15 10:30:00", true, "2024-03-15"},
		{"15/03/2024", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		ts, ok := ParseTimestamp(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseTimestamp(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && ts.Format("2006-01-02") != tt.date {
			t.Errorf("ParseTimestamp(%q) date = %s, want %s", tt.in, ts.Format("2006-01-02"), tt.date)
		}
	}
}

func TestEnrichAll_PreservesOrder(t *testing.T) {
	e := New(time.Now())
	events := []types.RawEvent{
		{EventID: types.StringPtr("a"), UserID: types.StringPtr("u"), EventType: types.StringPtr("login"), Timestamp: types.StringPtr("2024-03-15T10:30:00Z")},
		{EventID: types.StringPtr("b"), UserID: types.StringPtr("u"), EventType: types.StringPtr("logout"), Timestamp: types.StringPtr("2024-03-15T11:30:00Z")},
	}

	out := e.EnrichAll(events)
	if len(out) != 2 || out[0].EventID != "a" || out[1].EventID != "b" {
		t.Fatalf("expected order preserved, got %+v", out)
	}
}

// TestProperty_DerivedDateConsistency validates that for any parseable
// timestamp, the derived components reassemble into event_date, month and
// day are always zero-padded to two characters, and hour is within range.
func TestProperty_DerivedDateConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	e := New(time.Now())

	properties.Property("year-month-day reassemble into event_date", prop.ForAll(
		func(unixSec int64) bool {
			ts := time.Unix(unixSec, 0).UTC()
			ev := types.RawEvent{
				EventID:   types.StringPtr("evt"),
				UserID:    types.StringPtr("user"),
				EventType: types.StringPtr("page_view"),
				Timestamp: types.StringPtr(ts.Format(time.RFC3339)),
			}

			out := e.Enrich(ev)
			if out.EventDate == nil || out.Year == nil || out.Month == nil || out.Day == nil || out.Hour == nil {
				return false
			}
			if len(*out.Month) != 2 || len(*out.Day) != 2 {
				return false
			}
			if *out.Hour < 0 || *out.Hour > 23 {
				return false
			}
			rebuilt := fmt.Sprintf("%d-%s-%s", *out.Year, *out.Month, *out.Day)
			return rebuilt == *out.EventDate
		},
		gen.Int64Range(946684800, 2524608000), // 2000-01-01 .. 2050-01-01
	))

	properties.TestingRun(t)
}
