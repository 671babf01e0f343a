// Package enrich implements the enricher stage: a pure, row-wise, total
// function from validated events to enriched events. It performs no I/O
// and cannot fail; unparseable timestamps propagate as null derived
// fields instead of rejecting the row.
package enrich

import (
	"fmt"
	"time"

	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/pkg/types"
)

// timestampLayouts are tried in order. The upstream sender emits RFC 3339
// with fractional seconds and a UTC offset; the other layouts cover
// hand-fed and zone-less variants.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Enricher derives partition and classification attributes for validated
// events. All rows of a run share one processing timestamp.
type Enricher struct {
	processedAt time.Time
}

// New creates an Enricher stamping rows with the given processing time.
func New(processedAt time.Time) *Enricher {
	return &Enricher{processedAt: processedAt}
}

// Enrich derives all attributes for one validated event. The caller
// guarantees the four required fields are non-null.
func (e *Enricher) Enrich(ev types.RawEvent) types.EnrichedEvent {
	out := types.EnrichedEvent{
		EventID:   *ev.EventID,
		UserID:    *ev.UserID,
		SessionID: ev.SessionID,
		EventType: *ev.EventType,
		Timestamp: *ev.Timestamp,

		PageURL:         ev.PageURL,
		ProductID:       ev.ProductID,
		ProductName:     ev.ProductName,
		ProductCategory: ev.ProductCategory,
		Price:           ev.Price,
		Quantity:        ev.Quantity,
		DeviceType:      ev.DeviceType,
		Referrer:        ev.Referrer,

		ProcessedTimestamp: e.processedAt,
		HasProductData:     ev.ProductID != nil,
		HasPriceData:       ev.Price != nil,
		EventCategory:      types.CategoryOf(*ev.EventType),
	}
	// user_agent, ip_address and additional_data are gone here: the
	// output type has no columns for them.

	if ts, ok := ParseTimestamp(*ev.Timestamp); ok {
		date := ts.Format("2006-01-02")
		year := ts.Year()
		month := fmt.Sprintf("%02d", int(ts.Month()))
		day := fmt.Sprintf("%02d", ts.Day())
		hour := ts.Hour()

		out.EventDate = &date
		out.Year = &year
		out.Month = &month
		out.Day = &day
		out.Hour = &hour
	}

	return out
}

// EnrichAll enriches a batch, preserving order.
func (e *Enricher) EnrichAll(events []types.RawEvent) []types.EnrichedEvent {
	out := make([]types.EnrichedEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, e.Enrich(ev))
	}
	return out
}

// ParseTimestamp parses an ISO-8601-like event timestamp. The second
// return value is false when no layout matches.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
