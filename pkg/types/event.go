// Package types provides the core event model for the clickstream pipeline.
package types

import "time"

// RawEvent is one clickstream record as decoded from a source JSON document.
// Every field is a pointer because nothing is guaranteed present before
// validation; a nil pointer means the field was missing or null.
type RawEvent struct {
	EventID         *string  `json:"event_id"`
	UserID          *string  `json:"user_id"`
	SessionID       *string  `json:"session_id"`
	EventType       *string  `json:"event_type"`
	Timestamp       *string  `json:"timestamp"`
	PageURL         *string  `json:"page_url"`
	ProductID       *string  `json:"product_id"`
	ProductName     *string  `json:"product_name"`
	ProductCategory *string  `json:"product_category"`
	Price           *float64 `json:"price"`
	Quantity        *int64   `json:"quantity"`
	UserAgent       *string  `json:"user_agent"`
	IPAddress       *string  `json:"ip_address"`
	DeviceType      *string  `json:"device_type"`
	Referrer        *string  `json:"referrer"`
	AdditionalData  *string  `json:"additional_data"`
}

// CorruptRecord holds input text that failed to parse against the event
// schema. It carries only the verbatim source text and is routed to the
// quarantine sink, never into the main flow.
type CorruptRecord struct {
	// Raw is the original record text, preserved verbatim.
	Raw string

	// Object is the source object the text came from.
	Object string
}

// EnrichedEvent is a validated event extended with derived attributes.
// The four required fields are plain values because the validator
// guarantees them. Derived time fields stay pointers: when the event
// timestamp cannot be parsed they are nil and the row still flows through
// (retention over rejection). The sensitive columns user_agent, ip_address
// and additional_data do not exist on this type.
type EnrichedEvent struct {
	EventID   string  `json:"event_id"`
	UserID    string  `json:"user_id"`
	SessionID *string `json:"session_id"`
	EventType string  `json:"event_type"`
	Timestamp string  `json:"timestamp"`

	PageURL         *string  `json:"page_url"`
	ProductID       *string  `json:"product_id"`
	ProductName     *string  `json:"product_name"`
	ProductCategory *string  `json:"product_category"`
	Price           *float64 `json:"price"`
	Quantity        *int64   `json:"quantity"`
	DeviceType      *string  `json:"device_type"`
	Referrer        *string  `json:"referrer"`

	// ProcessedTimestamp is the wall-clock instant of the run that
	// produced this row.
	ProcessedTimestamp time.Time `json:"processed_timestamp"`

	// EventDate is the calendar date YYYY-MM-DD derived from Timestamp.
	EventDate *string `json:"event_date"`

	// Year, Month, Day and Hour are the partition components derived from
	// Timestamp. Month and Day are exactly two characters, zero-padded.
	Year  *int    `json:"year"`
	Month *string `json:"month"`
	Day   *string `json:"day"`
	Hour  *int    `json:"hour"`

	// HasProductData reports whether product_id is non-null.
	HasProductData bool `json:"has_product_data"`

	// HasPriceData reports whether price is non-null.
	HasPriceData bool `json:"has_price_data"`

	// EventCategory is the fixed classification of EventType.
	EventCategory EventCategory `json:"event_category"`
}

// SequencedEvent is an enriched event with its per-session ordering.
type SequencedEvent struct {
	EnrichedEvent

	// EventSequence is the 1-based rank of this event within its session,
	// ordered by timestamp.
	EventSequence int `json:"event_sequence"`

	// IsSessionStart is true iff EventSequence == 1.
	IsSessionStart bool `json:"is_session_start"`
}

// StringPtr returns a pointer to s. Convenience for building events.
func StringPtr(s string) *string { return &s }

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 { return &f }

// Int64Ptr returns a pointer to i.
func Int64Ptr(i int64) *int64 { return &i }
