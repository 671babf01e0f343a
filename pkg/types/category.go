package types

// EventCategory classifies an event type into one of five fixed buckets.
type EventCategory string

const (
	CategoryBrowsing   EventCategory = "browsing"
	CategoryCart       EventCategory = "cart"
	CategoryConversion EventCategory = "conversion"
	CategoryEngagement EventCategory = "engagement"
	CategoryOther      EventCategory = "other"
)

// categoryTable is the fixed, case-sensitive classification of event types.
// Event types not listed here classify as CategoryOther.
var categoryTable = map[string]EventCategory{
	"product_view":  CategoryBrowsing,
	"category_view": CategoryBrowsing,
	"search":        CategoryBrowsing,

	"add_to_cart":      CategoryCart,
	"remove_from_cart": CategoryCart,

	"checkout_start": CategoryConversion,
	"payment_info":   CategoryConversion,
	"purchase":       CategoryConversion,

	"page_view": CategoryEngagement,
	"login":     CategoryEngagement,
	"logout":    CategoryEngagement,
	"signup":    CategoryEngagement,
}

// CategoryOf returns the category for an event type. It is a total pure
// function: every input maps to exactly one of the five categories.
func CategoryOf(eventType string) EventCategory {
	if c, ok := categoryTable[eventType]; ok {
		return c
	}
	return CategoryOther
}

// Categories lists the five valid category values.
func Categories() []EventCategory {
	return []EventCategory{
		CategoryBrowsing,
		CategoryCart,
		CategoryConversion,
		CategoryEngagement,
		CategoryOther,
	}
}
