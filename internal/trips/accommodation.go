package trips

import "strings"

// accommodationEntry maps a free-form phrase to a canonical category.
type accommodationEntry struct {
	pattern  string
	category string
}

// accommodationTable is tried in order: exact match first, then substring
// containment. The precedence is load-bearing: "luxury hotel" must resolve
// to "luxury" before the bare "hotel" category can claim it.
var accommodationTable = []accommodationEntry{
	{"luxury hotel", "luxury"},
	{"luxury resort", "luxury"},
	{"budget hotel", "hotel"},
	{"boutique hotel", "hotel"},
	{"business hotel", "hotel"},
	{"luxury accommodation", "luxury"},
	{"budget accommodation", "hotel"},
	{"upscale hotel", "luxury"},
	{"premium hotel", "luxury"},
	{"high-end hotel", "luxury"},
	{"5-star hotel", "luxury"},
	{"4-star hotel", "hotel"},
	{"3-star hotel", "hotel"},
	{"budget hostel", "hostel"},
	{"luxury hostel", "hostel"},
	{"vacation rental", "apartment"},
	{"rental apartment", "apartment"},
	{"holiday apartment", "apartment"},
	{"serviced apartment", "apartment"},
	{"airbnb", "apartment"},
	{"bed and breakfast", "guesthouse"},
	{"b&b", "guesthouse"},
	{"inn", "guesthouse"},
	{"motel", "hotel"},
	{"lodge", "hotel"},
	{"villa", "luxury"},
	{"mansion", "luxury"},
	{"penthouse", "luxury"},
	{"suite", "luxury"},
}

// canonicalAccommodationTypes are accepted as-is when already normalized.
var canonicalAccommodationTypes = map[string]bool{
	"hotel":                  true,
	"resort":                 true,
	"hostel":                 true,
	"apartment":              true,
	"guesthouse":             true,
	"luxury":                 true,
	"own_place":              true,
	"friend_place":           true,
	"official_accommodation": true,
	"budget":                 true,
	"family-friendly":        true,
	"business":               true,
	"youth hostel":           true,
}

// NormalizeAccommodationType maps free-form accommodation text to a canonical
// category. Unrecognized input falls back to "hotel". Idempotent over
// canonical values.
func NormalizeAccommodationType(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "hotel"
	}

	for _, entry := range accommodationTable {
		if value == entry.pattern {
			return entry.category
		}
	}
	for _, entry := range accommodationTable {
		if strings.Contains(value, entry.pattern) {
			return entry.category
		}
	}
	if canonicalAccommodationTypes[value] {
		return value
	}
	return "hotel"
}
