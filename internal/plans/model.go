package plans

import (
	"encoding/json"
)

// Sentinel placeholders used when model output omits suggestion fields.
const (
	HotelNamePlaceholder = "Hotel Name Not Available"
	LocationPlaceholder  = "Location TBD"
	AirlinePlaceholder   = "Airline TBD"
	TimePlaceholder      = "Time TBD"
	DurationPlaceholder  = "Duration TBD"
	ItineraryPlaceholder = "Itinerary will be provided"
)

// HotelSuggestion tolerates partially-populated model output: missing fields
// decode to placeholder values instead of failing.
type HotelSuggestion struct {
	Name          string   `json:"name"`
	PricePerNight float64  `json:"price_per_night"`
	Rating        float64  `json:"rating"`
	Location      string   `json:"location"`
	Amenities     []string `json:"amenities"`
}

// UnmarshalJSON fills placeholder defaults for absent fields.
func (h *HotelSuggestion) UnmarshalJSON(data []byte) error {
	type alias HotelSuggestion
	tmp := alias{
		Name:     HotelNamePlaceholder,
		Location: LocationPlaceholder,
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*h = HotelSuggestion(tmp)
	if h.Amenities == nil {
		h.Amenities = []string{}
	}
	return nil
}

// FlightSuggestion tolerates partially-populated model output.
type FlightSuggestion struct {
	Airline       string  `json:"airline"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time,omitempty"`
	Price         float64 `json:"price"`
	Duration      string  `json:"duration"`
	Stops         int     `json:"stops"`
}

// UnmarshalJSON fills placeholder defaults for absent fields.
func (f *FlightSuggestion) UnmarshalJSON(data []byte) error {
	type alias FlightSuggestion
	tmp := alias{
		Airline:       AirlinePlaceholder,
		DepartureTime: TimePlaceholder,
		Duration:      DurationPlaceholder,
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*f = FlightSuggestion(tmp)
	return nil
}

// TravelPlan is the in-memory plan shape. Itinerary holds whatever the model
// produced: free text, a day list, or a mapping.
type TravelPlan struct {
	Itinerary          any                `json:"itinerary"`
	Hotels             []HotelSuggestion  `json:"hotels"`
	Flights            []FlightSuggestion `json:"flights"`
	DailyBudget        float64            `json:"daily_budget"`
	TotalEstimatedCost float64            `json:"total_estimated_cost"`
}

// UnmarshalJSON applies the itinerary placeholder when the field is absent.
func (p *TravelPlan) UnmarshalJSON(data []byte) error {
	type alias TravelPlan
	tmp := alias{Itinerary: ItineraryPlaceholder}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*p = TravelPlan(tmp)
	return nil
}

// HotelCount returns the number of hotel suggestions.
func (p *TravelPlan) HotelCount() int { return len(p.Hotels) }

// FlightCount returns the number of flight suggestions.
func (p *TravelPlan) FlightCount() int { return len(p.Flights) }

// AvgHotelPrice averages the priced hotel suggestions, ignoring zero rows.
func (p *TravelPlan) AvgHotelPrice() float64 {
	var sum float64
	var n int
	for _, h := range p.Hotels {
		if h.PricePerNight > 0 {
			sum += h.PricePerNight
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ItineraryText renders the itinerary as text regardless of its shape.
func (p *TravelPlan) ItineraryText() string {
	switch v := p.Itinerary.(type) {
	case nil:
		return "Itinerary not available"
	case string:
		return v
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "Itinerary not available"
		}
		return string(data)
	}
}
