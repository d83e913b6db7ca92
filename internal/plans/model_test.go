package plans

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHotelSuggestionDefaults(t *testing.T) {
	var hotel HotelSuggestion
	require.NoError(t, json.Unmarshal([]byte(`{}`), &hotel))

	assert.Equal(t, HotelNamePlaceholder, hotel.Name)
	assert.Equal(t, LocationPlaceholder, hotel.Location)
	assert.Zero(t, hotel.PricePerNight)
	assert.Zero(t, hotel.Rating)
	assert.NotNil(t, hotel.Amenities)
}

func TestHotelSuggestionKeepsProvidedFields(t *testing.T) {
	var hotel HotelSuggestion
	require.NoError(t, json.Unmarshal(
		[]byte(`{"name":"Taj Exotica","price_per_night":9500,"rating":4.8,"location":"Goa"}`),
		&hotel,
	))

	assert.Equal(t, "Taj Exotica", hotel.Name)
	assert.Equal(t, 9500.0, hotel.PricePerNight)
	assert.Equal(t, "Goa", hotel.Location)
}

func TestFlightSuggestionDefaults(t *testing.T) {
	var flight FlightSuggestion
	require.NoError(t, json.Unmarshal([]byte(`{"price":4200}`), &flight))

	assert.Equal(t, AirlinePlaceholder, flight.Airline)
	assert.Equal(t, TimePlaceholder, flight.DepartureTime)
	assert.Equal(t, DurationPlaceholder, flight.Duration)
	assert.Equal(t, 4200.0, flight.Price)
	assert.Zero(t, flight.Stops)
}

func TestTravelPlanDefaults(t *testing.T) {
	var plan TravelPlan
	require.NoError(t, json.Unmarshal([]byte(`{"hotels":[{}],"flights":[{}]}`), &plan))

	assert.Equal(t, ItineraryPlaceholder, plan.Itinerary)
	assert.Equal(t, 1, plan.HotelCount())
	assert.Equal(t, 1, plan.FlightCount())
	assert.Equal(t, HotelNamePlaceholder, plan.Hotels[0].Name)
}

func TestAvgHotelPriceIgnoresUnpriced(t *testing.T) {
	plan := TravelPlan{Hotels: []HotelSuggestion{
		{PricePerNight: 100},
		{PricePerNight: 0},
		{PricePerNight: 300},
	}}
	assert.Equal(t, 200.0, plan.AvgHotelPrice())

	empty := TravelPlan{}
	assert.Zero(t, empty.AvgHotelPrice())
}

func TestItineraryText(t *testing.T) {
	plan := TravelPlan{Itinerary: "Day 1: beach"}
	assert.Equal(t, "Day 1: beach", plan.ItineraryText())

	plan.Itinerary = []any{map[string]any{"day": 1.0}}
	assert.Contains(t, plan.ItineraryText(), `"day": 1`)

	plan.Itinerary = nil
	assert.Equal(t, "Itinerary not available", plan.ItineraryText())
}
