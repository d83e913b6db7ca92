package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/travelmate/travelmate-ai/internal/observability/metrics"
	"github.com/travelmate/travelmate-ai/internal/plans"
	"github.com/travelmate/travelmate-ai/internal/trips"
	"github.com/travelmate/travelmate-ai/pkg/logging"
)

// FlightSearcher finds flight offers between two cities. Dates are
// YYYY-MM-DD strings; the result is a JSON snippet for prompt assembly.
type FlightSearcher interface {
	SearchFlights(ctx context.Context, origin, destination, departureDate, returnDate string, adults int) (string, error)
}

// HotelSearcher finds hotel offers in a city.
type HotelSearcher interface {
	SearchHotels(ctx context.Context, city, checkIn, checkOut string, adults int) (string, error)
}

// WeatherLookup fetches the daily forecast for a city over a date range.
type WeatherLookup interface {
	ForecastRange(ctx context.Context, city, startDate, endDate string) (string, error)
}

// ExperienceSearcher finds local activities near a destination.
type ExperienceSearcher interface {
	SearchExperiences(ctx context.Context, city string) (string, error)
}

// WebSearcher performs a general web search, the fallback data source when a
// vendor tool fails or returns nothing.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) (string, error)
}

// VendorTools aggregates the external data sources consulted before
// planning. Nil tools are skipped.
type VendorTools struct {
	Flights     FlightSearcher
	Hotels      HotelSearcher
	Weather     WeatherLookup
	Experiences ExperienceSearcher
	Web         WebSearcher
}

const plannerSystemPrompt = `You are a travel itinerary specialist. Create a structured
travel plan from the trip details and vendor data provided.

OUTPUT FORMAT, STRICT TravelPlan JSON ONLY:

{
  "itinerary": "day by day plan",
  "hotels": [
    {"name": "string", "price_per_night": number, "rating": number, "location": "string", "amenities": []}
  ],
  "flights": [
    {"airline": "string", "departure_time": "string", "arrival_time": "string", "price": number, "duration": "string", "stops": number}
  ],
  "daily_budget": number,
  "total_estimated_cost": number
}

Your answer is INVALID if hotels or flights arrays are empty.
DO NOT wrap inside "trip".
DO NOT add extra fields.
DO NOT return markdown.`

// TripPlanner builds a travel plan for a confirmed set of requirements. It
// gathers vendor data up front, feeds it to the LLM alongside the trip, and
// repairs whatever the model returns into a usable plan.
type TripPlanner struct {
	llm         LLMClient
	tools       VendorTools
	model       string
	maxTokens   int32
	temperature float32
	logger      *logging.Logger
	metrics     *metrics.PlanningMetrics
}

// NewTripPlanner creates a planner backed by the given client and tools.
func NewTripPlanner(llm LLMClient, tools VendorTools, model string, maxTokens int32, temperature float32, logger *logging.Logger) *TripPlanner {
	if llm == nil {
		panic("agents: llm client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &TripPlanner{
		llm:         llm,
		tools:       tools,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// SetMetrics enables vendor call instrumentation.
func (p *TripPlanner) SetMetrics(m *metrics.PlanningMetrics) { p.metrics = m }

// BuildPlan produces a travel plan for the trip. Vendor tool failures fall
// back to web search results; an unparseable LLM response degrades to a
// fallback plan. Hotels and flights are never left empty.
func (p *TripPlanner) BuildPlan(ctx context.Context, trip *trips.Trip) (*plans.TravelPlan, error) {
	vendorData := p.gatherVendorData(ctx, trip)

	tripJSON, err := json.Marshal(trip)
	if err != nil {
		return nil, fmt.Errorf("agents: trip marshal failed: %w", err)
	}

	prompt := fmt.Sprintf("Trip details:\n%s\n\nVendor data:\n%s", tripJSON, vendorData)
	resp, err := p.llm.Complete(ctx, LLMRequest{
		Model:       p.model,
		System:      []string{plannerSystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("agents: plan generation failed: %w", err)
	}

	plan := p.parsePlan(resp.Text, trip)
	applyPlanGuards(plan, trip)
	reconcileCosts(plan, trip)
	return plan, nil
}

// gatherVendorData calls every configured tool and assembles labeled
// sections. A failed or empty vendor call is replaced by a web search when
// one is configured.
func (p *TripPlanner) gatherVendorData(ctx context.Context, trip *trips.Trip) string {
	departure := trip.StartDate.Format("2006-01-02")
	ret := trip.EndDate.Format("2006-01-02")

	var sections []string

	if p.tools.Flights != nil {
		data, err := p.vendorCall("flights", func() (string, error) {
			return p.tools.Flights.SearchFlights(ctx, trip.Origin, trip.Destination, departure, ret, trip.NoOfAdults)
		})
		if err != nil || strings.TrimSpace(data) == "" {
			p.logger.Warn("flight search failed, falling back to web search", "error", err)
			data = p.webFallback(ctx, fmt.Sprintf("flights %s to %s", trip.Origin, trip.Destination))
		}
		sections = append(sections, "FLIGHTS:\n"+data)
	}

	if p.tools.Hotels != nil {
		data, err := p.vendorCall("hotels", func() (string, error) {
			return p.tools.Hotels.SearchHotels(ctx, trip.Destination, departure, ret, trip.NoOfAdults)
		})
		if err != nil || strings.TrimSpace(data) == "" {
			p.logger.Warn("hotel search failed, falling back to web search", "error", err)
			data = p.webFallback(ctx, fmt.Sprintf("best hotels in %s", trip.Destination))
		}
		sections = append(sections, "HOTELS:\n"+data)
	}

	if p.tools.Weather != nil {
		data, err := p.vendorCall("weather", func() (string, error) {
			return p.tools.Weather.ForecastRange(ctx, trip.Destination, departure, ret)
		})
		if err != nil || strings.TrimSpace(data) == "" {
			p.logger.Warn("weather lookup failed", "error", err)
			data = "weather unavailable"
		}
		sections = append(sections, "WEATHER:\n"+data)
	}

	if p.tools.Experiences != nil {
		data, err := p.vendorCall("experiences", func() (string, error) {
			return p.tools.Experiences.SearchExperiences(ctx, trip.Destination)
		})
		if err != nil || strings.TrimSpace(data) == "" {
			p.logger.Warn("experience search failed, falling back to web search", "error", err)
			data = p.webFallback(ctx, fmt.Sprintf("things to do in %s", trip.Destination))
		}
		sections = append(sections, "EXPERIENCES:\n"+data)
	} else if p.tools.Web != nil {
		data := p.webFallback(ctx, fmt.Sprintf("things to do in %s", trip.Destination))
		sections = append(sections, "LOCAL INFO:\n"+data)
	}

	if len(sections) == 0 {
		return "no vendor data available"
	}
	return strings.Join(sections, "\n\n")
}

func (p *TripPlanner) webFallback(ctx context.Context, query string) string {
	if p.tools.Web == nil {
		return "no data available"
	}
	data, err := p.vendorCall("web", func() (string, error) {
		return p.tools.Web.Search(ctx, query, 5)
	})
	if err != nil || strings.TrimSpace(data) == "" {
		return "no data available"
	}
	return data
}

// vendorCall wraps one vendor lookup with call and latency metrics.
func (p *TripPlanner) vendorCall(vendor string, fn func() (string, error)) (string, error) {
	start := time.Now()
	data, err := fn()
	p.metrics.ObserveVendorLatency(vendor, time.Since(start).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.metrics.ObserveVendorCall(vendor, status)
	return data, err
}

// parsePlan decodes the LLM output into a TravelPlan. A "trip" wrapper is
// unwrapped; anything unparseable becomes a fallback plan carrying the trip
// budget.
func (p *TripPlanner) parsePlan(raw string, trip *trips.Trip) *plans.TravelPlan {
	repaired, err := RepairJSON(raw)
	if err != nil {
		p.logger.Warn("planner output had no json object", "error", err)
		return fallbackPlan(trip)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(repaired), &probe); err != nil {
		p.logger.Warn("planner output was not parseable json", "error", err)
		return fallbackPlan(trip)
	}
	if wrapped, ok := probe["trip"]; ok {
		repaired = string(wrapped)
	}

	var plan plans.TravelPlan
	if err := json.Unmarshal([]byte(repaired), &plan); err != nil {
		p.logger.Warn("planner output did not match the plan schema", "error", err)
		return fallbackPlan(trip)
	}
	return &plan
}

func fallbackPlan(trip *trips.Trip) *plans.TravelPlan {
	return &plans.TravelPlan{
		Itinerary:          "Fallback plan",
		Hotels:             []plans.HotelSuggestion{},
		Flights:            []plans.FlightSuggestion{},
		DailyBudget:        0,
		TotalEstimatedCost: trip.Budget,
	}
}

// applyPlanGuards enforces the non-empty hotels and flights invariant.
func applyPlanGuards(plan *plans.TravelPlan, trip *trips.Trip) {
	if len(plan.Hotels) == 0 {
		plan.Hotels = []plans.HotelSuggestion{{
			Name:      "Tool fallback hotel",
			Location:  trip.Destination,
			Amenities: []string{},
		}}
	}
	if len(plan.Flights) == 0 {
		plan.Flights = []plans.FlightSuggestion{{
			Airline:       "Tool fallback",
			DepartureTime: trip.StartDate.Format("2006-01-02"),
			ArrivalTime:   trip.EndDate.Format("2006-01-02"),
			Duration:      plans.DurationPlaceholder,
		}}
	}
	if plan.TotalEstimatedCost == 0 {
		plan.TotalEstimatedCost = trip.Budget
	}
}

// reconcileCosts recomputes the plan totals from its own components so the
// numbers agree with the listed hotels, flights, and itinerary allocations.
// All-zero components leave the model's totals untouched.
func reconcileCosts(plan *plans.TravelPlan, trip *trips.Trip) {
	nights := trip.DurationDays() - 1
	if nights < 1 {
		nights = 1
	}

	var total float64
	for _, f := range plan.Flights {
		total += f.Price
	}
	for _, h := range plan.Hotels {
		total += h.PricePerNight * float64(nights)
	}
	if days, ok := plan.Itinerary.([]any); ok {
		for _, d := range days {
			if day, ok := d.(map[string]any); ok {
				if alloc, ok := day["budget_allocation"].(float64); ok {
					total += alloc
				}
			}
		}
	}

	if total <= 0 {
		return
	}
	plan.TotalEstimatedCost = total
	plan.DailyBudget = float64(int(total) / trip.DurationDays())
}
