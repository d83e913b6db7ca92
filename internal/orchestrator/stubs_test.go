package orchestrator

import (
	"context"
	"time"

	"github.com/travelmate/travelmate-ai/internal/agents"
	"github.com/travelmate/travelmate-ai/internal/chat"
	"github.com/travelmate/travelmate-ai/internal/plans"
	"github.com/travelmate/travelmate-ai/internal/trips"
	"github.com/travelmate/travelmate-ai/internal/users"
)

type stubContext struct {
	err error
}

func (s *stubContext) Build(_ context.Context, _ int64, input string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "User: " + input, nil
}

type stubExtractor struct {
	req      *trips.Requirements
	err      error
	lastSeen string
}

func (s *stubExtractor) Extract(_ context.Context, conversation string) (*trips.Requirements, error) {
	s.lastSeen = conversation
	return s.req, s.err
}

type stubPlanner struct {
	plan  *plans.TravelPlan
	errs  []error
	calls int
}

func (s *stubPlanner) BuildPlan(context.Context, *trips.Trip) (*plans.TravelPlan, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return s.plan, nil
}

type stubOptimizer struct {
	result *plans.OptimizationResult
	calls  int
}

func (s *stubOptimizer) Optimize(context.Context, *plans.TravelPlan, string) *plans.OptimizationResult {
	s.calls++
	return s.result
}

type stubTripStore struct {
	created       *trips.Trip
	createErr     error
	byID          *trips.Trip
	getErr        error
	statusUpdates map[int64]string
}

func (s *stubTripStore) Create(_ context.Context, trip *trips.Trip) (*trips.Trip, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	created := *trip
	created.ID = 7
	s.created = &created
	return &created, nil
}

func (s *stubTripStore) GetByID(context.Context, int64) (*trips.Trip, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.byID, nil
}

func (s *stubTripStore) UpdateStatus(_ context.Context, id int64, status string) error {
	if s.statusUpdates == nil {
		s.statusUpdates = make(map[int64]string)
	}
	s.statusUpdates[id] = status
	return nil
}

type stubPlanStore struct {
	nextVersion   int
	created       *plans.Record
	latest        *plans.Record
	getErr        error
	statusUpdates map[int64]string
}

func (s *stubPlanStore) Create(_ context.Context, record *plans.Record) (*plans.Record, error) {
	created := *record
	created.ID = 42
	created.GeneratedAt = time.Now().UTC()
	s.created = &created
	return &created, nil
}

func (s *stubPlanStore) GetByTripID(context.Context, int64, *int) (*plans.Record, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.latest == nil {
		return nil, plans.ErrPlanNotFound
	}
	return s.latest, nil
}

func (s *stubPlanStore) NextVersion(context.Context, int64) (int, error) {
	if s.nextVersion == 0 {
		return 1, nil
	}
	return s.nextVersion, nil
}

func (s *stubPlanStore) UpdateStatus(_ context.Context, id int64, status string) error {
	if s.statusUpdates == nil {
		s.statusUpdates = make(map[int64]string)
	}
	s.statusUpdates[id] = status
	return nil
}

type stubChatLog struct {
	messages []chat.Message
}

func (s *stubChatLog) Save(_ context.Context, msg *chat.Message) (*chat.Message, error) {
	saved := *msg
	saved.ID = int64(len(s.messages) + 1)
	s.messages = append(s.messages, saved)
	return &saved, nil
}

func (s *stubChatLog) byRole(role string) []chat.Message {
	var out []chat.Message
	for _, msg := range s.messages {
		if msg.Role == role {
			out = append(out, msg)
		}
	}
	return out
}

type stubPending struct {
	saved   map[int64]*agents.PendingContext
	cleared []int64
}

func (s *stubPending) Load(_ context.Context, userID int64) (*agents.PendingContext, error) {
	if s.saved == nil {
		return nil, nil
	}
	return s.saved[userID], nil
}

func (s *stubPending) Save(_ context.Context, userID int64, pending *agents.PendingContext) error {
	if s.saved == nil {
		s.saved = make(map[int64]*agents.PendingContext)
	}
	s.saved[userID] = pending
	return nil
}

func (s *stubPending) Clear(_ context.Context, userID int64) error {
	s.cleared = append(s.cleared, userID)
	return nil
}

type scriptedLLM struct {
	responses []agents.LLMResponse
	errs      []error
	calls     int
}

func (s *scriptedLLM) Complete(_ context.Context, _ agents.LLMRequest) (agents.LLMResponse, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return agents.LLMResponse{}, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return agents.LLMResponse{}, nil
}

type stubUserLookup struct {
	user *users.User
	err  error
}

func (s *stubUserLookup) GetByID(context.Context, int64) (*users.User, error) {
	return s.user, s.err
}

type stubNotifier struct {
	calls int
	user  *users.User
	trip  *trips.Trip
	plan  *plans.TravelPlan
}

func (s *stubNotifier) NotifyPlanApproved(_ context.Context, user *users.User, trip *trips.Trip, plan *plans.TravelPlan) {
	s.calls++
	s.user, s.trip, s.plan = user, trip, plan
}

func completeRequirements() *trips.Requirements {
	start := time.Now().UTC().AddDate(0, 2, 0)
	end := start.AddDate(0, 0, 3)
	budget := 20000.0
	req := trips.NewRequirements(trips.Requirements{
		Mode:        trips.ModeTrip,
		Origin:      "Bangalore",
		Destination: "Goa",
		StartDate:   &start,
		EndDate:     &end,
		NoOfAdults:  2,
		Budget:      &budget,
		Currency:    "INR",
	})
	return &req
}

func missingRequirements() *trips.Requirements {
	req := trips.NewRequirements(trips.Requirements{Mode: trips.ModeMissing})
	return &req
}

func samplePlan() *plans.TravelPlan {
	return &plans.TravelPlan{
		Itinerary:          "Day 1: beaches. Day 2: old town.",
		Hotels:             []plans.HotelSuggestion{{Name: "Taj Exotica", PricePerNight: 5000, Location: "Goa", Amenities: []string{}}},
		Flights:            []plans.FlightSuggestion{{Airline: "IndiGo", Price: 4200}},
		DailyBudget:        5000,
		TotalEstimatedCost: 20000,
	}
}

func testDeps(extractor *stubExtractor, planner *stubPlanner, optimizer *stubOptimizer, tripStore *stubTripStore, planStore *stubPlanStore, chatLog *stubChatLog) Deps {
	return Deps{
		Context:   &stubContext{},
		Extractor: extractor,
		Planner:   planner,
		Optimizer: optimizer,
		Trips:     tripStore,
		Plans:     planStore,
		Chat:      chatLog,
	}
}
