package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelmate/travelmate-ai/internal/trips"
)

type stubLLM struct {
	resp    LLMResponse
	err     error
	lastReq LLMRequest
	calls   int
}

func (s *stubLLM) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	s.lastReq = req
	s.calls++
	return s.resp, s.err
}

func TestExtractCompleteRequirements(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "```json\n" + `{
		"mode": "trip",
		"origin": "Bangalore",
		"destination": "Goa",
		"trip_startdate": "2027-01-10",
		"trip_enddate": "2027-01-13",
		"no_of_adults": 2,
		"no_of_children": "1",
		"budget": "20000",
		"currency": "INR",
		"purpose": "leisure"
	}` + "\n```"}}

	extractor := NewRequirementsExtractor(llm, "gemini-2.5-flash", 4096, 0.3, nil)
	req, err := extractor.Extract(context.Background(), "User: plan a trip from Bangalore to Goa")
	require.NoError(t, err)

	assert.True(t, req.IsComplete())
	assert.Equal(t, "Bangalore", req.Origin)
	assert.Equal(t, "Goa", req.Destination)
	assert.Equal(t, 2, req.NoOfAdults)
	assert.Equal(t, 1, req.NoOfChildren)
	require.NotNil(t, req.Budget)
	assert.Equal(t, 20000.0, *req.Budget)
	assert.Equal(t, "2027-01-10", req.StartDate.Format("2006-01-02"))
}

func TestExtractDefaultsCurrencyWhenAbsent(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: `{
		"mode": "trip",
		"origin": "Bangalore",
		"destination": "Goa",
		"trip_startdate": "2027-01-10",
		"trip_enddate": "2027-01-13",
		"no_of_adults": 2,
		"budget": 20000,
		"currency": ""
	}`}}

	extractor := NewRequirementsExtractor(llm, "gemini-2.5-flash", 4096, 0.3, nil)
	req, err := extractor.Extract(context.Background(), "conversation")
	require.NoError(t, err)

	assert.Equal(t, "INR", req.Currency)
	assert.Equal(t, "leisure", req.Purpose)
	assert.Equal(t, "hotel", req.AccommodationType)
}

func TestExtractTakesLastElementOfListOutput(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: `[
		{"mode": "missing", "missing_fields": ["destination"]},
		{
			"mode": "trip",
			"origin": "Bangalore",
			"destination": "Goa",
			"trip_startdate": "2027-01-10",
			"trip_enddate": "2027-01-13",
			"no_of_adults": 2,
			"budget": 20000
		}
	]`}}

	extractor := NewRequirementsExtractor(llm, "gemini-2.5-flash", 4096, 0.3, nil)
	req, err := extractor.Extract(context.Background(), "conversation")
	require.NoError(t, err)

	assert.True(t, req.IsComplete())
	assert.Equal(t, "Goa", req.Destination)
}

func TestExtractDemotesPartialInput(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: `{"mode": "trip", "destination": "Goa"}`}}

	extractor := NewRequirementsExtractor(llm, "gemini-2.5-flash", 4096, 0.3, nil)
	req, err := extractor.Extract(context.Background(), "conversation")
	require.NoError(t, err)

	assert.False(t, req.IsComplete())
	assert.Equal(t, trips.ModeMissing, req.Mode)
	assert.Contains(t, req.MissingFields, "origin")
	assert.NotContains(t, req.MissingFields, "destination")
}

func TestExtractUnparseableOutputDegradesToMissing(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "I cannot help with that."}}

	extractor := NewRequirementsExtractor(llm, "gemini-2.5-flash", 4096, 0.3, nil)
	req, err := extractor.Extract(context.Background(), "conversation")
	require.NoError(t, err)

	assert.Equal(t, trips.ModeMissing, req.Mode)
	assert.Equal(t, []string{"origin", "destination"}, req.MissingFields)
}

func TestExtractIgnoresMalformedDates(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: `{
		"mode": "trip",
		"origin": "Bangalore",
		"destination": "Goa",
		"trip_startdate": "next friday",
		"trip_enddate": "2027-01-13",
		"no_of_adults": 2,
		"budget": 20000
	}`}}

	extractor := NewRequirementsExtractor(llm, "gemini-2.5-flash", 4096, 0.3, nil)
	req, err := extractor.Extract(context.Background(), "conversation")
	require.NoError(t, err)

	assert.False(t, req.IsComplete())
	assert.Contains(t, req.MissingFields, "trip_startdate")
}

func TestExtractPropagatesLLMError(t *testing.T) {
	llm := &stubLLM{err: errors.New("provider unavailable")}

	extractor := NewRequirementsExtractor(llm, "gemini-2.5-flash", 4096, 0.3, nil)
	_, err := extractor.Extract(context.Background(), "conversation")
	assert.Error(t, err)
}

func TestExtractSendsConversationToLLM(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: `{"mode": "missing"}`}}

	extractor := NewRequirementsExtractor(llm, "gemini-2.5-flash", 4096, 0.3, nil)
	_, err := extractor.Extract(context.Background(), "User: plan a trip")
	require.NoError(t, err)

	require.Len(t, llm.lastReq.Messages, 1)
	assert.Contains(t, llm.lastReq.Messages[0].Content, "User: plan a trip")
	require.Len(t, llm.lastReq.System, 1)
	assert.Contains(t, llm.lastReq.System[0], "MULTI-TURN MERGE RULE")
}
