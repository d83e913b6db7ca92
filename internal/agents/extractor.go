package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/travelmate/travelmate-ai/internal/trips"
	"github.com/travelmate/travelmate-ai/pkg/logging"
)

const extractorSystemPrompt = `You are a travel requirements specialist. You extract
structured trip requirements from multi-turn conversations.

MULTI-TURN MERGE RULE:
- Combine fields across turns
- If origin/destination appear in ANY earlier turn, keep them
- Only overwrite if the user explicitly changes them

CRITICAL RULES:
- Return EXACTLY ONE JSON object
- NEVER return a list or multiple objects
- If multiple possibilities exist, choose the MOST RECENT user intent
- Use earlier turns only to fill missing fields
- Output STRICT JSON only, no markdown, no code blocks

Schema keys:
mode, origin, destination, trip_startdate, trip_enddate,
no_of_adults, no_of_children, budget, currency, purpose`

// RequirementsExtractor turns a rendered conversation into normalized trip
// requirements. Extraction never returns an LLM parse failure to callers;
// unusable output degrades to missing-mode requirements.
type RequirementsExtractor struct {
	llm         LLMClient
	model       string
	maxTokens   int32
	temperature float32
	logger      *logging.Logger
}

// NewRequirementsExtractor creates an extractor backed by the given client.
func NewRequirementsExtractor(llm LLMClient, model string, maxTokens int32, temperature float32, logger *logging.Logger) *RequirementsExtractor {
	if llm == nil {
		panic("agents: llm client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &RequirementsExtractor{
		llm:         llm,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Extract runs the extraction prompt over the conversation text and
// normalizes the result. The error return covers LLM transport failures
// only; malformed model output yields missing-mode requirements.
func (e *RequirementsExtractor) Extract(ctx context.Context, conversation string) (*trips.Requirements, error) {
	resp, err := e.llm.Complete(ctx, LLMRequest{
		Model:       e.model,
		System:      []string{extractorSystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: "Conversation:\n" + conversation}},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("agents: requirements extraction failed: %w", err)
	}

	data, err := DecodeObject(resp.Text)
	if err != nil {
		e.logger.Warn("extractor output was not parseable json", "error", err)
		return missingRequirements(), nil
	}

	return e.normalize(data), nil
}

func missingRequirements() *trips.Requirements {
	r := trips.NewRequirements(trips.Requirements{
		Mode:          trips.ModeMissing,
		MissingFields: []string{"origin", "destination"},
	})
	return &r
}

// normalize maps the loosely typed LLM payload into Requirements. String
// blanks and unparseable numbers are treated as absent so the type-level
// normalizer can apply its floors and demotion rules.
func (e *RequirementsExtractor) normalize(data map[string]any) *trips.Requirements {
	raw := trips.Requirements{}

	if mode, ok := StringField(data, "mode"); ok {
		raw.Mode = mode
	}
	if origin, ok := StringField(data, "origin"); ok {
		raw.Origin = origin
	}
	if destination, ok := StringField(data, "destination"); ok {
		raw.Destination = destination
	}
	raw.StartDate = parseDateField(data, "trip_startdate")
	raw.EndDate = parseDateField(data, "trip_enddate")

	if adults, ok := IntField(data, "no_of_adults"); ok {
		raw.NoOfAdults = adults
	}
	if children, ok := IntField(data, "no_of_children"); ok {
		raw.NoOfChildren = children
	}
	if budget, ok := FloatField(data, "budget"); ok {
		raw.Budget = &budget
	}

	if currency, ok := StringField(data, "currency"); ok {
		raw.Currency = currency
	} else {
		raw.Currency = "INR"
	}
	if purpose, ok := StringField(data, "purpose"); ok {
		raw.Purpose = purpose
	}
	if accommodation, ok := StringField(data, "accommodation_type"); ok {
		raw.AccommodationType = accommodation
	}
	if prefs, ok := StringField(data, "travel_preferences"); ok {
		raw.TravelPreferences = prefs
	}
	if constraints, ok := StringField(data, "travel_constraints"); ok {
		raw.TravelConstraints = constraints
	}

	if fields, ok := data["missing_fields"].([]any); ok {
		for _, f := range fields {
			if name, ok := f.(string); ok && strings.TrimSpace(name) != "" {
				raw.MissingFields = append(raw.MissingFields, name)
			}
		}
	}
	if msg, ok := StringField(data, "agent_message"); ok {
		raw.AgentMessage = msg
	}

	normalized := trips.NewRequirements(raw)
	return &normalized
}

func parseDateField(data map[string]any, key string) *time.Time {
	s, ok := StringField(data, key)
	if !ok {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &parsed
}
