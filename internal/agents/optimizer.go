package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/travelmate/travelmate-ai/internal/plans"
	"github.com/travelmate/travelmate-ai/pkg/logging"
)

const optimizerSystemPrompt = `You are a travel cost optimizer. Analyze the plan and the
price comparison data, then return OptimizationResult JSON only:

{
  "recommendations": ["string"],
  "cost_savings": number,
  "value_adds": ["string"],
  "final_plan": "string",
  "approval_required": boolean
}

Find cheaper alternatives, suggest upgrades, and suggest local experiences.
Output STRICT JSON only, no markdown.`

// PlanOptimizer reviews a built plan for savings and upgrades. Optimization
// is best effort and never fails the planning pipeline; every failure path
// degrades to a baseline result.
type PlanOptimizer struct {
	llm         LLMClient
	web         WebSearcher
	model       string
	maxTokens   int32
	temperature float32
	logger      *logging.Logger
}

// NewPlanOptimizer creates an optimizer backed by the given client.
func NewPlanOptimizer(llm LLMClient, web WebSearcher, model string, maxTokens int32, temperature float32, logger *logging.Logger) *PlanOptimizer {
	if llm == nil {
		panic("agents: llm client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &PlanOptimizer{
		llm:         llm,
		web:         web,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Optimize runs the optimization prompt over the plan. It always returns a
// usable result; LLM or parse failures yield the baseline.
func (o *PlanOptimizer) Optimize(ctx context.Context, plan *plans.TravelPlan, destination string) *plans.OptimizationResult {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		o.logger.Warn("plan marshal failed before optimization", "error", err)
		return baselineOptimization()
	}

	comparison := "no price comparison data"
	if o.web != nil {
		data, err := o.web.Search(ctx, fmt.Sprintf("cheaper hotel and flight deals %s", destination), 5)
		if err != nil || strings.TrimSpace(data) == "" {
			o.logger.Warn("price comparison search failed", "error", err)
		} else {
			comparison = data
		}
	}

	prompt := fmt.Sprintf("Plan:\n%s\n\nPrice comparison data:\n%s", planJSON, comparison)
	resp, err := o.llm.Complete(ctx, LLMRequest{
		Model:       o.model,
		System:      []string{optimizerSystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		o.logger.Warn("optimization llm call failed", "error", err)
		return baselineOptimization()
	}

	repaired, err := RepairJSON(resp.Text)
	if err != nil {
		o.logger.Warn("optimizer output had no json object", "error", err)
		return baselineOptimization()
	}

	var result plans.OptimizationResult
	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		o.logger.Warn("optimizer output did not match the result schema", "error", err)
		return baselineOptimization()
	}
	if len(result.Recommendations) == 0 {
		result.Recommendations = []string{"Basic optimization applied"}
	}
	return &result
}

func baselineOptimization() *plans.OptimizationResult {
	return &plans.OptimizationResult{
		Recommendations:  []string{"Basic optimization applied"},
		ApprovalRequired: true,
	}
}
