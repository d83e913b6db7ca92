package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelmate/travelmate-ai/internal/plans"
)

func TestGraphPlansCompleteRequirements(t *testing.T) {
	planner := &stubPlanner{plan: samplePlan()}
	optimizer := &stubOptimizer{result: &plans.OptimizationResult{Recommendations: []string{"Book early"}}}
	planStore := &stubPlanStore{nextVersion: 1}

	g := NewGraph(testDeps(&stubExtractor{req: completeRequirements()}, planner, optimizer,
		&stubTripStore{}, planStore, &stubChatLog{}))
	result, err := g.PlanTrip(context.Background(), 3, "Plan my Goa trip")
	require.NoError(t, err)

	assert.Equal(t, StatusOptimized, result.Status)
	assert.Equal(t, int64(7), result.TripID)
	assert.Equal(t, 1, planner.calls)
	assert.Equal(t, 1, optimizer.calls)
	require.NotNil(t, planStore.created)
}

func TestGraphRecoversFromOnePlanFailure(t *testing.T) {
	planner := &stubPlanner{plan: samplePlan(), errs: []error{errors.New("model unavailable")}}

	g := NewGraph(testDeps(&stubExtractor{req: completeRequirements()}, planner, &stubOptimizer{},
		&stubTripStore{}, &stubPlanStore{nextVersion: 1}, &stubChatLog{}))
	result, err := g.PlanTrip(context.Background(), 3, "Plan my Goa trip")
	require.NoError(t, err)

	assert.Equal(t, StatusOptimized, result.Status)
	assert.Equal(t, 2, planner.calls)
}

func TestGraphGivesUpAfterRetryBudget(t *testing.T) {
	planner := &stubPlanner{errs: []error{errors.New("model unavailable"), errors.New("model unavailable")}}

	g := NewGraph(testDeps(&stubExtractor{req: completeRequirements()}, planner, &stubOptimizer{},
		&stubTripStore{}, &stubPlanStore{}, &stubChatLog{}))
	_, err := g.PlanTrip(context.Background(), 3, "Plan my Goa trip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, 2, planner.calls)
}

func TestGraphStopsAtIncompleteRequirements(t *testing.T) {
	planner := &stubPlanner{}

	g := NewGraph(testDeps(&stubExtractor{req: missingRequirements()}, planner, &stubOptimizer{},
		&stubTripStore{}, &stubPlanStore{}, &stubChatLog{}))
	result, err := g.PlanTrip(context.Background(), 3, "I want a holiday")
	require.NoError(t, err)

	assert.Equal(t, StatusIncomplete, result.Status)
	assert.Zero(t, planner.calls)
}
