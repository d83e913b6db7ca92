package trips

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTrip() *Trip {
	return &Trip{
		UserID:            1,
		Phase:             "sequential",
		Title:             "Goa getaway",
		Origin:            "Bangalore",
		Destination:       "Goa",
		StartDate:         futureDate(10),
		EndDate:           futureDate(13),
		AccommodationType: "hotel",
		NoOfAdults:        2,
		Budget:            20000,
		Currency:          "INR",
		Status:            StatusDraft,
	}
}

func TestTripValidate(t *testing.T) {
	assert.NoError(t, validTrip().Validate(true))
}

func TestTripValidateEndBeforeStart(t *testing.T) {
	trip := validTrip()
	trip.EndDate = trip.StartDate
	assert.ErrorIs(t, trip.Validate(true), ErrEndBeforeStart)

	trip.EndDate = trip.StartDate.AddDate(0, 0, -1)
	assert.ErrorIs(t, trip.Validate(true), ErrEndBeforeStart)
}

func TestTripValidateFutureStartOnlyForNewTrips(t *testing.T) {
	trip := validTrip()
	trip.StartDate = futureDate(-5)
	trip.EndDate = futureDate(-2)

	assert.ErrorIs(t, trip.Validate(true), ErrStartNotFuture)

	// re-validating a persisted trip with past dates is allowed
	assert.NoError(t, trip.Validate(false))
}

func TestTripValidateTravelersAndBudget(t *testing.T) {
	trip := validTrip()
	trip.NoOfAdults = 0
	assert.ErrorIs(t, trip.Validate(true), ErrInvalidTravelers)

	trip = validTrip()
	trip.NoOfChildren = -1
	assert.ErrorIs(t, trip.Validate(true), ErrInvalidTravelers)

	trip = validTrip()
	trip.Budget = -10
	assert.ErrorIs(t, trip.Validate(true), ErrNegativeBudget)
}

func TestTripValidateStatus(t *testing.T) {
	trip := validTrip()
	trip.Status = "parked"
	assert.ErrorIs(t, trip.Validate(true), ErrInvalidStatus)
}

func TestTripHelpers(t *testing.T) {
	trip := validTrip()

	assert.Equal(t, 4, trip.DurationDays())
	assert.Equal(t, 2, trip.TotalTravelers())
	assert.Equal(t, 5000.0, trip.DailyBudget())

	trip.NoOfChildren = 2
	assert.Equal(t, 4, trip.TotalTravelers())

	trip.Budget = 0
	assert.Equal(t, 0.0, trip.DailyBudget())
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusDraft, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled} {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus("planned"))
	assert.False(t, ValidStatus(""))
}
