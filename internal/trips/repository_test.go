package trips

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	trip := validTrip()

	mock.ExpectExec("INSERT INTO trips").
		WillReturnResult(sqlmock.NewResult(11, 1))

	created, err := repo.Create(context.Background(), trip)
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, StatusDraft, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateRejectsInvalidTrip(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	trip := validTrip()
	trip.EndDate = trip.StartDate

	_, err = repo.Create(context.Background(), trip)
	assert.ErrorIs(t, err, ErrEndBeforeStart)
}

func tripRows(trip *Trip) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "phase", "title", "origin", "destination", "trip_startdate", "trip_enddate",
		"accommodation_type", "no_of_adults", "no_of_children", "budget", "currency", "trip_status",
		"purpose", "travel_preferences", "travel_constraints", "created_at", "updated_at",
	}).AddRow(
		trip.ID, trip.UserID, trip.Phase, trip.Title, trip.Origin, trip.Destination,
		trip.StartDate, trip.EndDate, trip.AccommodationType, trip.NoOfAdults, trip.NoOfChildren,
		trip.Budget, trip.Currency, trip.Status, trip.Purpose, trip.TravelPreferences,
		trip.TravelConstraints, time.Now(), time.Now(),
	)
}

func TestRepositoryGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	trip := validTrip()
	trip.ID = 4

	mock.ExpectQuery("SELECT (.+) FROM trips WHERE id").
		WithArgs(int64(4)).
		WillReturnRows(tripRows(trip))

	got, err := repo.GetByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Goa", got.Destination)
	assert.Equal(t, int64(4), got.ID)
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	mock.ExpectQuery("SELECT (.+) FROM trips WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestRepositoryGetActiveForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	trip := validTrip()
	trip.ID = 8
	trip.Status = StatusConfirmed

	mock.ExpectQuery("SELECT (.+) FROM trips").
		WithArgs(int64(1), StatusCompleted, StatusCancelled).
		WillReturnRows(tripRows(trip))

	got, err := repo.GetActiveForUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.ID)
	assert.Equal(t, StatusConfirmed, got.Status)
}

func TestRepositoryUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec("UPDATE trips SET trip_status").
		WithArgs(StatusConfirmed, sqlmock.AnyArg(), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 4, StatusConfirmed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateStatusRejectsUnknown(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), 4, "parked"), ErrInvalidStatus)
}

func TestRepositoryUpdateStatusNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	mock.ExpectExec("UPDATE trips SET trip_status").
		WithArgs(StatusDraft, sqlmock.AnyArg(), int64(123)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), 123, StatusDraft), ErrTripNotFound)
}
