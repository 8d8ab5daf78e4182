package compute

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacademy/openacademy/internal/app/models"
	"github.com/openacademy/openacademy/internal/pkg/helpers"
)

func date(value string) time.Time {
	t, err := helpers.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestEndDateInclusiveConvention(t *testing.T) {
	start := date("2026-09-07") // a Monday

	tests := []struct {
		name     string
		duration float64
		want     string
	}{
		{"one day ends same day", 1, "2026-09-07"},
		{"five days end on Friday", 5, "2026-09-11"},
		{"half day stays on start day", 0.5, "2026-09-07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &models.Session{StartDate: &start, Duration: tt.duration}
			EndDate(s)
			require.NotNil(t, s.EndDate)
			assert.Equal(t, tt.want, helpers.FormatDate(*s.EndDate))
		})
	}
}

func TestEndDateWithoutStartOrDuration(t *testing.T) {
	s := &models.Session{Duration: 5}
	EndDate(s)
	assert.Nil(t, s.EndDate)

	start := date("2026-09-07")
	s = &models.Session{StartDate: &start, Duration: 0}
	EndDate(s)
	require.NotNil(t, s.EndDate)
	assert.Equal(t, start, *s.EndDate)
}

func TestSetEndDateInverse(t *testing.T) {
	start := date("2026-09-07")
	s := &models.Session{StartDate: &start}

	SetEndDate(s, date("2026-09-11"))

	assert.Equal(t, 5.0, s.Duration)
	require.NotNil(t, s.EndDate)
	assert.Equal(t, "2026-09-11", helpers.FormatDate(*s.EndDate))
}

func TestEndDateRoundTrip(t *testing.T) {
	start := date("2026-09-07")

	for _, duration := range []float64{1, 2, 7, 30} {
		s := &models.Session{StartDate: &start, Duration: duration}
		EndDate(s)
		require.NotNil(t, s.EndDate)

		inverse := &models.Session{StartDate: &start}
		SetEndDate(inverse, *s.EndDate)
		assert.Equal(t, duration, inverse.Duration, "duration %v should survive the round trip", duration)
	}
}

func TestHoursPair(t *testing.T) {
	s := &models.Session{Duration: 5}
	Hours(s)
	assert.Equal(t, 120.0, s.Hours)

	SetHours(s, 48)
	assert.Equal(t, 2.0, s.Duration)
	assert.Equal(t, 48.0, s.Hours)
}

func TestTakenSeats(t *testing.T) {
	s := &models.Session{Seats: 10, AttendeeIDs: []int64{1, 2, 3}}
	TakenSeats(s)
	assert.Equal(t, 30.0, s.TakenSeats)
}

func TestTakenSeatsZeroCapacity(t *testing.T) {
	s := &models.Session{Seats: 0, AttendeeIDs: []int64{1, 2}}
	TakenSeats(s)
	assert.Equal(t, 0.0, s.TakenSeats)
}

func TestAttendeesCount(t *testing.T) {
	s := &models.Session{AttendeeIDs: []int64{4, 5}}
	AttendeesCount(s)
	assert.Equal(t, 2, s.AttendeesCount)
}

func TestGraphRecomputeRunsDependents(t *testing.T) {
	start := date("2026-09-07")
	s := &models.Session{StartDate: &start, Duration: 3, Seats: 4, AttendeeIDs: []int64{1, 2}}

	SessionGraph().Recompute(s, []Field{FieldStartDate, FieldDuration, FieldSeats, FieldAttendees})

	require.NotNil(t, s.EndDate)
	assert.Equal(t, "2026-09-09", helpers.FormatDate(*s.EndDate))
	assert.Equal(t, 72.0, s.Hours)
	assert.Equal(t, 50.0, s.TakenSeats)
	assert.Equal(t, 2, s.AttendeesCount)
}

func TestGraphRecomputeIgnoresUnrelatedChanges(t *testing.T) {
	start := date("2026-09-07")
	s := &models.Session{StartDate: &start, Duration: 3}

	// Only the roster changed; the end date must stay untouched.
	SessionGraph().Recompute(s, []Field{FieldAttendees})

	assert.Nil(t, s.EndDate)
	assert.Equal(t, 0, s.AttendeesCount)
}

func TestGraphSkipSuppressesForwardRule(t *testing.T) {
	start := date("2026-09-07")
	s := &models.Session{StartDate: &start}

	// A direct write to the end date: inverse sets the duration, the forward
	// end date rule is skipped, everything else still recomputes.
	SetEndDate(s, date("2026-09-09"))
	SessionGraph().Recompute(s, []Field{FieldDuration, FieldEndDate}, UpdateEndDate)

	assert.Equal(t, 3.0, s.Duration)
	require.NotNil(t, s.EndDate)
	assert.Equal(t, "2026-09-09", helpers.FormatDate(*s.EndDate), "directly written end date must not be recomputed")
	assert.Equal(t, 72.0, s.Hours)
}
