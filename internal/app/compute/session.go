package compute

import (
	"time"

	"github.com/openacademy/openacademy/internal/app/models"
	"github.com/openacademy/openacademy/internal/pkg/helpers"
)

// Update names, also used as skip arguments to Graph.Recompute.
const (
	UpdateEndDate        = "end_date"
	UpdateHours          = "hours"
	UpdateAttendeesCount = "attendees_count"
	UpdateTakenSeats     = "taken_seats"
)

// SessionGraph builds the dependency table for session derived fields.
func SessionGraph() *Graph {
	g := NewGraph()
	g.Register(UpdateEndDate, []Field{FieldStartDate, FieldDuration}, EndDate)
	g.Register(UpdateHours, []Field{FieldDuration}, Hours)
	g.Register(UpdateAttendeesCount, []Field{FieldAttendees}, AttendeesCount)
	g.Register(UpdateTakenSeats, []Field{FieldSeats, FieldAttendees}, TakenSeats)
	return g
}

// EndDate derives the end date from the start date and the duration in days.
// The duration counts both endpoints, so the span is shortened by one tick
// before truncating back to a date: a one-day session starting Monday ends
// Monday, a five-day session starting Monday ends Friday.
func EndDate(s *models.Session) {
	if s.StartDate == nil || s.Duration == 0 {
		s.EndDate = nil
		if s.StartDate != nil {
			end := *s.StartDate
			s.EndDate = &end
		}
		return
	}

	span := time.Duration(s.Duration*float64(24*time.Hour)) - time.Second
	end := helpers.TruncateToDate(s.StartDate.Add(span))
	s.EndDate = &end
}

// SetEndDate applies a direct write to the end date and runs the inverse
// rule: duration becomes the whole-day difference plus one, undoing the
// inclusive convention of EndDate. Callers must skip UpdateEndDate in the
// same recompute cycle.
func SetEndDate(s *models.Session, end time.Time) {
	end = helpers.TruncateToDate(end)
	s.EndDate = &end

	if s.StartDate == nil {
		return
	}

	days := int(end.Sub(*s.StartDate).Hours() / 24)
	s.Duration = float64(days + 1)
}

// Hours derives the hour-equivalent duration.
func Hours(s *models.Session) {
	s.Hours = s.Duration * 24
}

// SetHours applies a direct write to the hours field and runs the inverse
// rule. Callers must skip UpdateHours in the same recompute cycle.
func SetHours(s *models.Session, hours float64) {
	s.Hours = hours
	s.Duration = hours / 24
}

// AttendeesCount derives the persisted roster size.
func AttendeesCount(s *models.Session) {
	s.AttendeesCount = len(s.AttendeeIDs)
}

// TakenSeats derives the seat occupancy percentage. A zero capacity yields
// zero occupancy rather than a division error.
func TakenSeats(s *models.Session) {
	if s.Seats == 0 {
		s.TakenSeats = 0.0
		return
	}
	s.TakenSeats = 100.0 * float64(len(s.AttendeeIDs)) / float64(s.Seats)
}

// RefreshLoaded recomputes the non-persisted derived fields of a session that
// was just read from storage. The persisted derived fields (end date and
// attendee count) keep their stored values.
func RefreshLoaded(s *models.Session) {
	Hours(s)
	TakenSeats(s)
}
