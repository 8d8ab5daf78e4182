package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacademy/openacademy/internal/app/models"
	"github.com/openacademy/openacademy/internal/app/models/dto"
	"github.com/openacademy/openacademy/internal/app/repositories"
	"github.com/openacademy/openacademy/internal/pkg/apperrors"
	"github.com/openacademy/openacademy/internal/pkg/helpers"
)

// fakeSessionStore is an in-memory SessionStore.
type fakeSessionStore struct {
	sessions map[int64]*models.Session
	nextID   int64
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[int64]*models.Session{}, nextID: 1}
}

func (f *fakeSessionStore) Create(_ context.Context, session *models.Session) (int64, error) {
	session.ID = f.nextID
	f.nextID++
	stored := *session
	f.sessions[session.ID] = &stored
	return session.ID, nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id int64) (*models.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *session
	copied.AttendeeIDs = append([]int64{}, session.AttendeeIDs...)
	return &copied, nil
}

func (f *fakeSessionStore) List(_ context.Context, filter repositories.SessionFilter, offset uint64, limit int) ([]*models.Session, error) {
	out := []*models.Session{}
	for _, session := range f.sessions {
		if !session.Active && !filter.IncludeInactive {
			continue
		}
		out = append(out, session)
	}
	return out, nil
}

func (f *fakeSessionStore) Count(_ context.Context, filter repositories.SessionFilter) (int64, error) {
	sessions, _ := f.List(context.Background(), filter, 0, 0)
	return int64(len(sessions)), nil
}

func (f *fakeSessionStore) Update(_ context.Context, session *models.Session) error {
	if _, ok := f.sessions[session.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *session
	f.sessions[session.ID] = &stored
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.sessions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

// fakePartnerDirectory knows a fixed set of partners.
type fakePartnerDirectory struct {
	partners    map[int64]*models.Partner
	instructors map[int64]bool
}

func newFakePartnerDirectory() *fakePartnerDirectory {
	return &fakePartnerDirectory{partners: map[int64]*models.Partner{}, instructors: map[int64]bool{}}
}

func (f *fakePartnerDirectory) addPartner(id int64, eligible bool) {
	f.partners[id] = &models.Partner{ID: id, Name: "Partner", Instructor: eligible}
	f.instructors[id] = eligible
}

func (f *fakePartnerDirectory) GetByID(_ context.Context, id int64) (*models.Partner, error) {
	partner, ok := f.partners[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return partner, nil
}

func (f *fakePartnerDirectory) IsEligibleInstructor(_ context.Context, id int64) (bool, error) {
	return f.instructors[id], nil
}

func (f *fakePartnerDirectory) MissingIDs(_ context.Context, ids []int64) ([]int64, error) {
	missing := []int64{}
	for _, id := range ids {
		if _, ok := f.partners[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// fakeCourseGetter knows a single course.
type fakeCourseGetter struct {
	courseID int64
}

func (f *fakeCourseGetter) GetByID(_ context.Context, id int64) (*models.Course, error) {
	if id != f.courseID {
		return nil, repositories.ErrNotFound
	}
	return &models.Course{ID: id, Name: "Course"}, nil
}

type sessionFixture struct {
	svc      *SessionService
	store    *fakeSessionStore
	partners *fakePartnerDirectory
}

func newSessionFixture() *sessionFixture {
	store := newFakeSessionStore()
	partners := newFakePartnerDirectory()
	partners.addPartner(1, true)  // eligible instructor
	partners.addPartner(2, false) // plain partner
	partners.addPartner(3, false)
	return &sessionFixture{
		svc:      NewSessionService(store, partners, &fakeCourseGetter{courseID: 10}),
		store:    store,
		partners: partners,
	}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func int64Ptr(i int64) *int64 { return &i }

func floatPtr(f float64) *float64 { return &f }

func TestCreateSessionComputesDerivedFields(t *testing.T) {
	f := newSessionFixture()

	session, warnings, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name:        "Week one",
		CourseID:    10,
		StartDate:   strPtr("2026-09-07"),
		Duration:    floatPtr(5),
		Seats:       intPtr(10),
		AttendeeIDs: []int64{2, 3},
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.NotNil(t, session.EndDate)
	assert.Equal(t, "2026-09-11", helpers.FormatDate(*session.EndDate))
	assert.Equal(t, 120.0, session.Hours)
	assert.Equal(t, 20.0, session.TakenSeats)
	assert.Equal(t, 2, session.AttendeesCount)
	assert.True(t, session.Active)
}

func TestCreateSessionDefaultsStartDateToToday(t *testing.T) {
	f := newSessionFixture()

	session, _, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name:     "Kickoff",
		CourseID: 10,
		Duration: floatPtr(1),
	})
	require.NoError(t, err)

	require.NotNil(t, session.StartDate)
	assert.Equal(t, helpers.Today(), *session.StartDate)
}

func TestCreateSessionEndDateSetsDuration(t *testing.T) {
	f := newSessionFixture()

	session, _, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name:      "By end date",
		CourseID:  10,
		StartDate: strPtr("2026-09-07"),
		EndDate:   strPtr("2026-09-11"),
	})
	require.NoError(t, err)

	assert.Equal(t, 5.0, session.Duration)
	require.NotNil(t, session.EndDate)
	assert.Equal(t, "2026-09-11", helpers.FormatDate(*session.EndDate))
	assert.Equal(t, 120.0, session.Hours)
}

func TestCreateSessionHoursSetsDuration(t *testing.T) {
	f := newSessionFixture()

	session, _, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name:      "By hours",
		CourseID:  10,
		StartDate: strPtr("2026-09-07"),
		Hours:     floatPtr(48),
	})
	require.NoError(t, err)

	assert.Equal(t, 2.0, session.Duration)
	assert.Equal(t, 48.0, session.Hours)
}

func TestCreateSessionDurationWinsOverDerivedWrites(t *testing.T) {
	f := newSessionFixture()

	// When duration and endDate are both written, the source field wins and
	// the end date is recomputed from it.
	session, _, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name:      "Conflicting writes",
		CourseID:  10,
		StartDate: strPtr("2026-09-07"),
		Duration:  floatPtr(3),
		EndDate:   strPtr("2026-12-31"),
	})
	require.NoError(t, err)

	assert.Equal(t, 3.0, session.Duration)
	require.NotNil(t, session.EndDate)
	assert.Equal(t, "2026-09-09", helpers.FormatDate(*session.EndDate))
}

func TestCreateSessionInstructorCannotAttend(t *testing.T) {
	f := newSessionFixture()

	_, _, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name:         "Conflict",
		CourseID:     10,
		InstructorID: int64Ptr(1),
		AttendeeIDs:  []int64{1, 2},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInstructorIsAttendee)
	assert.Equal(t, "A session's instructor can't be an attendee", err.Error())
}

func TestCreateSessionIneligibleInstructor(t *testing.T) {
	f := newSessionFixture()

	_, _, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name:         "Bad instructor",
		CourseID:     10,
		InstructorID: int64Ptr(2),
	})

	assert.ErrorIs(t, err, apperrors.ErrInstructorNotEligible)
}

func TestCreateSessionUnknownCourse(t *testing.T) {
	f := newSessionFixture()

	_, _, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name:     "Orphan",
		CourseID: 99,
	})

	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestCreateSessionUnknownAttendee(t *testing.T) {
	f := newSessionFixture()

	_, _, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name:        "Ghost roster",
		CourseID:    10,
		AttendeeIDs: []int64{2, 77},
	})

	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestSeatWarningsDoNotBlockWrites(t *testing.T) {
	f := newSessionFixture()

	session, warnings, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name:        "Overbooked",
		CourseID:    10,
		Seats:       intPtr(1),
		AttendeeIDs: []int64{2, 3},
	})
	require.NoError(t, err, "warnings must never block the write")

	require.Len(t, warnings, 1)
	assert.Equal(t, "Too many attendees", warnings[0].Title)
	assert.NotZero(t, session.ID, "record was persisted despite the warning")
}

func TestNegativeSeatsWarning(t *testing.T) {
	f := newSessionFixture()

	_, warnings, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name:     "Bad seats",
		CourseID: 10,
		Seats:    intPtr(-5),
	})
	require.NoError(t, err)

	require.Len(t, warnings, 2, "negative seats also trips the overbooking check against an empty roster")
	assert.Equal(t, "Incorrect 'seats' value", warnings[0].Title)
	assert.Equal(t, "The number of available seats may not be negative", warnings[0].Message)
}

func TestCheckSeats(t *testing.T) {
	f := newSessionFixture()

	warnings := f.svc.CheckSeats(dto.SessionCheckRequest{Seats: 2, AttendeeIDs: []int64{2, 3}})
	assert.Empty(t, warnings)

	warnings = f.svc.CheckSeats(dto.SessionCheckRequest{Seats: 1, AttendeeIDs: []int64{2, 3}})
	require.Len(t, warnings, 1)
	assert.Equal(t, "Too many attendees", warnings[0].Title)
}

func TestUpdateSessionEndDateRunsInverse(t *testing.T) {
	f := newSessionFixture()

	session, _, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name:      "Adjustable",
		CourseID:  10,
		StartDate: strPtr("2026-09-07"),
		Duration:  floatPtr(2),
	})
	require.NoError(t, err)

	updated, _, err := f.svc.UpdateSession(context.Background(), session.ID, dto.UpdateSessionRequest{
		EndDate: strPtr("2026-09-18"),
	})
	require.NoError(t, err)

	assert.Equal(t, 12.0, updated.Duration)
	assert.Equal(t, 288.0, updated.Hours)
}

func TestUpdateSessionRosterRecomputesOccupancy(t *testing.T) {
	f := newSessionFixture()

	session, _, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name:     "Roster",
		CourseID: 10,
		Seats:    intPtr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, session.TakenSeats)

	updated, warnings, err := f.svc.UpdateAttendees(context.Background(), session.ID, []int64{2, 3})
	require.NoError(t, err)

	assert.Empty(t, warnings)
	assert.Equal(t, 50.0, updated.TakenSeats)
	assert.Equal(t, 2, updated.AttendeesCount)
}

func TestUpdateSessionNotFound(t *testing.T) {
	f := newSessionFixture()

	_, _, err := f.svc.UpdateSession(context.Background(), 404, dto.UpdateSessionRequest{})

	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestListSessionsHidesInactive(t *testing.T) {
	f := newSessionFixture()

	_, _, err := f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name: "Visible", CourseID: 10,
	})
	require.NoError(t, err)

	inactive := false
	_, _, err = f.svc.CreateSession(context.Background(), dto.CreateSessionRequest{
		Name: "Archived", CourseID: 10, Active: &inactive,
	})
	require.NoError(t, err)

	sessions, total, err := f.svc.ListSessions(context.Background(), repositories.SessionFilter{}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Visible", sessions[0].Name)

	_, total, err = f.svc.ListSessions(context.Background(), repositories.SessionFilter{IncludeInactive: true}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
