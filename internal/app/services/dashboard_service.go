package services

import (
	"context"
	"fmt"
	"time"

	"github.com/openacademy/openacademy/internal/app/models"
	"github.com/openacademy/openacademy/internal/app/models/dto"
	"github.com/openacademy/openacademy/internal/app/repositories"
	"github.com/openacademy/openacademy/internal/pkg/helpers"
)

const upcomingSessionLimit = 10

// CourseCounter counts the stored courses.
type CourseCounter interface {
	CountAll(ctx context.Context) (int64, error)
}

// SessionStatsSource provides the aggregates backing the session board.
type SessionStatsSource interface {
	Count(ctx context.Context, filter repositories.SessionFilter) (int64, error)
	StatsByCourse(ctx context.Context) ([]repositories.CourseStats, error)
	TotalAttendees(ctx context.Context) (int64, error)
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*models.Session, error)
}

// DashboardService assembles the session board aggregates.
type DashboardService struct {
	courses  CourseCounter
	sessions SessionStatsSource
}

// NewDashboardService creates a new dashboard service instance
func NewDashboardService(courses CourseCounter, sessions SessionStatsSource) *DashboardService {
	return &DashboardService{
		courses:  courses,
		sessions: sessions,
	}
}

// GetDashboard builds the aggregate board view: per-course session counts and
// occupancy, overall totals, and the next upcoming sessions.
func (s *DashboardService) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	totalCourses, err := s.courses.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting courses: %w", err)
	}

	totalSessions, err := s.sessions.Count(ctx, repositories.SessionFilter{})
	if err != nil {
		return nil, fmt.Errorf("error counting sessions: %w", err)
	}

	totalAttendees, err := s.sessions.TotalAttendees(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting attendees: %w", err)
	}

	stats, err := s.sessions.StatsByCourse(ctx)
	if err != nil {
		return nil, fmt.Errorf("error aggregating course stats: %w", err)
	}

	upcoming, err := s.sessions.ListUpcoming(ctx, helpers.Today(), upcomingSessionLimit)
	if err != nil {
		return nil, fmt.Errorf("error retrieving upcoming sessions: %w", err)
	}

	resp := &dto.DashboardResponse{
		TotalCourses:     totalCourses,
		TotalSessions:    totalSessions,
		TotalAttendees:   totalAttendees,
		CourseStats:      []dto.CourseStat{},
		UpcomingSessions: []dto.SessionResponse{},
	}
	for _, stat := range stats {
		resp.CourseStats = append(resp.CourseStats, dto.CourseStat{
			CourseID:         stat.CourseID,
			CourseName:       stat.CourseName,
			SessionCount:     stat.SessionCount,
			AttendeeTotal:    stat.AttendeeTotal,
			AverageOccupancy: stat.AverageOccupancy,
		})
	}
	for _, session := range upcoming {
		refreshDerived(session)
		resp.UpcomingSessions = append(resp.UpcomingSessions, dto.NewSessionResponse(session))
	}

	return resp, nil
}
