package dto

// CourseStat aggregates the sessions of one course for the dashboard board.
type CourseStat struct {
	CourseID         int64   `json:"courseId"`
	CourseName       string  `json:"courseName"`
	SessionCount     int     `json:"sessionCount"`
	AttendeeTotal    int     `json:"attendeeTotal"`
	AverageOccupancy float64 `json:"averageOccupancy"`
}

// DashboardResponse is the aggregate view backing the session board.
type DashboardResponse struct {
	TotalCourses     int64             `json:"totalCourses"`
	TotalSessions    int64             `json:"totalSessions"`
	TotalAttendees   int64             `json:"totalAttendees"`
	CourseStats      []CourseStat      `json:"courseStats"`
	UpcomingSessions []SessionResponse `json:"upcomingSessions"`
}
