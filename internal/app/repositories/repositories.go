package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is the shared sentinel for missing rows. Repositories wrap it
// in their own named errors where a more specific message helps.
var ErrNotFound = errors.New("record not found")

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository    *UserRepository
	TokenRepository   *TokenRepository
	PartnerRepository *PartnerRepository
	CourseRepository  *CourseRepository
	SessionRepository *SessionRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:    NewUserRepository(db),
		TokenRepository:   NewTokenRepository(db),
		PartnerRepository: NewPartnerRepository(db),
		CourseRepository:  NewCourseRepository(db),
		SessionRepository: NewSessionRepository(db),
	}
}
