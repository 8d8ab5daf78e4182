package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/openacademy/openacademy/internal/app/models"
	"github.com/openacademy/openacademy/internal/app/repositories"
	"github.com/openacademy/openacademy/internal/config"
	"github.com/openacademy/openacademy/internal/pkg/apperrors"
	"github.com/openacademy/openacademy/internal/pkg/auth"
)

// CreateDefaultData creates the bootstrap admin account, the default teacher
// tags and, when enabled, a small demo dataset. Existing records are left
// alone so the seed is safe to run on every startup.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config, lgr zerolog.Logger) error {
	repos := repositories.NewRepositories(dbPool)

	var finalErr error

	if err := seedAdminUser(ctx, repos.UserRepository, cfg, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	tagIDs, err := seedTeacherTags(ctx, repos.PartnerRepository, lgr)
	if err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	if cfg.Seed.DemoData {
		if err := seedDemoData(ctx, repos, tagIDs, lgr); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}

func seedAdminUser(ctx context.Context, users *repositories.UserRepository, cfg *config.Config, lgr zerolog.Logger) error {
	exists, err := users.EmailExists(ctx, cfg.Seed.AdminEmail)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking admin account")
		return err
	}
	if exists {
		return nil
	}

	password := cfg.Seed.AdminPassword
	if password == "" {
		lgr.Warn().Str("email", cfg.Seed.AdminEmail).Msg("No admin password configured, skipping admin account seed")
		return nil
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        cfg.Seed.AdminEmail,
		PasswordHash: passwordHash,
		FirstName:    "Academy",
		LastName:     "Admin",
		RoleType:     models.RoleManager,
	}
	if _, err := users.Create(ctx, admin); err != nil && !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		lgr.Error().Err(err).Msg("Error creating admin account")
		return err
	}

	lgr.Info().Str("email", admin.Email).Msg("Admin account created")
	return nil
}

func seedTeacherTags(ctx context.Context, partners *repositories.PartnerRepository, lgr zerolog.Logger) ([]int64, error) {
	var finalErr error
	ids := []int64{}

	for _, name := range []string{"Teacher / Level 1", "Teacher / Level 2"} {
		tag := &models.PartnerTag{Name: name}
		id, err := partners.CreateTag(ctx, tag)
		if err != nil {
			if errors.Is(err, apperrors.ErrPartnerTagExists) {
				continue
			}
			lgr.Error().Err(err).Str("tag", name).Msg("Error creating teacher tag")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		ids = append(ids, id)
	}

	return ids, finalErr
}

// seedDemoData creates a few demo courses and partners the first time the
// database comes up empty.
func seedDemoData(ctx context.Context, repos *repositories.Repositories, teacherTagIDs []int64, lgr zerolog.Logger) error {
	count, err := repos.CourseRepository.CountAll(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error counting courses for demo seed")
		return err
	}
	if count > 0 {
		return nil
	}

	var finalErr error

	for _, name := range []string{"Functional Programming", "Advanced Databases", "Technical Writing"} {
		course := &models.Course{Name: name}
		if _, err := repos.CourseRepository.Create(ctx, course); err != nil {
			lgr.Error().Err(err).Str("course", name).Msg("Error creating demo course")
			finalErr = errors.Join(finalErr, err)
		}
	}

	instructorTags := []int64{}
	if len(teacherTagIDs) > 0 {
		instructorTags = teacherTagIDs[:1]
	}

	demoPartners := []struct {
		name       string
		instructor bool
		tagIDs     []int64
	}{
		{name: "Diana Marsh", instructor: true},
		{name: "Victor Olsen", tagIDs: instructorTags},
		{name: "Nora Feld"},
		{name: "Sam Becker"},
	}
	for _, p := range demoPartners {
		partner := &models.Partner{Name: p.name, Instructor: p.instructor}
		if _, err := repos.PartnerRepository.Create(ctx, partner, p.tagIDs); err != nil {
			lgr.Error().Err(err).Str("partner", p.name).Msg("Error creating demo partner")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if finalErr == nil {
		lgr.Info().Msg("Demo data created")
	}
	return finalErr
}
