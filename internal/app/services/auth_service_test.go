package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacademy/openacademy/internal/app/models"
	"github.com/openacademy/openacademy/internal/app/models/dto"
	"github.com/openacademy/openacademy/internal/app/repositories"
	"github.com/openacademy/openacademy/internal/pkg/apperrors"
	"github.com/openacademy/openacademy/internal/pkg/auth"
)

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*models.User{}, nextID: 1}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) (int64, error) {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return user.ID, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(context.Background(), email)
	return err == nil, nil
}

func (f *fakeUserStore) List(_ context.Context) ([]*models.User, error) {
	out := []*models.User{}
	for _, user := range f.users {
		out = append(out, user)
	}
	return out, nil
}

// fakeTokenStore keeps refresh tokens in a map.
type fakeTokenStore struct {
	tokens map[string]*repositories.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]*repositories.RefreshToken{}}
}

func (f *fakeTokenStore) Store(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	f.tokens[token] = &repositories.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (f *fakeTokenStore) Get(_ context.Context, token string) (*repositories.RefreshToken, error) {
	rt, ok := f.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	return rt, nil
}

func (f *fakeTokenStore) Revoke(_ context.Context, token string) error {
	rt, ok := f.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	rt.Revoked = true
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserStore, *fakeTokenStore) {
	t.Helper()
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
	return NewAuthService(users, tokens, jwtService), users, tokens
}

func seedUser(t *testing.T, svc *AuthService, email, password string, role string) *models.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email:     email,
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
		RoleType:  role,
	})
	require.NoError(t, err)
	return user
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, _, tokens := newAuthFixture(t)
	seedUser(t, svc, "manager@example.com", "secret-password", "MANAGER")

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "manager@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Contains(t, tokens.tokens, resp.RefreshToken, "refresh token is persisted")
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	seedUser(t, svc, "manager@example.com", "secret-password", "MANAGER")

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "manager@example.com",
		Password: "wrong",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, tokens := newAuthFixture(t)
	seedUser(t, svc, "officer@example.com", "secret-password", "OFFICER")

	first, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "officer@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	second, err := svc.RefreshToken(context.Background(), first.RefreshToken)
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.True(t, tokens.tokens[first.RefreshToken].Revoked, "presented token is revoked on rotation")

	// The revoked token can't be used again.
	_, err = svc.RefreshToken(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestRefreshExpiredToken(t *testing.T) {
	svc, _, tokens := newAuthFixture(t)
	user := seedUser(t, svc, "officer@example.com", "secret-password", "OFFICER")

	expired := "expired-token"
	require.NoError(t, tokens.Store(context.Background(), user.ID, expired, time.Now().Add(-time.Hour)))

	_, err := svc.RefreshToken(context.Background(), expired)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	seedUser(t, svc, "manager@example.com", "secret-password", "MANAGER")

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Email:     "manager@example.com",
		Password:  "other-password",
		FirstName: "Other",
		LastName:  "User",
		RoleType:  "OFFICER",
	})

	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user := seedUser(t, svc, "manager@example.com", "secret-password", "MANAGER")

	stored := users.users[user.ID]
	assert.NotEqual(t, "secret-password", stored.PasswordHash)
	assert.True(t, auth.CheckPassword("secret-password", stored.PasswordHash))
}
