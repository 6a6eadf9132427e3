package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/internal/repository"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
)

type mockAuthRepo struct {
	users            map[string]*models.User
	createErr        error
	lastLoginUpdated bool
}

func newMockAuthRepo(users ...*models.User) *mockAuthRepo {
	m := &mockAuthRepo{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "new-user"
	m.users[user.ID] = user
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "test", BcryptCost: bcrypt.MinCost})
}

func TestAuthServiceRegister(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), models.RegisterRequest{Email: " Ana@Example.com ", Password: "secret1", FullName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
}

func TestAuthServiceRegisterDuplicate(t *testing.T) {
	repo := newMockAuthRepo()
	repo.createErr = repository.ErrDuplicate
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "ana@example.com", Password: "secret1", FullName: "Ana"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := newTestAuthService(newMockAuthRepo())

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "nope", Password: "1", FullName: ""})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	repo := newMockAuthRepo(&models.User{ID: "123", Email: "user@example.com", PasswordHash: string(password), Active: true, Role: models.RoleOwner})
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, models.RoleOwner, res.User.Role)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "123", claims.UserID)
	assert.Equal(t, "test", claims.Issuer)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	repo := newMockAuthRepo(&models.User{ID: "123", Email: "user@example.com", PasswordHash: string(password), Active: true})
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	repo := newMockAuthRepo(&models.User{ID: "123", Email: "user@example.com", PasswordHash: string(password), Active: false})
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

type ownerRequestsByUser map[string]*models.OwnerRequest

func (m ownerRequestsByUser) FindByUser(ctx context.Context, userID string) (*models.OwnerRequest, error) {
	if req, ok := m[userID]; ok {
		return req, nil
	}
	return nil, sql.ErrNoRows
}

func TestAuthServiceMeReportsOwnerRequest(t *testing.T) {
	repo := newMockAuthRepo(
		&models.User{ID: "u1", Role: models.RoleUser, Active: true},
		&models.User{ID: "u2", Role: models.RoleUser, Active: true},
	)
	svc := newTestAuthService(repo).WithOwnerRequests(ownerRequestsByUser{
		"u1": {UserID: "u1", BusinessName: "Salon", Status: models.OwnerRequestPending},
	})

	info, err := svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, info.OwnerRequest)
	assert.Equal(t, models.OwnerRequestPending, info.OwnerRequest.Status)

	info, err = svc.Me(context.Background(), "u2")
	require.NoError(t, err)
	assert.Nil(t, info.OwnerRequest)

	_, err = svc.Me(context.Background(), "ghost")
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestAuthServiceProfileHidesPrivateFields(t *testing.T) {
	repo := newMockAuthRepo(
		&models.User{ID: "u1", Email: "ana@example.com", FullName: "Ana", Role: models.RoleUser, Active: true},
		&models.User{ID: "u2", FullName: "Gone", Active: false},
	)
	svc := newTestAuthService(repo)

	profile, err := svc.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, &models.PublicProfile{ID: "u1", FullName: "Ana"}, profile)

	_, err = svc.Profile(context.Background(), "u2")
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	svc := newTestAuthService(newMockAuthRepo())
	other := NewAuthService(newMockAuthRepo(), nil, nil, AuthConfig{AccessTokenSecret: "other"})
	token, _, err := other.issueToken(&models.User{ID: "u1", Role: models.RoleUser})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsExpiredAndForeignIssuer(t *testing.T) {
	svc := newTestAuthService(newMockAuthRepo())
	user := &models.User{ID: "u1", Role: models.RoleUser}

	issued := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	token, exp, err := svc.issueToken(user)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), exp)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(token)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	foreign := NewAuthService(newMockAuthRepo(), nil, nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "someone-else"})
	token, _, err = foreign.issueToken(user)
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
