package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/booking-api/internal/models"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
)

type authServiceMock struct {
	registerReq   models.RegisterRequest
	registerErr   error
	loginReq      models.LoginRequest
	loginErr      error
	meUserID      string
	registerCalls int
}

func (m *authServiceMock) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	m.registerCalls++
	m.registerReq = req
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return &models.User{ID: "u-1", Email: req.Email, FullName: req.FullName, Role: models.RoleUser}, nil
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.loginReq = req
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &models.LoginResponse{AccessToken: "token", TokenType: "bearer"}, nil
}

func (m *authServiceMock) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	m.meUserID = userID
	return &models.UserInfo{ID: userID}, nil
}

func (m *authServiceMock) Profile(ctx context.Context, userID string) (*models.PublicProfile, error) {
	if userID != "u-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return &models.PublicProfile{ID: userID, FullName: "Ann"}, nil
}

func TestAuthHandlerRegister(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc)

	c, w := newTestContext(http.MethodPost, "/users/", `{"email":"a@b.io","password":"secret1","full_name":"Ann"}`, nil)
	h.Register(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "a@b.io", svc.registerReq.Email)
	assert.NotContains(t, w.Body.String(), "secret1")
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{registerErr: appErrors.Clone(appErrors.ErrConflict, "email already registered")})

	c, w := newTestContext(http.MethodPost, "/users/", `{"email":"a@b.io","password":"secret1","full_name":"Ann"}`, nil)
	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandlerRegisterMalformedBody(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc)

	c, w := newTestContext(http.MethodPost, "/users/", `{"email":`, nil)
	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.registerCalls)
}

func TestAuthHandlerLoginAcceptsPasswordForm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &authServiceMock{}
	h := NewAuthHandler(svc)

	form := url.Values{"username": {"a@b.io"}, "password": {"secret1"}}
	c, w := newTestContext(http.MethodPost, "/login/access-token", "", nil)
	c.Request, _ = http.NewRequest(http.MethodPost, "/login/access-token", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@b.io", svc.loginReq.Email)
	assert.Equal(t, "secret1", svc.loginReq.Password)
}

func TestAuthHandlerLoginAcceptsJSON(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc)

	c, w := newTestContext(http.MethodPost, "/login/access-token", `{"email":"a@b.io","password":"secret1"}`, nil)
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@b.io", svc.loginReq.Email)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "bearer", data["token_type"])
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{loginErr: appErrors.ErrInvalidCredentials})

	c, w := newTestContext(http.MethodPost, "/login/access-token", `{"email":"a@b.io","password":"nope"}`, nil)
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, w))
}

func TestAuthHandlerMe(t *testing.T) {
	svc := &authServiceMock{}
	h := NewAuthHandler(svc)

	c, w := newTestContext(http.MethodGet, "/users/me", "", customerClaims)
	h.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "customer-1", svc.meUserID)

	c, w = newTestContext(http.MethodGet, "/users/me", "", nil)
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerProfile(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{})

	c, w := newTestContext(http.MethodGet, "/users/u-1", "", nil, gin.Param{Key: "id", Value: "u-1"})
	h.Profile(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "email")

	c, w = newTestContext(http.MethodGet, "/users/u-2", "", nil, gin.Param{Key: "id", Value: "u-2"})
	h.Profile(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
