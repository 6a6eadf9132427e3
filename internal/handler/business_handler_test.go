package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/booking-api/internal/models"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
)

type businessServiceMock struct {
	createReq     models.CreateBusinessRequest
	updateReq     models.UpdateBusinessRequest
	lastID        string
	lastClaims    *models.JWTClaims
	publishErr    error
	detailErr     error
	published     []models.Business
	listMineOwner string
	assignedTo    string
}

func (m *businessServiceMock) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateBusinessRequest) (*models.Business, error) {
	m.createReq = req
	m.lastClaims = claims
	return &models.Business{ID: "b-1", OwnerID: claims.UserID, Name: req.Name, Status: models.BusinessDraft}, nil
}

func (m *businessServiceMock) AssignToOwner(ctx context.Context, claims *models.JWTClaims, ownerID string, req models.CreateBusinessRequest) (*models.Business, error) {
	m.createReq = req
	m.lastClaims = claims
	m.assignedTo = ownerID
	return &models.Business{ID: "b-2", OwnerID: ownerID, Name: req.Name, Status: models.BusinessDraft}, nil
}

func (m *businessServiceMock) Update(ctx context.Context, id string, claims *models.JWTClaims, req models.UpdateBusinessRequest) (*models.Business, error) {
	m.lastID = id
	m.updateReq = req
	return &models.Business{ID: id}, nil
}

func (m *businessServiceMock) Publish(ctx context.Context, id string, claims *models.JWTClaims) (*models.Business, error) {
	m.lastID = id
	if m.publishErr != nil {
		return nil, m.publishErr
	}
	return &models.Business{ID: id, Status: models.BusinessPublished}, nil
}

func (m *businessServiceMock) ListMine(ctx context.Context, ownerID string) ([]models.Business, error) {
	m.listMineOwner = ownerID
	return []models.Business{{ID: "b-1"}}, nil
}

func (m *businessServiceMock) ListPublished(ctx context.Context) ([]models.Business, error) {
	return m.published, nil
}

func (m *businessServiceMock) Detail(ctx context.Context, id string, claims *models.JWTClaims) (*models.BusinessDetail, error) {
	m.lastID = id
	m.lastClaims = claims
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	return &models.BusinessDetail{Business: models.Business{ID: id}}, nil
}

func TestBusinessHandlerCreate(t *testing.T) {
	svc := &businessServiceMock{}
	h := NewBusinessHandler(svc)

	c, w := newTestContext(http.MethodPost, "/businesses/my-business", `{"name":"Cuts","appointment_mode":"per_employee"}`, ownerClaims)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Cuts", svc.createReq.Name)
	assert.Equal(t, models.ModePerEmployee, svc.createReq.AppointmentMode)
	assert.Equal(t, "owner-1", svc.lastClaims.UserID)
}

func TestBusinessHandlerAssign(t *testing.T) {
	svc := &businessServiceMock{}
	h := NewBusinessHandler(svc)

	c, w := newTestContext(http.MethodPost, "/businesses/admin/assign-business?owner_id=owner-7",
		`{"name":"Salon","description":"Cuts","address":"Main St 1"}`, adminClaims)
	h.Assign(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "owner-7", svc.assignedTo)
	assert.Equal(t, "Main St 1", svc.createReq.Address)
	assert.Equal(t, "admin-1", svc.lastClaims.UserID)
}

func TestBusinessHandlerCreateRequiresAuth(t *testing.T) {
	h := NewBusinessHandler(&businessServiceMock{})

	c, w := newTestContext(http.MethodPost, "/businesses/my-business", `{"name":"Cuts"}`, nil)
	h.Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBusinessHandlerUpdatePartial(t *testing.T) {
	svc := &businessServiceMock{}
	h := NewBusinessHandler(svc)

	c, w := newTestContext(http.MethodPut, "/businesses/my-business/b-1", `{"address":"Main St 1"}`, ownerClaims, gin.Param{Key: "id", Value: "b-1"})
	h.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b-1", svc.lastID)
	require.NotNil(t, svc.updateReq.Address)
	assert.Equal(t, "Main St 1", *svc.updateReq.Address)
	assert.Nil(t, svc.updateReq.Name)
}

func TestBusinessHandlerPublishWithoutSchedule(t *testing.T) {
	h := NewBusinessHandler(&businessServiceMock{publishErr: appErrors.ErrScheduleNotConfigured})

	c, w := newTestContext(http.MethodPost, "/businesses/my-business/b-1/publish", "", ownerClaims, gin.Param{Key: "id", Value: "b-1"})
	h.Publish(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "SCHEDULE_NOT_CONFIGURED", errorCode(t, w))
}

func TestBusinessHandlerListMine(t *testing.T) {
	svc := &businessServiceMock{}
	h := NewBusinessHandler(svc)

	c, w := newTestContext(http.MethodGet, "/businesses/my-businesses", "", ownerClaims)
	h.ListMine(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner-1", svc.listMineOwner)
}

func TestBusinessHandlerListPublishedEmptyArray(t *testing.T) {
	h := NewBusinessHandler(&businessServiceMock{published: []models.Business{}})

	c, w := newTestContext(http.MethodGet, "/businesses/", "", nil)
	h.ListPublished(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decodeEnvelope(t, w)["data"])
}

func TestBusinessHandlerDetailAnonymous(t *testing.T) {
	svc := &businessServiceMock{detailErr: appErrors.Clone(appErrors.ErrNotFound, "business not found")}
	h := NewBusinessHandler(svc)

	c, w := newTestContext(http.MethodGet, "/businesses/b-9", "", nil, gin.Param{Key: "id", Value: "b-9"})
	h.Detail(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Nil(t, svc.lastClaims)
	assert.Equal(t, "b-9", svc.lastID)
}
