package storesapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"foodorder-api/internal/apperr"
	"foodorder-api/internal/domain/stores"
	"foodorder-api/internal/domain/users"
)

type StoreServiceMock struct{ mock.Mock }

func storeOrNil(args mock.Arguments) (*stores.Store, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stores.Store), args.Error(1)
}

func hourOrNil(args mock.Arguments) (*stores.OpeningHour, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stores.OpeningHour), args.Error(1)
}

func (m *StoreServiceMock) Get(ctx context.Context, storeID uint) (*stores.Store, error) {
	return storeOrNil(m.Called(ctx, storeID))
}

func (m *StoreServiceMock) GetBySubdomain(ctx context.Context, subdomain string) (*stores.Store, error) {
	return storeOrNil(m.Called(ctx, subdomain))
}

func (m *StoreServiceMock) CreateOpeningHour(ctx context.Context, actor stores.Actor, storeID uint, day, opensAt, closesAt string) (*stores.OpeningHour, error) {
	return hourOrNil(m.Called(ctx, actor, storeID, day, opensAt, closesAt))
}

func (m *StoreServiceMock) UpdateOpeningHour(ctx context.Context, actor stores.Actor, hourID uint, patch stores.HourPatch) (*stores.OpeningHour, error) {
	return hourOrNil(m.Called(ctx, actor, hourID, patch))
}

func (m *StoreServiceMock) DeleteOpeningHour(ctx context.Context, actor stores.Actor, hourID uint) error {
	return m.Called(ctx, actor, hourID).Error(0)
}

func (m *StoreServiceMock) SetManualOverride(ctx context.Context, actor stores.Actor, storeID uint, open bool) (*stores.Store, error) {
	return storeOrNil(m.Called(ctx, actor, storeID, open))
}

func (m *StoreServiceMock) ClearManualOverride(ctx context.Context, actor stores.Actor, storeID uint) (*stores.Store, error) {
	return storeOrNil(m.Called(ctx, actor, storeID))
}

func (m *StoreServiceMock) SetSuspended(ctx context.Context, actor stores.Actor, storeID uint, suspended bool) (*stores.Store, error) {
	return storeOrNil(m.Called(ctx, actor, storeID, suspended))
}

func (m *StoreServiceMock) ReevaluateAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

var owner = stores.Actor{UserID: 7, Role: users.RoleAdmin}

func newRouter(svc *StoreServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, "foodorder.test", slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", owner.UserID)
		c.Set("role", owner.Role)
		c.Next()
	})
	r.GET("/stores/:id/status", h.GetStatus)
	r.GET("/s/:subdomain", h.GetBySubdomain)
	r.POST("/stores/:id/hours", h.CreateOpeningHour)
	r.PUT("/hours/:id", h.UpdateOpeningHour)
	r.DELETE("/hours/:id", h.DeleteOpeningHour)
	r.PUT("/stores/:id/override", h.SetOverride)
	r.DELETE("/stores/:id/override", h.ClearOverride)
	r.PUT("/stores/:id/suspension", h.SetSuspension)
	r.POST("/stores/reevaluate", h.ReevaluateAll)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleStore() *stores.Store {
	return &stores.Store{
		ID:        3,
		Name:      "Pizza Place",
		Subdomain: "pizza-place",
		Timezone:  "Europe/Berlin",
		IsOpen:    true,
		Mode:      stores.ModeAuto,
		OpeningHours: []stores.OpeningHour{
			{ID: 11, StoreID: 3, Day: stores.Monday, OpensAt: "09:00", ClosesAt: "17:00"},
		},
	}
}

func TestGetStatus(t *testing.T) {
	svc := new(StoreServiceMock)
	svc.On("Get", mock.Anything, uint(3)).Return(sampleStore(), nil)
	svc.On("Get", mock.Anything, uint(4)).Return(nil, apperr.NotFound("store not found"))
	r := newRouter(svc)

	w := do(r, http.MethodGet, "/stores/3/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"id": 3,
		"name": "Pizza Place",
		"subdomain": "pizza-place",
		"url": "https://pizza-place.foodorder.test",
		"timezone": "Europe/Berlin",
		"is_open": true,
		"mode": "auto",
		"is_suspended": false,
		"accepting_orders": true,
		"opening_hours": [{"id": 11, "day": "monday", "opens_at": "09:00", "closes_at": "17:00"}]
	}`, w.Body.String())

	w = do(r, http.MethodGet, "/stores/4/status", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"store not found"}`, w.Body.String())

	w = do(r, http.MethodGet, "/stores/abc/status", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBySubdomain(t *testing.T) {
	svc := new(StoreServiceMock)
	svc.On("GetBySubdomain", mock.Anything, "pizza-place").Return(sampleStore(), nil)
	r := newRouter(svc)

	w := do(r, http.MethodGet, "/s/pizza-place", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accepting_orders":true`)
}

func TestCreateOpeningHour(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		setup func(m *StoreServiceMock)
		want  int
	}{
		{
			name: "created",
			body: `{"day":"tuesday","opens_at":"10:00","closes_at":"22:00"}`,
			setup: func(m *StoreServiceMock) {
				m.On("CreateOpeningHour", mock.Anything, owner, uint(3), "tuesday", "10:00", "22:00").
					Return(&stores.OpeningHour{ID: 12, StoreID: 3, Day: stores.Tuesday, OpensAt: "10:00", ClosesAt: "22:00"}, nil)
			},
			want: http.StatusCreated,
		},
		{
			name:  "missing field",
			body:  `{"day":"tuesday","opens_at":"10:00"}`,
			setup: func(m *StoreServiceMock) {},
			want:  http.StatusBadRequest,
		},
		{
			name: "duplicate day",
			body: `{"day":"monday","opens_at":"10:00","closes_at":"22:00"}`,
			setup: func(m *StoreServiceMock) {
				m.On("CreateOpeningHour", mock.Anything, owner, uint(3), "monday", "10:00", "22:00").
					Return(nil, apperr.Conflict("store already has opening hours for this day"))
			},
			want: http.StatusConflict,
		},
		{
			name: "not the owner",
			body: `{"day":"friday","opens_at":"10:00","closes_at":"22:00"}`,
			setup: func(m *StoreServiceMock) {
				m.On("CreateOpeningHour", mock.Anything, owner, uint(3), "friday", "10:00", "22:00").
					Return(nil, apperr.Forbidden("not your store"))
			},
			want: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(StoreServiceMock)
			tt.setup(svc)

			w := do(newRouter(svc), http.MethodPost, "/stores/3/hours", tt.body)
			assert.Equal(t, tt.want, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestUpdateAndDeleteOpeningHour(t *testing.T) {
	svc := new(StoreServiceMock)
	closes := "23:00"
	svc.On("UpdateOpeningHour", mock.Anything, owner, uint(11), stores.HourPatch{ClosesAt: &closes}).
		Return(&stores.OpeningHour{ID: 11, StoreID: 3, Day: stores.Monday, OpensAt: "09:00", ClosesAt: "23:00"}, nil)
	svc.On("DeleteOpeningHour", mock.Anything, owner, uint(11)).Return(nil)
	svc.On("DeleteOpeningHour", mock.Anything, owner, uint(99)).Return(apperr.NotFound("opening hour not found"))
	r := newRouter(svc)

	w := do(r, http.MethodPut, "/hours/11", `{"closes_at":"23:00"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"closes_at":"23:00"`)

	w = do(r, http.MethodDelete, "/hours/11", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodDelete, "/hours/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOverride(t *testing.T) {
	svc := new(StoreServiceMock)
	closed := sampleStore()
	closed.Mode = stores.ModeManual
	closed.IsOpen = false
	svc.On("SetManualOverride", mock.Anything, owner, uint(3), false).Return(closed, nil)
	svc.On("ClearManualOverride", mock.Anything, owner, uint(3)).Return(sampleStore(), nil)
	r := newRouter(svc)

	w := do(r, http.MethodPut, "/stores/3/override", `{"is_open":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"manual"`)
	assert.Contains(t, w.Body.String(), `"is_open":false`)

	w = do(r, http.MethodPut, "/stores/3/override", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/stores/3/override", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"auto"`)
	svc.AssertExpectations(t)
}

func TestSetSuspension(t *testing.T) {
	svc := new(StoreServiceMock)
	suspended := sampleStore()
	suspended.IsSuspended = true
	svc.On("SetSuspended", mock.Anything, owner, uint(3), true).Return(suspended, nil)
	r := newRouter(svc)

	w := do(r, http.MethodPut, "/stores/3/suspension", `{"suspended":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accepting_orders":false`)

	w = do(r, http.MethodPut, "/stores/3/suspension", `{"suspended":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReevaluateAll(t *testing.T) {
	svc := new(StoreServiceMock)
	svc.On("ReevaluateAll", mock.Anything).Return(2, nil).Once()
	svc.On("ReevaluateAll", mock.Anything).Return(0, errors.New("db down")).Once()
	r := newRouter(svc)

	w := do(r, http.MethodPost, "/stores/reevaluate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"changed":2}`, w.Body.String())

	w = do(r, http.MethodPost, "/stores/reevaluate", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
