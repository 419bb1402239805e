package storesapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder-api/internal/api/respond"
	"foodorder-api/internal/domain/stores"
)

type StoreService interface {
	Get(ctx context.Context, storeID uint) (*stores.Store, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*stores.Store, error)
	CreateOpeningHour(ctx context.Context, actor stores.Actor, storeID uint, day, opensAt, closesAt string) (*stores.OpeningHour, error)
	UpdateOpeningHour(ctx context.Context, actor stores.Actor, hourID uint, patch stores.HourPatch) (*stores.OpeningHour, error)
	DeleteOpeningHour(ctx context.Context, actor stores.Actor, hourID uint) error
	SetManualOverride(ctx context.Context, actor stores.Actor, storeID uint, open bool) (*stores.Store, error)
	ClearManualOverride(ctx context.Context, actor stores.Actor, storeID uint) (*stores.Store, error)
	SetSuspended(ctx context.Context, actor stores.Actor, storeID uint, suspended bool) (*stores.Store, error)
	ReevaluateAll(ctx context.Context) (int, error)
}

type Handler struct {
	stores     StoreService
	baseDomain string
	log        *slog.Logger
}

func NewHandler(s StoreService, baseDomain string, log *slog.Logger) *Handler {
	return &Handler{stores: s, baseDomain: baseDomain, log: log}
}

func actor(c *gin.Context) stores.Actor {
	return stores.Actor{UserID: c.GetUint("user_id"), Role: c.GetString("role")}
}

func (h *Handler) GetStatus(c *gin.Context) {
	id, err := respond.IDParam(c, "id")
	if err != nil {
		respond.Error(c, h.log, "storesapi.GetStatus", err)
		return
	}
	store, err := h.stores.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, h.log, "storesapi.GetStatus", err)
		return
	}
	c.JSON(http.StatusOK, h.statusOf(store))
}

func (h *Handler) GetBySubdomain(c *gin.Context) {
	store, err := h.stores.GetBySubdomain(c.Request.Context(), c.Param("subdomain"))
	if err != nil {
		respond.Error(c, h.log, "storesapi.GetBySubdomain", err)
		return
	}
	c.JSON(http.StatusOK, h.statusOf(store))
}

func (h *Handler) CreateOpeningHour(c *gin.Context) {
	const op = "storesapi.CreateOpeningHour"

	storeID, err := respond.IDParam(c, "id")
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	var body struct {
		Day      string `json:"day" binding:"required"`
		OpensAt  string `json:"opens_at" binding:"required"`
		ClosesAt string `json:"closes_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day, opens_at and closes_at are required"})
		return
	}

	hour, err := h.stores.CreateOpeningHour(c.Request.Context(), actor(c), storeID, body.Day, body.OpensAt, body.ClosesAt)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusCreated, toHourDTO(*hour))
}

func (h *Handler) UpdateOpeningHour(c *gin.Context) {
	const op = "storesapi.UpdateOpeningHour"

	hourID, err := respond.IDParam(c, "id")
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	var body struct {
		Day      *string `json:"day"`
		OpensAt  *string `json:"opens_at"`
		ClosesAt *string `json:"closes_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	hour, err := h.stores.UpdateOpeningHour(c.Request.Context(), actor(c), hourID, stores.HourPatch{
		Day:      body.Day,
		OpensAt:  body.OpensAt,
		ClosesAt: body.ClosesAt,
	})
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusOK, toHourDTO(*hour))
}

func (h *Handler) DeleteOpeningHour(c *gin.Context) {
	const op = "storesapi.DeleteOpeningHour"

	hourID, err := respond.IDParam(c, "id")
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	if err := h.stores.DeleteOpeningHour(c.Request.Context(), actor(c), hourID); err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetOverride(c *gin.Context) {
	const op = "storesapi.SetOverride"

	storeID, err := respond.IDParam(c, "id")
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	var body struct {
		IsOpen *bool `json:"is_open" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_open is required"})
		return
	}

	store, err := h.stores.SetManualOverride(c.Request.Context(), actor(c), storeID, *body.IsOpen)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusOK, h.statusOf(store))
}

func (h *Handler) ClearOverride(c *gin.Context) {
	const op = "storesapi.ClearOverride"

	storeID, err := respond.IDParam(c, "id")
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	store, err := h.stores.ClearManualOverride(c.Request.Context(), actor(c), storeID)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusOK, h.statusOf(store))
}

func (h *Handler) SetSuspension(c *gin.Context) {
	const op = "storesapi.SetSuspension"

	storeID, err := respond.IDParam(c, "id")
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	var body struct {
		Suspended *bool `json:"suspended" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "suspended is required"})
		return
	}

	store, err := h.stores.SetSuspended(c.Request.Context(), actor(c), storeID, *body.Suspended)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusOK, h.statusOf(store))
}

func (h *Handler) ReevaluateAll(c *gin.Context) {
	changed, err := h.stores.ReevaluateAll(c.Request.Context())
	if err != nil {
		respond.Error(c, h.log, "storesapi.ReevaluateAll", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}
