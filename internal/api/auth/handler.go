package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"foodorder-api/internal/api/respond"
	"foodorder-api/internal/apperr"
	"foodorder-api/internal/domain/stores"
	"foodorder-api/internal/domain/subscriptions"
	"foodorder-api/internal/domain/users"
	"foodorder-api/internal/lib/clock"
	"foodorder-api/internal/lib/sl"
)

const tokenTTL = 24 * time.Hour

type UserStore interface {
	Create(ctx context.Context, u *users.User) error
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByID(ctx context.Context, id uint) (*users.User, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
	Delete(ctx context.Context, id uint) error
}

type StoreCreator interface {
	CreateStore(ctx context.Context, ownerID uint, name, subdomain, timezone string) (*stores.Store, error)
	DeleteStore(ctx context.Context, storeID uint) error
}

type TrialStarter interface {
	StartTrial(ctx context.Context, userID uint) (*subscriptions.Subscription, error)
}

type Handler struct {
	users      UserStore
	stores     StoreCreator
	trials     TrialStarter
	jwtSecret  []byte
	baseDomain string
	clock      clock.Clock
	log        *slog.Logger
}

func NewHandler(u UserStore, s StoreCreator, t TrialStarter, jwtSecret, baseDomain string, clk clock.Clock, log *slog.Logger) *Handler {
	return &Handler{
		users:      u,
		stores:     s,
		trials:     t,
		jwtSecret:  []byte(jwtSecret),
		baseDomain: baseDomain,
		clock:      clk,
		log:        log,
	}
}

func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isEmailValid(email string) bool {
	return emailPattern.MatchString(email)
}

// Register signs up a store owner: the admin user, its store and the trial.
func (h *Handler) Register(c *gin.Context) {
	const op = "auth.Register"

	var input struct {
		Name      string `json:"name" binding:"required"`
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
		StoreName string `json:"store_name" binding:"required"`
		Subdomain string `json:"subdomain"`
		Timezone  string `json:"timezone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !isPasswordStrong(input.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long and contain both letters and numbers"})
		return
	}
	if !isEmailValid(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	ctx := c.Request.Context()
	user := &users.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: string(hashed),
		Role:     users.RoleAdmin,
	}
	if err := h.users.Create(ctx, user); err != nil {
		respond.Error(c, h.log, op, err)
		return
	}

	store, err := h.stores.CreateStore(ctx, user.ID, input.StoreName, input.Subdomain, input.Timezone)
	if err != nil {
		h.undoRegistration(ctx, user.ID, nil)
		respond.Error(c, h.log, op, err)
		return
	}

	sub, err := h.trials.StartTrial(ctx, user.ID)
	if err != nil {
		h.undoRegistration(ctx, user.ID, store)
		respond.Error(c, h.log, op, err)
		return
	}

	h.log.Info("store owner registered", slog.Uint64("user_id", uint64(user.ID)), slog.Uint64("store_id", uint64(store.ID)))
	c.JSON(http.StatusCreated, gin.H{
		"message":      "User registered successfully",
		"user_id":      user.ID,
		"store":        store,
		"store_url":    stores.PublicURL(store.Subdomain, h.baseDomain),
		"subscription": sub,
	})
}

// undoRegistration removes what Register created so the email can be used again.
func (h *Handler) undoRegistration(ctx context.Context, userID uint, store *stores.Store) {
	if store != nil {
		if err := h.stores.DeleteStore(ctx, store.ID); err != nil {
			h.log.Error("failed to roll back store", slog.Uint64("store_id", uint64(store.ID)), sl.Err(err))
		}
	}
	if err := h.users.Delete(ctx, userID); err != nil {
		h.log.Error("failed to roll back registration", slog.Uint64("user_id", uint64(userID)), sl.Err(err))
	}
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), input.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		respond.Error(c, h.log, "auth.Login", err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := IssueToken(h.jwtSecret, user, h.clock.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	const op = "auth.ChangePassword"

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var body struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if !isPasswordStrong(body.NewPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password must be at least 8 characters with letters and numbers"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.OldPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Old password is incorrect"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	if err := h.users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		respond.Error(c, h.log, op, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// IssueToken signs the HS256 session token read by the auth middleware.
func IssueToken(secret []byte, user *users.User, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("auth.IssueToken: JWT secret not configured")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     now.Add(tokenTTL).Unix(),
	})
	return token.SignedString(secret)
}
