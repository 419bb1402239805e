package stores

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"foodorder-api/internal/apperr"
	"foodorder-api/internal/domain/users"
	"foodorder-api/internal/lib/sl"
)

// Repository is the persistence the store service needs. Implementations
// return apperr NotFound/Conflict for missing rows and unique violations.
type Repository interface {
	AvailabilityWriter
	Create(ctx context.Context, store *Store) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*Store, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*Store, error)
	ListAuto(ctx context.Context) ([]Store, error)
	SetMode(ctx context.Context, storeID uint, mode Mode, open bool) error
	SetSuspended(ctx context.Context, storeID uint, suspended bool) error

	FindHour(ctx context.Context, id uint) (*OpeningHour, error)
	CreateHour(ctx context.Context, hour *OpeningHour) error
	SaveHour(ctx context.Context, hour *OpeningHour) error
	DeleteHour(ctx context.Context, id uint) error
}

// Actor is the authenticated user performing an administrative action.
type Actor struct {
	UserID uint
	Role   string
}

type HourPatch struct {
	Day      *string
	OpensAt  *string
	ClosesAt *string
}

type Service struct {
	repo   Repository
	engine *Engine
	log    *slog.Logger
}

func NewService(repo Repository, engine *Engine, log *slog.Logger) *Service {
	return &Service{repo: repo, engine: engine, log: log}
}

func (s *Service) CreateStore(ctx context.Context, ownerID uint, name, subdomain, timezone string) (*Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.BadRequest("store name is required")
	}
	if strings.TrimSpace(subdomain) == "" {
		subdomain = name
	}
	sub := MakeSubdomain(subdomain)
	if sub == "" {
		return nil, apperr.BadRequest("invalid subdomain")
	}
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return nil, apperr.BadRequest("unknown timezone")
		}
	}

	store := &Store{
		OwnerID:   ownerID,
		Name:      name,
		Subdomain: sub,
		Timezone:  timezone,
		Mode:      ModeAuto,
	}
	if err := s.repo.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("stores.CreateStore: %w", err)
	}
	s.log.Info("store created", slog.Uint64("store_id", uint64(store.ID)), slog.String("subdomain", sub))
	return store, nil
}

// DeleteStore removes a store together with its opening hours.
func (s *Service) DeleteStore(ctx context.Context, storeID uint) error {
	if err := s.repo.Delete(ctx, storeID); err != nil {
		return fmt.Errorf("stores.DeleteStore: %w", err)
	}
	s.log.Info("store deleted", slog.Uint64("store_id", uint64(storeID)))
	return nil
}

func (s *Service) Get(ctx context.Context, storeID uint) (*Store, error) {
	return s.repo.FindByID(ctx, storeID)
}

func (s *Service) GetBySubdomain(ctx context.Context, subdomain string) (*Store, error) {
	sub := MakeSubdomain(subdomain)
	if sub == "" {
		return nil, apperr.NotFound("store not found")
	}
	store, err := s.repo.FindBySubdomain(ctx, sub)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, store.ID)
}

func (s *Service) CreateOpeningHour(ctx context.Context, actor Actor, storeID uint, day, opensAt, closesAt string) (*OpeningHour, error) {
	store, err := s.authorized(ctx, actor, storeID)
	if err != nil {
		return nil, err
	}

	d, err := ParseDay(day)
	if err != nil {
		return nil, apperr.BadRequest(err.Error())
	}
	opens, closes, err := ValidateWindow(opensAt, closesAt)
	if err != nil {
		return nil, apperr.BadRequest(err.Error())
	}
	if taken(store.OpeningHours, d, 0) {
		return nil, apperr.Conflict(fmt.Sprintf("store already has opening hours for %s", d))
	}

	hour := &OpeningHour{
		StoreID:  store.ID,
		Day:      d,
		OpensAt:  opens.String(),
		ClosesAt: closes.String(),
	}
	if err := s.repo.CreateHour(ctx, hour); err != nil {
		return nil, fmt.Errorf("stores.CreateOpeningHour: %w", err)
	}

	if err := s.reevaluate(ctx, store.ID); err != nil {
		return nil, err
	}
	return hour, nil
}

func (s *Service) UpdateOpeningHour(ctx context.Context, actor Actor, hourID uint, patch HourPatch) (*OpeningHour, error) {
	hour, err := s.repo.FindHour(ctx, hourID)
	if err != nil {
		return nil, err
	}
	store, err := s.authorized(ctx, actor, hour.StoreID)
	if err != nil {
		return nil, err
	}

	if patch.Day != nil {
		d, err := ParseDay(*patch.Day)
		if err != nil {
			return nil, apperr.BadRequest(err.Error())
		}
		if taken(store.OpeningHours, d, hour.ID) {
			return nil, apperr.Conflict(fmt.Sprintf("store already has opening hours for %s", d))
		}
		hour.Day = d
	}
	opensAt, closesAt := hour.OpensAt, hour.ClosesAt
	if patch.OpensAt != nil {
		opensAt = *patch.OpensAt
	}
	if patch.ClosesAt != nil {
		closesAt = *patch.ClosesAt
	}
	opens, closes, err := ValidateWindow(opensAt, closesAt)
	if err != nil {
		return nil, apperr.BadRequest(err.Error())
	}
	hour.OpensAt, hour.ClosesAt = opens.String(), closes.String()

	if err := s.repo.SaveHour(ctx, hour); err != nil {
		return nil, fmt.Errorf("stores.UpdateOpeningHour: %w", err)
	}

	if err := s.reevaluate(ctx, store.ID); err != nil {
		return nil, err
	}
	return hour, nil
}

func (s *Service) DeleteOpeningHour(ctx context.Context, actor Actor, hourID uint) error {
	hour, err := s.repo.FindHour(ctx, hourID)
	if err != nil {
		return err
	}
	if _, err := s.authorized(ctx, actor, hour.StoreID); err != nil {
		return err
	}

	if err := s.repo.DeleteHour(ctx, hour.ID); err != nil {
		return fmt.Errorf("stores.DeleteOpeningHour: %w", err)
	}
	return s.reevaluate(ctx, hour.StoreID)
}

// SetManualOverride pins IsOpen to open until ClearManualOverride is called.
func (s *Service) SetManualOverride(ctx context.Context, actor Actor, storeID uint, open bool) (*Store, error) {
	store, err := s.authorized(ctx, actor, storeID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetMode(ctx, store.ID, ModeManual, open); err != nil {
		return nil, fmt.Errorf("stores.SetManualOverride: %w", err)
	}
	store.Mode, store.IsOpen = ModeManual, open

	s.log.Info("store manual override set", slog.Uint64("store_id", uint64(store.ID)), slog.Bool("is_open", open))
	return store, nil
}

// ClearManualOverride returns the store to schedule-driven availability and
// derives IsOpen right away.
func (s *Service) ClearManualOverride(ctx context.Context, actor Actor, storeID uint) (*Store, error) {
	store, err := s.authorized(ctx, actor, storeID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetMode(ctx, store.ID, ModeAuto, store.IsOpen); err != nil {
		return nil, fmt.Errorf("stores.ClearManualOverride: %w", err)
	}
	store.Mode = ModeAuto

	if _, err := s.engine.Reevaluate(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Service) SetSuspended(ctx context.Context, actor Actor, storeID uint, suspended bool) (*Store, error) {
	if actor.Role != users.RoleSuperAdmin {
		return nil, apperr.Forbidden("only platform administrators can suspend stores")
	}
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetSuspended(ctx, store.ID, suspended); err != nil {
		return nil, fmt.Errorf("stores.SetSuspended: %w", err)
	}
	store.IsSuspended = suspended
	return store, nil
}

// ReevaluateAll runs the engine over every schedule-driven store. Failures are
// logged and skipped; the number of stores that flipped is returned.
func (s *Service) ReevaluateAll(ctx context.Context) (int, error) {
	list, err := s.repo.ListAuto(ctx)
	if err != nil {
		return 0, fmt.Errorf("stores.ReevaluateAll: %w", err)
	}

	changed := 0
	for i := range list {
		ok, err := s.engine.Reevaluate(ctx, &list[i])
		if err != nil {
			s.log.Error("failed to reevaluate store", slog.Uint64("store_id", uint64(list[i].ID)), sl.Err(err))
			continue
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

func (s *Service) reevaluate(ctx context.Context, storeID uint) error {
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		return err
	}
	_, err = s.engine.Reevaluate(ctx, store)
	return err
}

// Authorize loads the store and checks that actor may manage it.
func (s *Service) Authorize(ctx context.Context, actor Actor, storeID uint) (*Store, error) {
	return s.authorized(ctx, actor, storeID)
}

func (s *Service) authorized(ctx context.Context, actor Actor, storeID uint) (*Store, error) {
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case users.RoleSuperAdmin:
		return store, nil
	case users.RoleAdmin:
		if store.OwnerID == actor.UserID {
			return store, nil
		}
	}
	return nil, apperr.Forbidden("you do not manage this store")
}

func taken(hours []OpeningHour, day Day, except uint) bool {
	for _, h := range hours {
		if h.ID != except && strings.EqualFold(string(h.Day), string(day)) {
			return true
		}
	}
	return false
}
