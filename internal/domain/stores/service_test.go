package stores

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodorder-api/internal/apperr"
	"foodorder-api/internal/domain/users"
	"foodorder-api/internal/lib/clock"
)

type memRepo struct {
	stores map[uint]*Store
	hours  map[uint]*OpeningHour
	nextID uint
	writes int
}

func newMemRepo() *memRepo {
	return &memRepo{stores: map[uint]*Store{}, hours: map[uint]*OpeningHour{}}
}

func (r *memRepo) id() uint { r.nextID++; return r.nextID }

func (r *memRepo) UpdateIsOpen(_ context.Context, storeID uint, open bool) error {
	r.writes++
	r.stores[storeID].IsOpen = open
	return nil
}

func (r *memRepo) Create(_ context.Context, store *Store) error {
	for _, s := range r.stores {
		if s.Subdomain == store.Subdomain {
			return apperr.Conflict("subdomain already taken")
		}
	}
	store.ID = r.id()
	cp := *store
	r.stores[store.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.stores[id]; !ok {
		return apperr.NotFound("store not found")
	}
	delete(r.stores, id)
	for hid, h := range r.hours {
		if h.StoreID == id {
			delete(r.hours, hid)
		}
	}
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uint) (*Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return nil, apperr.NotFound("store not found")
	}
	cp := *s
	cp.OpeningHours = nil
	for _, h := range r.hours {
		if h.StoreID == id {
			cp.OpeningHours = append(cp.OpeningHours, *h)
		}
	}
	sort.Slice(cp.OpeningHours, func(i, j int) bool { return cp.OpeningHours[i].ID < cp.OpeningHours[j].ID })
	return &cp, nil
}

func (r *memRepo) FindBySubdomain(ctx context.Context, subdomain string) (*Store, error) {
	for id, s := range r.stores {
		if s.Subdomain == subdomain {
			return r.FindByID(ctx, id)
		}
	}
	return nil, apperr.NotFound("store not found")
}

func (r *memRepo) ListAuto(ctx context.Context) ([]Store, error) {
	var out []Store
	for id, s := range r.stores {
		if s.Mode == ModeAuto {
			full, _ := r.FindByID(ctx, id)
			out = append(out, *full)
		}
	}
	return out, nil
}

func (r *memRepo) SetMode(_ context.Context, storeID uint, mode Mode, open bool) error {
	r.stores[storeID].Mode = mode
	r.stores[storeID].IsOpen = open
	return nil
}

func (r *memRepo) SetSuspended(_ context.Context, storeID uint, suspended bool) error {
	r.stores[storeID].IsSuspended = suspended
	return nil
}

func (r *memRepo) FindHour(_ context.Context, id uint) (*OpeningHour, error) {
	h, ok := r.hours[id]
	if !ok {
		return nil, apperr.NotFound("opening hour not found")
	}
	cp := *h
	return &cp, nil
}

func (r *memRepo) CreateHour(_ context.Context, hour *OpeningHour) error {
	hour.ID = r.id()
	cp := *hour
	r.hours[hour.ID] = &cp
	return nil
}

func (r *memRepo) SaveHour(_ context.Context, hour *OpeningHour) error {
	cp := *hour
	r.hours[hour.ID] = &cp
	return nil
}

func (r *memRepo) DeleteHour(_ context.Context, id uint) error {
	delete(r.hours, id)
	return nil
}

type fixture struct {
	repo  *memRepo
	clock *clock.Manual
	svc   *Service
	owner Actor
	store *Store
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	repo := newMemRepo()
	clk := clock.NewManual(now)
	engine := NewEngine(repo, clk, time.UTC, nil, newNoopLogger())
	svc := NewService(repo, engine, newNoopLogger())

	store, err := svc.CreateStore(context.Background(), 10, "Pizza da Nonna", "", "")
	require.NoError(t, err)

	return &fixture{
		repo:  repo,
		clock: clk,
		svc:   svc,
		owner: Actor{UserID: 10, Role: users.RoleAdmin},
		store: store,
	}
}

func (f *fixture) isOpen(t *testing.T) bool {
	t.Helper()
	s, err := f.repo.FindByID(context.Background(), f.store.ID)
	require.NoError(t, err)
	return s.IsOpen
}

func TestService_CreateStore(t *testing.T) {
	f := newFixture(t, monday(9, 0))
	assert.Equal(t, "pizza-da-nonna", f.store.Subdomain)
	assert.Equal(t, ModeAuto, f.store.Mode)

	_, err := f.svc.CreateStore(context.Background(), 11, "Other", "Pizza da Nonna", "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.svc.CreateStore(context.Background(), 11, "Other", "other", "Mars/Olympus")
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = f.svc.CreateStore(context.Background(), 11, "  ", "", "")
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	found, err := f.svc.GetBySubdomain(context.Background(), "Pizza-Da-Nonna")
	require.NoError(t, err)
	assert.Equal(t, f.store.ID, found.ID)

	_, err = f.svc.GetBySubdomain(context.Background(), "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_OpeningHourMutationsReevaluate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday(9, 0))

	hour, err := f.svc.CreateOpeningHour(ctx, f.owner, f.store.ID, "Monday", "08:00", "18:00")
	require.NoError(t, err)
	assert.Equal(t, Monday, hour.Day)
	assert.True(t, f.isOpen(t), "create inside the window opens the store")

	closes := "08:30"
	_, err = f.svc.UpdateOpeningHour(ctx, f.owner, hour.ID, HourPatch{ClosesAt: &closes})
	require.NoError(t, err)
	assert.False(t, f.isOpen(t), "shrinking the window closes the store")

	opens, closes := "07:00", "20:00"
	_, err = f.svc.UpdateOpeningHour(ctx, f.owner, hour.ID, HourPatch{OpensAt: &opens, ClosesAt: &closes})
	require.NoError(t, err)
	assert.True(t, f.isOpen(t))

	require.NoError(t, f.svc.DeleteOpeningHour(ctx, f.owner, hour.ID))
	assert.False(t, f.isOpen(t), "deleting today's entry closes the store")
}

func TestService_RejectsDuplicateDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday(9, 0))

	_, err := f.svc.CreateOpeningHour(ctx, f.owner, f.store.ID, "monday", "08:00", "12:00")
	require.NoError(t, err)
	tuesday, err := f.svc.CreateOpeningHour(ctx, f.owner, f.store.ID, "tuesday", "08:00", "12:00")
	require.NoError(t, err)

	_, err = f.svc.CreateOpeningHour(ctx, f.owner, f.store.ID, "MONDAY", "13:00", "18:00")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	day := "monday"
	_, err = f.svc.UpdateOpeningHour(ctx, f.owner, tuesday.ID, HourPatch{Day: &day})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	same := "tuesday"
	_, err = f.svc.UpdateOpeningHour(ctx, f.owner, tuesday.ID, HourPatch{Day: &same})
	assert.NoError(t, err)
}

func TestService_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday(9, 0))

	_, err := f.svc.CreateOpeningHour(ctx, f.owner, f.store.ID, "someday", "08:00", "18:00")
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = f.svc.CreateOpeningHour(ctx, f.owner, f.store.ID, "monday", "8am", "18:00")
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = f.svc.CreateOpeningHour(ctx, f.owner, f.store.ID, "friday", "22:00", "02:00")
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = f.svc.CreateOpeningHour(ctx, f.owner, 999, "monday", "08:00", "18:00")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = f.svc.DeleteOpeningHour(ctx, f.owner, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_Authorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday(9, 0))

	stranger := Actor{UserID: 99, Role: users.RoleAdmin}
	_, err := f.svc.CreateOpeningHour(ctx, stranger, f.store.ID, "monday", "08:00", "18:00")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	customer := Actor{UserID: 10, Role: users.RoleCustomer}
	_, err = f.svc.SetManualOverride(ctx, customer, f.store.ID, true)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	platform := Actor{UserID: 1, Role: users.RoleSuperAdmin}
	_, err = f.svc.CreateOpeningHour(ctx, platform, f.store.ID, "monday", "08:00", "18:00")
	assert.NoError(t, err)

	_, err = f.svc.SetSuspended(ctx, f.owner, f.store.ID, true)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	s, err := f.svc.SetSuspended(ctx, platform, f.store.ID, true)
	require.NoError(t, err)
	assert.True(t, s.IsSuspended)
	assert.False(t, s.AcceptingOrders())
}

func TestService_ManualOverrideWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday(9, 0))

	_, err := f.svc.SetManualOverride(ctx, f.owner, f.store.ID, false)
	require.NoError(t, err)

	_, err = f.svc.CreateOpeningHour(ctx, f.owner, f.store.ID, "monday", "08:00", "18:00")
	require.NoError(t, err)
	assert.False(t, f.isOpen(t), "schedule must not override a manual close")

	n, err := f.svc.ReevaluateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, f.isOpen(t))

	store, err := f.svc.ClearManualOverride(ctx, f.owner, f.store.ID)
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, store.Mode)
	assert.True(t, store.IsOpen)
	assert.True(t, f.isOpen(t))
}

func TestService_ReevaluateAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday(9, 0))

	_, err := f.svc.CreateOpeningHour(ctx, f.owner, f.store.ID, "monday", "08:00", "18:00")
	require.NoError(t, err)
	require.True(t, f.isOpen(t))

	f.clock.Set(monday(19, 0))
	n, err := f.svc.ReevaluateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, f.isOpen(t))

	writes := f.repo.writes
	n, err = f.svc.ReevaluateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, writes, f.repo.writes, "repeated evaluation in the same state writes nothing")
}

func TestService_DeleteStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday(9, 0))
	_, err := f.svc.CreateOpeningHour(ctx, f.owner, f.store.ID, "monday", "08:00", "18:00")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteStore(ctx, f.store.ID))
	assert.Empty(t, f.repo.stores)
	assert.Empty(t, f.repo.hours)

	err = f.svc.DeleteStore(ctx, f.store.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
