package stores

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"foodorder-api/internal/lib/clock"
	"foodorder-api/internal/metrics"
)

// AvailabilityWriter persists the derived open/closed flag.
type AvailabilityWriter interface {
	UpdateIsOpen(ctx context.Context, storeID uint, open bool) error
}

// Engine keeps Store.IsOpen in line with the weekly schedule and the current time.
type Engine struct {
	writer     AvailabilityWriter
	clock      clock.Clock
	defaultLoc *time.Location
	metrics    *metrics.Metrics
	log        *slog.Logger
}

func NewEngine(writer AvailabilityWriter, clk clock.Clock, defaultLoc *time.Location, m *metrics.Metrics, log *slog.Logger) *Engine {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &Engine{
		writer:     writer,
		clock:      clk,
		defaultLoc: defaultLoc,
		metrics:    m,
		log:        log,
	}
}

// Reevaluate recomputes store.IsOpen from its OpeningHours. Stores in manual
// mode are left alone. The flag is written only when it changes; store is
// updated in place and changed reports whether a write happened.
func (e *Engine) Reevaluate(ctx context.Context, store *Store) (bool, error) {
	if store.Manual() {
		return false, nil
	}

	open := OpenAt(store.OpeningHours, e.clock.Now(), e.location(store))
	if open == store.IsOpen {
		return false, nil
	}

	if err := e.writer.UpdateIsOpen(ctx, store.ID, open); err != nil {
		return false, fmt.Errorf("stores.Reevaluate: %w", err)
	}
	store.IsOpen = open

	e.metrics.StoreTransition(open)
	e.log.Info("store availability changed",
		slog.Uint64("store_id", uint64(store.ID)),
		slog.Bool("is_open", open),
	)
	return true, nil
}

func (e *Engine) location(store *Store) *time.Location {
	if store.Timezone == "" {
		return e.defaultLoc
	}
	loc, err := time.LoadLocation(store.Timezone)
	if err != nil {
		e.log.Warn("unknown store timezone, using default",
			slog.Uint64("store_id", uint64(store.ID)),
			slog.String("timezone", store.Timezone),
		)
		return e.defaultLoc
	}
	return loc
}
