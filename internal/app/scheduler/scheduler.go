// Package scheduler runs the periodic subscription sweep and store
// reevaluation for the lifetime of the server.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"foodorder-api/internal/lib/sl"
)

type SubscriptionSweeper interface {
	ExpireOverdue(ctx context.Context) (int, error)
}

type StoreReevaluator interface {
	ReevaluateAll(ctx context.Context) (int, error)
}

type Scheduler struct {
	subs               SubscriptionSweeper
	stores             StoreReevaluator
	sweepInterval      time.Duration
	reevaluateInterval time.Duration
	log                *slog.Logger
}

func New(subs SubscriptionSweeper, stores StoreReevaluator, sweepEvery, reevaluateEvery time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		subs:               subs,
		stores:             stores,
		sweepInterval:      sweepEvery,
		reevaluateInterval: reevaluateEvery,
		log:                log,
	}
}

// Run blocks until ctx is cancelled. Each job runs once immediately and then
// on its own ticker.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.loop(ctx, s.sweepInterval, s.runSweep)
	}()
	go func() {
		defer wg.Done()
		s.loop(ctx, s.reevaluateInterval, s.runReevaluate)
	}()
	wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, every time.Duration, job func(context.Context)) {
	job(ctx)
	if every <= 0 {
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

func (s *Scheduler) runSweep(ctx context.Context) {
	n, err := s.subs.ExpireOverdue(ctx)
	if err != nil {
		s.log.Error("subscription sweep failed", sl.Err(err))
		return
	}
	if n > 0 {
		s.log.Info("subscription sweep finished", slog.Int("expired", n))
	}
}

func (s *Scheduler) runReevaluate(ctx context.Context) {
	n, err := s.stores.ReevaluateAll(ctx)
	if err != nil {
		s.log.Error("store reevaluation failed", sl.Err(err))
		return
	}
	if n > 0 {
		s.log.Info("store reevaluation finished", slog.Int("changed", n))
	}
}
