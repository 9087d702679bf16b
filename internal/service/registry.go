package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type registryEntry struct {
	planner  *Planner
	lastUsed time.Time
}

// PlannerRegistry hands out one Planner per browser session, created lazily.
// Idle planners are closed by EvictIdle and the registry never holds more
// than MaxPlanners at once.
type PlannerRegistry struct {
	cfg PlannerConfig

	mu       sync.Mutex
	planners map[uuid.UUID]*registryEntry
}

// NewPlannerRegistry returns a registry whose planners share cfg.
func NewPlannerRegistry(cfg PlannerConfig) *PlannerRegistry {
	return &PlannerRegistry{
		cfg:      cfg.withDefaults(),
		planners: make(map[uuid.UUID]*registryEntry),
	}
}

// Get returns the planner for session, creating it on first use. A full
// registry closes its least recently used planner to make room.
func (r *PlannerRegistry) Get(session uuid.UUID) (*Planner, error) {
	now := r.cfg.Clock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.planners[session]; ok {
		e.lastUsed = now
		return e.planner, nil
	}
	if len(r.planners) >= r.cfg.MaxPlanners {
		r.evictOldestLocked()
	}
	p, err := NewPlanner(session, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("service.PlannerRegistry.Get: %w", err)
	}
	r.planners[session] = &registryEntry{planner: p, lastUsed: now}
	return p, nil
}

// EvictIdle closes every planner not fetched within IdleTTL and returns how
// many were dropped. Planners in the middle of a submission are kept.
func (r *PlannerRegistry) EvictIdle() int {
	cutoff := r.cfg.Clock().Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.planners {
		if e.lastUsed.After(cutoff) || e.planner.State() == StateSubmitting {
			continue
		}
		e.planner.Close()
		delete(r.planners, id)
		n++
	}
	if n > 0 {
		r.cfg.Logger.Info("idle planners evicted", "count", n, "remaining", len(r.planners))
	}
	return n
}

// Run calls EvictIdle every interval until ctx is done. A non-positive
// interval sweeps at half the idle TTL.
func (r *PlannerRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = r.cfg.IdleTTL / 2
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.EvictIdle()
		}
	}
}

// Len returns the number of live planners.
func (r *PlannerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.planners)
}

// Close stops every planner's pending work.
func (r *PlannerRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.planners {
		e.planner.Close()
		delete(r.planners, id)
	}
}

func (r *PlannerRegistry) evictOldestLocked() {
	var (
		oldest uuid.UUID
		at     time.Time
		found  bool
	)
	for id, e := range r.planners {
		if e.planner.State() == StateSubmitting {
			continue
		}
		if !found || e.lastUsed.Before(at) {
			oldest, at, found = id, e.lastUsed, true
		}
	}
	if !found {
		return
	}
	r.planners[oldest].planner.Close()
	delete(r.planners, oldest)
}
