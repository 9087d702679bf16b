// Package repo contains the persistence backends for the trip slot: the one
// JSON-serialised TripRecord each session hands from the planning page to the
// review page. Each backend has its own file; no business logic lives here.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/eldplan/internal/domain"
)

// LocalSession is the session key used by single-user front-ends (the CLI).
var LocalSession = uuid.Nil

// TripSlotRepo defines the persistence operations for the per-session trip slot.
// The service layer depends on this interface, not a concrete backend.
type TripSlotRepo interface {
	// Save writes rec into the session's slot, overwriting any earlier value.
	Save(ctx context.Context, sessionID uuid.UUID, rec domain.TripRecord) error

	// Load returns the record in the session's slot.
	// Returns domain.ErrNotFound if the slot is empty.
	Load(ctx context.Context, sessionID uuid.UUID) (domain.TripRecord, error)

	// Clear empties the session's slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context, sessionID uuid.UUID) error
}

// memoryTripSlotRepo keeps serialised records in process memory.
// Records are stored as JSON so callers never share backing arrays.
type memoryTripSlotRepo struct {
	mu    sync.RWMutex
	slots map[uuid.UUID][]byte
}

// NewMemoryTripSlotRepo constructs an in-process TripSlotRepo.
func NewMemoryTripSlotRepo() TripSlotRepo {
	return &memoryTripSlotRepo{slots: make(map[uuid.UUID][]byte)}
}

func (r *memoryTripSlotRepo) Save(_ context.Context, sessionID uuid.UUID, rec domain.TripRecord) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("repo.MemoryTripSlotRepo.Save: %w", err)
	}
	r.mu.Lock()
	r.slots[sessionID] = raw
	r.mu.Unlock()
	return nil
}

func (r *memoryTripSlotRepo) Load(_ context.Context, sessionID uuid.UUID) (domain.TripRecord, error) {
	r.mu.RLock()
	raw, ok := r.slots[sessionID]
	r.mu.RUnlock()
	if !ok {
		return domain.TripRecord{}, fmt.Errorf("repo.MemoryTripSlotRepo.Load: %w", domain.ErrNotFound)
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("repo.MemoryTripSlotRepo.Load: %w", err)
	}
	return rec, nil
}

func (r *memoryTripSlotRepo) Clear(_ context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	delete(r.slots, sessionID)
	r.mu.Unlock()
	return nil
}

func encodeRecord(rec domain.TripRecord) ([]byte, error) {
	if rec.Locations == nil {
		rec.Locations = []domain.Location{}
	}
	return json.Marshal(rec)
}

func decodeRecord(raw []byte) (domain.TripRecord, error) {
	var rec domain.TripRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.TripRecord{}, fmt.Errorf("decode trip record: %w", err)
	}
	return rec, nil
}
