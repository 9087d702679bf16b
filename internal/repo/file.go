package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/eldplan/internal/domain"
)

// fileTripSlotRepo keeps every slot in one JSON document on disk, keyed by
// session id. Writes go to a temp file that is renamed into place.
type fileTripSlotRepo struct {
	mu   sync.Mutex
	path string
}

// NewFileTripSlotRepo constructs a TripSlotRepo stored at path.
// The file is created on first Save.
func NewFileTripSlotRepo(path string) TripSlotRepo {
	return &fileTripSlotRepo{path: path}
}

func (r *fileTripSlotRepo) Save(_ context.Context, sessionID uuid.UUID, rec domain.TripRecord) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("repo.FileTripSlotRepo.Save: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.readLocked()
	if err != nil {
		return fmt.Errorf("repo.FileTripSlotRepo.Save: %w", err)
	}
	slots[sessionID.String()] = raw
	if err := r.writeLocked(slots); err != nil {
		return fmt.Errorf("repo.FileTripSlotRepo.Save: %w", err)
	}
	return nil
}

func (r *fileTripSlotRepo) Load(_ context.Context, sessionID uuid.UUID) (domain.TripRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.readLocked()
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("repo.FileTripSlotRepo.Load: %w", err)
	}
	raw, ok := slots[sessionID.String()]
	if !ok {
		return domain.TripRecord{}, fmt.Errorf("repo.FileTripSlotRepo.Load: %w", domain.ErrNotFound)
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("repo.FileTripSlotRepo.Load: %w", err)
	}
	return rec, nil
}

func (r *fileTripSlotRepo) Clear(_ context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.readLocked()
	if err != nil {
		return fmt.Errorf("repo.FileTripSlotRepo.Clear: %w", err)
	}
	if _, ok := slots[sessionID.String()]; !ok {
		return nil
	}
	delete(slots, sessionID.String())
	if err := r.writeLocked(slots); err != nil {
		return fmt.Errorf("repo.FileTripSlotRepo.Clear: %w", err)
	}
	return nil
}

func (r *fileTripSlotRepo) readLocked() (map[string]json.RawMessage, error) {
	slots := make(map[string]json.RawMessage)
	b, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return slots, nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(b, &slots); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return slots, nil
}

func (r *fileTripSlotRepo) writeLocked(slots map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".trip-slot-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
