package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/eldplan/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgTripSlotRepo is the Postgres implementation of TripSlotRepo.
// The record is stored as JSONB in the trip_slots table.
type pgTripSlotRepo struct {
	db db
}

// NewPostgresTripSlotRepo constructs a TripSlotRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresTripSlotRepo(db db) TripSlotRepo {
	return &pgTripSlotRepo{db: db}
}

// Save upserts the session's slot.
func (r *pgTripSlotRepo) Save(ctx context.Context, sessionID uuid.UUID, rec domain.TripRecord) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("repo.TripSlotRepo.Save: %w", err)
	}

	const q = `
		INSERT INTO trip_slots (session_id, record)
		VALUES (@session_id, @record)
		ON CONFLICT (session_id) DO UPDATE
		SET record   = EXCLUDED.record,
		    saved_at = now()`

	_, err = r.db.Exec(ctx, q, pgx.NamedArgs{
		"session_id": sessionID,
		"record":     raw,
	})
	if err != nil {
		return fmt.Errorf("repo.TripSlotRepo.Save: %w", err)
	}
	return nil
}

// Load reads the session's slot.
func (r *pgTripSlotRepo) Load(ctx context.Context, sessionID uuid.UUID) (domain.TripRecord, error) {
	const q = `SELECT record FROM trip_slots WHERE session_id = @session_id`

	var raw []byte
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"session_id": sessionID}).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripRecord{}, fmt.Errorf("repo.TripSlotRepo.Load: %w", domain.ErrNotFound)
		}
		return domain.TripRecord{}, fmt.Errorf("repo.TripSlotRepo.Load: %w", err)
	}

	rec, err := decodeRecord(raw)
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("repo.TripSlotRepo.Load: %w", err)
	}
	return rec, nil
}

// Clear deletes the session's slot, if any.
func (r *pgTripSlotRepo) Clear(ctx context.Context, sessionID uuid.UUID) error {
	const q = `DELETE FROM trip_slots WHERE session_id = @session_id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"session_id": sessionID}); err != nil {
		return fmt.Errorf("repo.TripSlotRepo.Clear: %w", err)
	}
	return nil
}
