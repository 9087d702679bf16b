package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/pkordes/eldplan/internal/domain"
)

// tripSlotRow is the gorm model for the trip_slots table.
type tripSlotRow struct {
	SessionID string `gorm:"primaryKey;size:36"`
	Record    string `gorm:"type:text;not null"`
	SavedAt   time.Time
}

func (tripSlotRow) TableName() string { return "trip_slots" }

// OpenSQLite opens (creating if needed) the SQLite database at path and
// migrates the trip_slots table.
func OpenSQLite(path string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: %w", err)
	}
	if err := gdb.AutoMigrate(&tripSlotRow{}); err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: migrate: %w", err)
	}
	return gdb, nil
}

// sqliteTripSlotRepo is the gorm/SQLite implementation of TripSlotRepo.
type sqliteTripSlotRepo struct {
	db *gorm.DB
}

// NewSQLiteTripSlotRepo constructs a TripSlotRepo backed by gdb.
func NewSQLiteTripSlotRepo(gdb *gorm.DB) TripSlotRepo {
	return &sqliteTripSlotRepo{db: gdb}
}

func (r *sqliteTripSlotRepo) Save(ctx context.Context, sessionID uuid.UUID, rec domain.TripRecord) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("repo.SQLiteTripSlotRepo.Save: %w", err)
	}
	row := tripSlotRow{SessionID: sessionID.String(), Record: string(raw), SavedAt: time.Now().UTC()}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"record", "saved_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("repo.SQLiteTripSlotRepo.Save: %w", err)
	}
	return nil
}

func (r *sqliteTripSlotRepo) Load(ctx context.Context, sessionID uuid.UUID) (domain.TripRecord, error) {
	var row tripSlotRow
	err := r.db.WithContext(ctx).First(&row, "session_id = ?", sessionID.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TripRecord{}, fmt.Errorf("repo.SQLiteTripSlotRepo.Load: %w", domain.ErrNotFound)
		}
		return domain.TripRecord{}, fmt.Errorf("repo.SQLiteTripSlotRepo.Load: %w", err)
	}
	rec, err := decodeRecord([]byte(row.Record))
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("repo.SQLiteTripSlotRepo.Load: %w", err)
	}
	return rec, nil
}

func (r *sqliteTripSlotRepo) Clear(ctx context.Context, sessionID uuid.UUID) error {
	err := r.db.WithContext(ctx).Delete(&tripSlotRow{}, "session_id = ?", sessionID.String()).Error
	if err != nil {
		return fmt.Errorf("repo.SQLiteTripSlotRepo.Clear: %w", err)
	}
	return nil
}
