package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkordes/eldplan/internal/config"
	"github.com/pkordes/eldplan/internal/geocode"
	"github.com/pkordes/eldplan/internal/handler"
	"github.com/pkordes/eldplan/internal/mapview"
	"github.com/pkordes/eldplan/internal/repo"
)

// newLogger builds the JSON logger at the configured level. Unknown levels
// fall back to info.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// newGeocoder selects the geocoding backend named by cfg.Geocoder.
func newGeocoder(cfg config.Config) (geocode.Geocoder, error) {
	switch cfg.Geocoder {
	case config.GeocoderGoogle:
		g, err := geocode.NewGoogle(cfg.MapAPIKey)
		if err != nil {
			return nil, fmt.Errorf("commands.newGeocoder: %w", err)
		}
		return g, nil
	default:
		return geocode.NewOffline(geocode.DefaultGazetteer), nil
	}
}

// mountConfig is the map surface configuration shared by planners and the
// review recap.
func mountConfig(cfg config.Config) mapview.MountConfig {
	return mapview.MountConfig{StyleID: cfg.MapStyle, APIKey: cfg.MapAPIKey}
}

// pageConfig is what the pages hand to the browser map. It carries the same
// key newGeocoder gives the Google geocoder.
func pageConfig(cfg config.Config) handler.PageConfig {
	return handler.PageConfig{
		MapStyle:      cfg.MapStyle,
		MapAPIKey:     cfg.MapAPIKey,
		Debounce:      cfg.Debounce,
		RedirectDelay: cfg.RedirectDelay,
	}
}

// openSlots opens the trip slot store named by cfg.StoreBackend. The returned
// close function releases whatever connection the store holds.
func openSlots(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.TripSlotRepo, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("commands.openSlots: create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("commands.openSlots: ping: %w", err)
		}
		log.Info("database connection established", "store", cfg.StoreBackend)
		return repo.NewPostgresTripSlotRepo(pool), pool.Close, nil

	case config.StoreSQLite:
		gdb, err := repo.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("commands.openSlots: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("commands.openSlots: %w", err)
		}
		log.Info("sqlite store opened", "path", cfg.SQLitePath)
		return repo.NewSQLiteTripSlotRepo(gdb), func() { _ = sqlDB.Close() }, nil

	default:
		return repo.NewMemoryTripSlotRepo(), func() {}, nil
	}
}
