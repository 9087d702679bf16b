// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Geocoder backends.
const (
	GeocoderGoogle  = "google"
	GeocoderOffline = "offline"
)

// Store backends for the persisted trip slot.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Google map types accepted by MAP_STYLE.
const (
	MapStyleRoadmap   = "roadmap"
	MapStyleSatellite = "satellite"
	MapStyleHybrid    = "hybrid"
	MapStyleTerrain   = "terrain"
)

// MapStyles lists every accepted MAP_STYLE value.
var MapStyles = []string{MapStyleRoadmap, MapStyleSatellite, MapStyleHybrid, MapStyleTerrain}

// Config holds all configuration values for the server and CLI.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Empty by default: the pages are served from the same origin.
	// Set CORS_ORIGINS to a comma-separated list to allow others.
	CORSOrigins []string

	// MapAPIKey is the Google Maps Platform key. The page loads the Maps
	// JavaScript API with it and the google geocoder sends it to the
	// Geocoding API, so one credential serves both. There is no built-in
	// fallback key.
	MapAPIKey string

	// Geocoder selects the geocoding backend: google or offline.
	// Defaults to google when MapAPIKey is set, otherwise offline.
	Geocoder string

	// MapStyle is the Google map type: roadmap, satellite, hybrid or
	// terrain. Defaults to "roadmap".
	MapStyle string

	// StoreBackend selects where trip slots live: memory, sqlite or postgres.
	StoreBackend string

	// DatabaseURL is the Postgres connection string. Required for postgres.
	DatabaseURL string

	// SQLitePath is the SQLite database file. Defaults to "eldplan.db".
	SQLitePath string

	Debounce       time.Duration
	SubmitDelay    time.Duration
	RedirectDelay  time.Duration
	PrintDelay     time.Duration
	GeocodeTimeout time.Duration

	// PlannerIdleTTL is how long an untouched session planner is kept
	// before the sweeper closes it. Defaults to 30m.
	PlannerIdleTTL time.Duration
}

// Load reads a .env file if one exists, then configuration from environment
// variables. Variables already set in the environment win over .env.
// Returns an error listing every missing or invalid variable.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: reading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(os.Getenv("CORS_ORIGINS")),
		MapAPIKey:    os.Getenv("MAP_API_KEY"),
		MapStyle:     strings.ToLower(getEnv("MAP_STYLE", MapStyleRoadmap)),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SQLitePath:   getEnv("SQLITE_PATH", "eldplan.db"),
	}

	defaultGeocoder := GeocoderOffline
	if cfg.MapAPIKey != "" {
		defaultGeocoder = GeocoderGoogle
	}
	cfg.Geocoder = strings.ToLower(getEnv("GEOCODER", defaultGeocoder))

	var problems []string

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"DEBOUNCE", 400 * time.Millisecond, &cfg.Debounce},
		{"SUBMIT_DELAY", 2 * time.Second, &cfg.SubmitDelay},
		{"REDIRECT_DELAY", 1500 * time.Millisecond, &cfg.RedirectDelay},
		{"PRINT_DELAY", 2 * time.Second, &cfg.PrintDelay},
		{"GEOCODE_TIMEOUT", 5 * time.Second, &cfg.GeocodeTimeout},
		{"PLANNER_IDLE_TTL", 30 * time.Minute, &cfg.PlannerIdleTTL},
	}
	for _, d := range durations {
		v, err := getDuration(d.key, d.fallback)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		*d.dst = v
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL: unknown level %q", cfg.LogLevel))
	}

	if isMapboxToken(cfg.MapAPIKey) {
		problems = append(problems, "MAP_API_KEY: looks like a Mapbox token; the map and geocoder need a Google Maps Platform key")
	}

	if !slices.Contains(MapStyles, cfg.MapStyle) {
		problems = append(problems, fmt.Sprintf("MAP_STYLE: unknown map type %q", cfg.MapStyle))
	}

	switch cfg.Geocoder {
	case GeocoderGoogle:
		if cfg.MapAPIKey == "" {
			problems = append(problems, "MAP_API_KEY: required when GEOCODER=google")
		}
	case GeocoderOffline:
	default:
		problems = append(problems, fmt.Sprintf("GEOCODER: unknown backend %q", cfg.Geocoder))
	}

	switch cfg.StoreBackend {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL: required when STORE_BACKEND=postgres")
		}
	case StoreMemory, StoreSQLite:
	default:
		problems = append(problems, fmt.Sprintf("STORE_BACKEND: unknown backend %q", cfg.StoreBackend))
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return cfg, nil
}

// isMapboxToken reports whether key has the shape of a Mapbox public or
// secret token.
func isMapboxToken(key string) bool {
	return strings.HasPrefix(key, "pk.") || strings.HasPrefix(key, "sk.")
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses key with time.ParseDuration. Negative values are rejected.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration", key, v)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
