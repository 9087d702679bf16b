package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eldplan/internal/config"
	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/geocode"
	"github.com/pkordes/eldplan/internal/repo"
)

// run executes the command tree with args and returns everything written to
// stdout. Flag variables are reset afterwards.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		logsFile, logsSession, logsDay, logsDebug = DefaultTripFile, "", 0, false
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeTrip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trip.json")
	trip := domain.TripRecord{
		CurrentLocation: "Dallas, TX, USA",
		PickupLocation:  "Memphis, TN, USA",
		DropoffLocation: "Atlanta, GA, USA",
		CycleHours:      20,
		PlannedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.NewFileTripSlotRepo(path).Save(context.Background(), repo.LocalSession, trip))
	return path
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2025-06-01")
	t.Cleanup(func() { SetVersion("dev", "none", "unknown") })

	out, err := run(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "eldplan 1.2.3 (commit abc123")
}

func TestLogs_RendersEveryDay(t *testing.T) {
	path := writeTrip(t)

	out, err := run(t, "logs", "--file", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Dallas, TX, USA")
	assert.Contains(t, out, "Day 1 of 3")
	assert.Contains(t, out, "Day 3 of 3")
	assert.Contains(t, out, "2025-06-03")
}

func TestLogs_SingleDayIsClamped(t *testing.T) {
	path := writeTrip(t)

	out, err := run(t, "logs", "--file", path, "--day", "9")

	require.NoError(t, err)
	assert.Contains(t, out, "Day 3 of 3")
	assert.NotContains(t, out, "Day 1 of 3")
}

func TestLogs_Debug_DumpsGoValues(t *testing.T) {
	path := writeTrip(t)

	out, err := run(t, "logs", "--file", path, "--debug")

	require.NoError(t, err)
	assert.Contains(t, out, "domain.TripRecord")
	assert.Contains(t, out, "Segments")
}

func TestLogs_NoTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := run(t, "logs", "--file", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no trip data found")
}

func TestLogs_InvalidSession(t *testing.T) {
	_, err := run(t, "logs", "--session", "not-a-uuid")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --session")
}

func TestNewGeocoder(t *testing.T) {
	geo, err := newGeocoder(config.Config{Geocoder: config.GeocoderOffline})
	require.NoError(t, err)
	assert.IsType(t, &geocode.Offline{}, geo)

	_, err = newGeocoder(config.Config{Geocoder: config.GeocoderGoogle})
	require.ErrorIs(t, err, domain.ErrValidation)

	geo, err = newGeocoder(config.Config{Geocoder: config.GeocoderGoogle, MapAPIKey: "AIza-test"})
	require.NoError(t, err)
	assert.IsType(t, &geocode.Google{}, geo)
}

func TestPageAndMountConfig_ShareGeocoderKey(t *testing.T) {
	cfg := config.Config{
		Geocoder:      config.GeocoderGoogle,
		MapAPIKey:     "AIza-shared",
		MapStyle:      config.MapStyleHybrid,
		Debounce:      300 * time.Millisecond,
		RedirectDelay: 2 * time.Second,
	}

	geo, err := newGeocoder(cfg)
	require.NoError(t, err)
	assert.IsType(t, &geocode.Google{}, geo)

	page := pageConfig(cfg)
	assert.Equal(t, "AIza-shared", page.MapAPIKey)
	assert.Equal(t, config.MapStyleHybrid, page.MapStyle)
	assert.Equal(t, 300*time.Millisecond, page.Debounce)
	assert.Equal(t, 2*time.Second, page.RedirectDelay)

	mount := mountConfig(cfg)
	assert.Equal(t, "AIza-shared", mount.APIKey)
	assert.Equal(t, config.MapStyleHybrid, mount.StyleID)
}

func TestOpenSlots_MemoryAndSQLite(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	mem, closeMem, err := openSlots(ctx, config.Config{StoreBackend: config.StoreMemory}, log)
	require.NoError(t, err)
	closeMem()
	_, err = mem.Load(ctx, repo.LocalSession)
	require.ErrorIs(t, err, domain.ErrNotFound)

	cfg := config.Config{StoreBackend: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "eldplan.db")}
	slots, closeSQLite, err := openSlots(ctx, cfg, log)
	require.NoError(t, err)
	defer closeSQLite()
	require.NoError(t, slots.Save(ctx, repo.LocalSession, domain.TripRecord{CurrentLocation: "Dallas"}))
	got, err := slots.Load(ctx, repo.LocalSession)
	require.NoError(t, err)
	assert.Equal(t, "Dallas", got.CurrentLocation)
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "chatty")

	log.Debug("hidden")
	log.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
