package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() StateRecord {
	lastRun := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return StateRecord{
		CurrentCapital:     52340.50,
		PeakCapital:        55000,
		CurrentDrawdownPct: 0.0483,

		TotalTrades:   120,
		WinningTrades: 72,
		LosingTrades:  48,
		TotalProfit:   14400,
		TotalLoss:     4800,

		WinRate:         0.60,
		ProfitFactor:    3.0,
		RuinProbability: 0.012,

		IsThrottled:    true,
		ThrottleReason: "STRESS_TEST_REQUIRED",
		ThrottleLevel:  "strict",

		StressTestPassed:  false,
		StressTestLastRun: &lastRun,
		StressTest: &StressRecord{
			RunID:               "01J0TEST",
			RunAt:               lastRun,
			Eligible:            true,
			Passed:              false,
			RecoveryProbability: 0.41,
			DurationTrades:      30,
			TargetCapital:       43750,
		},

		LastUpdated: time.Date(2025, 6, 1, 12, 0, 1, 0, time.UTC),
	}
}

func TestFileLoadMissingReturnsErrNotFound(t *testing.T) {
	t.Parallel()

	f := NewFile(filepath.Join(t.TempDir(), "missing.json"))

	_, err := f.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	f := NewFile(path)
	ctx := context.Background()

	want := testRecord()
	require.NoError(t, f.Save(ctx, want))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileSaveOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	f := NewFile(path)
	ctx := context.Background()

	first := testRecord()
	require.NoError(t, f.Save(ctx, first))

	second := first
	second.CurrentCapital = 60000
	second.IsThrottled = false
	second.ThrottleLevel = "unrestricted"
	require.NoError(t, f.Save(ctx, second))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestFileLoadCorruptReturnsParseError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	f := NewFile(path)
	_, err := f.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileSaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "state.json"))
	require.NoError(t, f.Save(context.Background(), testRecord()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}
