package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plantops/assetgraph/pkg/storage"
	"github.com/plantops/assetgraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTickInsertsOneReadingPerSignal tests batch shape across N ticks
func TestTickInsertsOneReadingPerSignal(t *testing.T) {
	store := storage.NewMemoryStore()
	ing := NewIngestor(store, Config{})
	ctx := context.Background()

	const ticks = 5
	for i := 0; i < ticks; i++ {
		ing.tick(ctx)
	}

	rows := store.Measurements()
	assert.Len(t, rows, ticks*len(DefaultSignals()))

	// Every reading in one tick shares that tick's timestamp
	perTimestamp := make(map[time.Time]int)
	for _, m := range rows {
		perTimestamp[m.Timestamp]++
		assert.Equal(t, types.StatusFor(m.Value), m.Status)
	}
	for _, count := range perTimestamp {
		assert.Equal(t, len(DefaultSignals()), count)
	}
}

// TestTickValueBounds tests generated values stay within base±variance
func TestTickValueBounds(t *testing.T) {
	store := storage.NewMemoryStore()
	signals := []types.SimulatedSignal{{ID: "sig-x", Base: 100, Variance: 10}}
	ing := NewIngestor(store, Config{Signals: signals})
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		ing.tick(ctx)
	}

	for _, m := range store.Measurements() {
		assert.GreaterOrEqual(t, m.Value, 90.0)
		assert.LessOrEqual(t, m.Value, 110.0)
	}
}

// failingStore rejects all measurement inserts.
type failingStore struct {
	storage.Store
	inserts int
}

func (f *failingStore) InsertMeasurements(context.Context, []*types.Measurement) error {
	f.inserts++
	return errors.New("store unreachable")
}

// TestTickSurvivesInsertFailure tests that a failed insert does not stop ticking
func TestTickSurvivesInsertFailure(t *testing.T) {
	store := &failingStore{Store: storage.NewMemoryStore()}
	ing := NewIngestor(store, Config{})
	ctx := context.Background()

	ing.tick(ctx)
	ing.tick(ctx)
	assert.Equal(t, 2, store.inserts)
}

// TestSweepRemovesExpiredRows tests the retention path end to end
func TestSweepRemovesExpiredRows(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.InsertMeasurements(ctx, []*types.Measurement{
		{SignalID: "sig-1", Timestamp: now.Add(-25 * time.Hour), Value: 45, Status: types.StatusNormal},
		{SignalID: "sig-1", Timestamp: now.Add(-time.Hour), Value: 46, Status: types.StatusNormal},
	}))

	ing := NewIngestor(store, Config{Retention: 24 * time.Hour})
	ing.sweep(ctx)

	rows := store.Measurements()
	require.Len(t, rows, 1)
	assert.Equal(t, 46.0, rows[0].Value)
}

// sweepErrStore fails cleanup, simulating a missing server-side procedure.
type sweepErrStore struct {
	storage.Store
	sweeps int
}

func (s *sweepErrStore) CleanupMeasurements(context.Context, time.Duration) (int64, error) {
	s.sweeps++
	return 0, errors.New(`function "cleanup_measurements" does not exist`)
}

// TestSweepSurvivesMissingProcedure tests that sweep errors are swallowed
func TestSweepSurvivesMissingProcedure(t *testing.T) {
	store := &sweepErrStore{Store: storage.NewMemoryStore()}
	ing := NewIngestor(store, Config{})
	ctx := context.Background()

	ing.sweep(ctx)
	ing.sweep(ctx)
	assert.Equal(t, 2, store.sweeps)
}

// TestStartStop tests the timer loop produces rows and halts cleanly
func TestStartStop(t *testing.T) {
	store := storage.NewMemoryStore()
	ing := NewIngestor(store, Config{Interval: 10 * time.Millisecond, SweepInterval: time.Hour})

	ing.Start()
	time.Sleep(55 * time.Millisecond)
	ing.Stop()

	inserted := len(store.Measurements())
	assert.Greater(t, inserted, 0)

	// No further rows after Stop
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, inserted, len(store.Measurements()))
}

// TestConfigDefaults tests zero-value fallback
func TestConfigDefaults(t *testing.T) {
	ing := NewIngestor(storage.NewMemoryStore(), Config{})

	assert.Equal(t, 2*time.Second, ing.cfg.Interval)
	assert.Equal(t, time.Minute, ing.cfg.SweepInterval)
	assert.Equal(t, 24*time.Hour, ing.cfg.Retention)
	assert.Len(t, ing.cfg.Signals, 4)
}
