package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/plantops/assetgraph/pkg/log"
	"github.com/plantops/assetgraph/pkg/storage"
	"github.com/plantops/assetgraph/pkg/types"
)

func strPtr(s string) *string { return &s }

// Assets returns the demo catalog: two sites with the full six-level
// hierarchy fleshed out under the first one.
func Assets() []*types.Asset {
	return []*types.Asset{
		// Sites
		{ID: "site-1", Name: "Texas Refinery", Type: types.AssetTypeSite},
		{ID: "site-2", Name: "Louisiana Chemical", Type: types.AssetTypeSite},

		// Plants
		{ID: "plant-1", Name: "Plant Alpha", Type: types.AssetTypePlant, ParentID: strPtr("site-1")},
		{ID: "plant-2", Name: "Plant Beta", Type: types.AssetTypePlant, ParentID: strPtr("site-1")},
		{ID: "plant-3", Name: "Plant Gamma", Type: types.AssetTypePlant, ParentID: strPtr("site-2")},

		// Trains
		{ID: "train-1", Name: "Train 101", Type: types.AssetTypeTrain, ParentID: strPtr("plant-1")},
		{ID: "train-2", Name: "Train 102", Type: types.AssetTypeTrain, ParentID: strPtr("plant-1")},

		// Units
		{ID: "unit-1", Name: "Crude Unit", Type: types.AssetTypeUnit, ParentID: strPtr("train-1")},
		{ID: "unit-2", Name: "Vacuum Unit", Type: types.AssetTypeUnit, ParentID: strPtr("train-1")},

		// Signal Containers
		{ID: "cont-1", Name: "Temperature Sensors", Type: types.AssetTypeSignalContainer, ParentID: strPtr("unit-1")},
		{ID: "cont-2", Name: "Pressure Sensors", Type: types.AssetTypeSignalContainer, ParentID: strPtr("unit-1")},

		// Signals
		{ID: "sig-1", Name: "TI-1001 Inlet Temp", Type: types.AssetTypeSignal, ParentID: strPtr("cont-1")},
		{ID: "sig-2", Name: "TI-1002 Outlet Temp", Type: types.AssetTypeSignal, ParentID: strPtr("cont-1")},
		{ID: "sig-3", Name: "PI-2001 Header Press", Type: types.AssetTypeSignal, ParentID: strPtr("cont-2")},
		{ID: "sig-4", Name: "PI-2002 Suction Press", Type: types.AssetTypeSignal, ParentID: strPtr("cont-2")},
	}
}

// SeedAssets upserts the demo catalog. Safe to run repeatedly.
func SeedAssets(ctx context.Context, store storage.Store) error {
	assets := Assets()
	if err := store.UpsertAssets(ctx, assets); err != nil {
		return fmt.Errorf("seed assets: %w", err)
	}
	logger := log.WithComponent("seed")
	logger.Info().Int("assets", len(assets)).Msg("catalog seeded")
	return nil
}

// measurementBatchSize bounds one insert round trip during backfill.
const measurementBatchSize = 1000

// SeedMeasurements backfills hourly readings for every simulated signal over
// the given number of days, in batches. Returns the number of rows written.
func SeedMeasurements(ctx context.Context, store storage.Store, signals []types.SimulatedSignal, days int) (int, error) {
	if days <= 0 {
		return 0, fmt.Errorf("days must be positive")
	}
	logger := log.WithComponent("seed")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	now := time.Now()
	start := now.Add(-time.Duration(days) * 24 * time.Hour)

	var batch []*types.Measurement
	total := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := store.InsertMeasurements(ctx, batch); err != nil {
			return fmt.Errorf("insert measurement batch: %w", err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for ts := start; !ts.After(now); ts = ts.Add(time.Hour) {
		for _, sig := range signals {
			value := sig.Reading(rng.Float64())
			batch = append(batch, &types.Measurement{
				SignalID:  sig.ID,
				Timestamp: ts,
				Value:     value,
				Status:    types.StatusFor(value),
			})
		}
		if len(batch) >= measurementBatchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}

	logger.Info().Int("rows", total).Int("days", days).Msg("measurement history seeded")
	return total, nil
}
