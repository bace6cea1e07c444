package ingest

import (
	"context"
	"math/rand"
	"time"

	"github.com/plantops/assetgraph/pkg/log"
	"github.com/plantops/assetgraph/pkg/metrics"
	"github.com/plantops/assetgraph/pkg/storage"
	"github.com/plantops/assetgraph/pkg/types"
	"github.com/rs/zerolog"
)

// Config holds the generator's timing and signal set.
type Config struct {
	Interval      time.Duration
	SweepInterval time.Duration
	Retention     time.Duration
	Signals       []types.SimulatedSignal
}

// Ingestor produces synthetic measurements on a fixed interval and triggers
// the retention sweep on its own independent timer.
type Ingestor struct {
	store  storage.Store
	cfg    Config
	logger zerolog.Logger
	rng    *rand.Rand
	now    func() time.Time
	stopCh chan struct{}
}

// NewIngestor creates an ingestor. Zero durations fall back to the original
// deployment's values (2s tick, 1m sweep, 24h retention); an empty signal
// set falls back to the built-in simulated signals.
func NewIngestor(store storage.Store, cfg Config) *Ingestor {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if len(cfg.Signals) == 0 {
		cfg.Signals = DefaultSignals()
	}
	return &Ingestor{
		store:  store,
		cfg:    cfg,
		logger: log.WithComponent("ingest"),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
}

// Start begins the ingestion and sweep loops
func (i *Ingestor) Start() {
	i.logger.Info().
		Dur("interval", i.cfg.Interval).
		Dur("sweep_interval", i.cfg.SweepInterval).
		Dur("retention", i.cfg.Retention).
		Int("signals", len(i.cfg.Signals)).
		Msg("starting live ingestion")
	go i.run()
}

// Stop stops the ingestor
func (i *Ingestor) Stop() {
	close(i.stopCh)
}

// run is the main loop. The measurement tick and the retention sweep run on
// independent timers so sweep cadence does not depend on tick phase.
func (i *Ingestor) run() {
	ticker := time.NewTicker(i.cfg.Interval)
	defer ticker.Stop()
	sweeper := time.NewTicker(i.cfg.SweepInterval)
	defer sweeper.Stop()

	ctx := context.Background()
	for {
		select {
		case <-ticker.C:
			i.tick(ctx)
		case <-sweeper.C:
			i.sweep(ctx)
		case <-i.stopCh:
			return
		}
	}
}

// tick generates one reading per simulated signal and writes the batch in a
// single insert. Failures are logged and swallowed; the loop never stops.
func (i *Ingestor) tick(ctx context.Context) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.IngestTickDuration)

	now := i.now()
	batch := make([]*types.Measurement, 0, len(i.cfg.Signals))
	for _, sig := range i.cfg.Signals {
		value := sig.Reading(i.rng.Float64())
		batch = append(batch, &types.Measurement{
			SignalID:  sig.ID,
			Timestamp: now,
			Value:     value,
			Status:    types.StatusFor(value),
		})
	}

	if err := i.store.InsertMeasurements(ctx, batch); err != nil {
		metrics.MeasurementInsertFailures.Inc()
		i.logger.Error().Err(err).Msg("failed to insert readings")
		return
	}
	metrics.MeasurementsInserted.Add(float64(len(batch)))
	i.logger.Debug().Int("readings", len(batch)).Time("timestamp", now).Msg("pushed readings")
}

// sweep triggers the store-side retention cleanup. A failure (including a
// missing cleanup procedure on the postgres backend) is a warning, not a
// stop condition.
func (i *Ingestor) sweep(ctx context.Context) {
	metrics.SweepsTotal.Inc()
	removed, err := i.store.CleanupMeasurements(ctx, i.cfg.Retention)
	if err != nil {
		metrics.SweepFailures.Inc()
		i.logger.Warn().Err(err).Msg("cleanup warning (procedure missing?)")
		return
	}
	metrics.RowsSwept.Add(float64(removed))
	if removed > 0 {
		i.logger.Info().Int64("rows", removed).Msg("old measurements cleaned up")
	}
}
