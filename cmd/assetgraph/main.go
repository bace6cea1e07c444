package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/plantops/assetgraph/pkg/api"
	"github.com/plantops/assetgraph/pkg/config"
	"github.com/plantops/assetgraph/pkg/ingest"
	"github.com/plantops/assetgraph/pkg/log"
	"github.com/plantops/assetgraph/pkg/seed"
	"github.com/plantops/assetgraph/pkg/storage"
	"github.com/plantops/assetgraph/pkg/types"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "assetgraph",
	Short: "Assetgraph - GraphQL facade over a plant asset hierarchy",
	Long: `Assetgraph serves an industrial asset catalog (Site down to Signal)
over GraphQL, persists named view snapshots, and simulates a live
measurement feed with retention-based cleanup.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Assetgraph version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(seedCmd)
}

// setup loads configuration, initializes logging, and opens the store.
func setup() (*config.Config, storage.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})
	store, err := storage.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, store, nil
}

// loadSignals honors SIGNALS_FILE when set, falling back to the built-in set.
func loadSignals(cfg *config.Config) ([]types.SimulatedSignal, error) {
	if cfg.SignalsFile == "" {
		return ingest.DefaultSignals(), nil
	}
	return ingest.LoadSignals(cfg.SignalsFile)
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the GraphQL server",
	Long: `Run the GraphQL API server.

The server listens on PORT (default 4001) and exposes /graphql, /health,
/ready, and /metrics. Pass --with-ingest to also run the simulated
measurement feed in-process instead of as a separate ingest command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		withIngest, _ := cmd.Flags().GetBool("with-ingest")
		withSeed, _ := cmd.Flags().GetBool("seed")

		cfg, store, err := setup()
		if err != nil {
			return err
		}
		defer store.Close()

		if withSeed {
			if err := seed.SeedAssets(cmd.Context(), store); err != nil {
				return err
			}
		}

		srv, err := api.NewServer(cfg, store, Version)
		if err != nil {
			return err
		}

		var ingester *ingest.Ingestor
		if withIngest {
			signals, err := loadSignals(cfg)
			if err != nil {
				return err
			}
			ingester = ingest.NewIngestor(store, ingest.Config{
				Interval:      cfg.IngestInterval,
				SweepInterval: cfg.SweepInterval,
				Retention:     cfg.RetentionWindow,
				Signals:       signals,
			})
			ingester.Start()
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			log.Info("Shutting down")
		case err := <-errCh:
			if err != nil {
				return err
			}
		}

		if ingester != nil {
			ingester.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the measurement ingester without the API server",
	Long: `Run only the simulated measurement feed against the configured store.

Useful when the API is served by another process, or to backpressure-test
a shared Postgres instance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := setup()
		if err != nil {
			return err
		}
		defer store.Close()

		signals, err := loadSignals(cfg)
		if err != nil {
			return err
		}

		ingester := ingest.NewIngestor(store, ingest.Config{
			Interval:      cfg.IngestInterval,
			SweepInterval: cfg.SweepInterval,
			Retention:     cfg.RetentionWindow,
			Signals:       signals,
		})
		ingester.Start()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		log.Info("Shutting down")
		ingester.Stop()
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo asset catalog into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		withMeasurements, _ := cmd.Flags().GetBool("measurements")
		days, _ := cmd.Flags().GetInt("days")

		cfg, store, err := setup()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := seed.SeedAssets(cmd.Context(), store); err != nil {
			return err
		}
		fmt.Println("✓ Asset catalog seeded")

		if withMeasurements {
			signals, err := loadSignals(cfg)
			if err != nil {
				return err
			}
			rows, err := seed.SeedMeasurements(cmd.Context(), store, signals, days)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Seeded %d measurement rows over %d days\n", rows, days)
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().Bool("with-ingest", false, "Run the measurement ingester in-process")
	serverCmd.Flags().Bool("seed", false, "Seed the demo catalog before serving")

	seedCmd.Flags().Bool("measurements", false, "Also backfill measurement history")
	seedCmd.Flags().Int("days", 7, "Days of measurement history to backfill")
}
