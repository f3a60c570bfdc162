package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"liquidityCore/internal/config"
	"liquidityCore/internal/exchange"
	"liquidityCore/internal/ledger"
	"liquidityCore/internal/storage"
	"liquidityCore/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "dex",
		Short:        "Concentrated liquidity pool engine",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("store", config.StoreFile, "ledger backend (memory, file, postgres)")
	flags.String("state-file", "./data/ledger.json", "ledger snapshot path for the file store")
	flags.String("pg-dsn", "", "Postgres DSN for the postgres store")
	flags.String("events-out", "./data/events.jsonl", "output events JSONL")
	flags.String("identity", "client|admin", "acting identity")
	flags.String("protocol-fee", "0", "protocol fee share for pools created without a fee config")
	flags.StringSlice("authorities", nil, "identities allowed to manage protocol fees before a fee config exists (required for fee admin commands)")
	flags.Int("max-retries", 5, "maximum retry attempts on write conflicts")
	flags.Duration("retry-backoff", 50*time.Millisecond, "initial retry backoff")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newCreatePoolCmd(),
		newPoolCmd(),
		newAddLiquidityCmd(),
		newRemoveLiquidityCmd(),
		newEstimateBurnCmd(),
		newEstimateLiquidityCmd(),
		newSwapCmd(),
		newQuoteCmd(),
		newCollectCmd(),
		newEstimateFeesCmd(),
		newPositionCmd(),
		newSetProtocolFeeCmd(),
		newCollectProtocolFeesCmd(),
		newEventsCmd(),
		newStatsCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// serviceFunc runs one command against the service and returns what to print.
type serviceFunc func(ctx context.Context, svc *exchange.Service, cfg config.Config) (any, error)

func runService(fn serviceFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		svc := exchange.NewService(exchange.ServiceConfig{
			MaxRetries:         cfg.MaxRetries,
			RetryBackoff:       cfg.RetryBackoff,
			DefaultProtocolFee: cfg.ProtocolFee,
			Authorities:        cfg.Authorities,
		}, store, storage.NewJsonlStorage(cfg.EventsOut), logger)

		logger.Debug("command start",
			zap.String("cmd", cmd.Name()),
			zap.String("store", cfg.Store),
			zap.String("identity", cfg.Identity),
		)

		out, err := fn(ctx, svc, cfg)
		if err != nil {
			return err
		}
		return printJSON(cmd, out)
	}
}

func openStore(ctx context.Context, cfg config.Config) (ledger.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return ledger.NewMemoryStore(), nil
	case config.StoreFile:
		return storage.OpenFileStore(cfg.StateFile)
	case config.StorePostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
