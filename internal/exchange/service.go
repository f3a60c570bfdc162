package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"liquidityCore/internal/ledger"
	"liquidityCore/internal/model"
	"liquidityCore/internal/storage"
)

// ErrUnauthorized is returned when the acting identity may not change the
// protocol fee configuration.
var ErrUnauthorized = errors.New("unauthorized")

type ServiceConfig struct {
	MaxRetries         int
	RetryBackoff       time.Duration
	DefaultProtocolFee decimal.Decimal
	// Authorities may manage protocol fees until a fee config record exists.
	// Empty means nobody may.
	Authorities []string
	Clock       func() time.Time
}

// Service runs every pool operation as one ledger transaction and publishes
// the events of committed transactions.
type Service struct {
	cfg    ServiceConfig
	store  ledger.Store
	sink   storage.EventSink
	logger *zap.Logger
}

func NewService(cfg ServiceConfig, store ledger.Store, sink storage.EventSink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = storage.NopSink{}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Service{cfg: cfg, store: store, sink: sink, logger: logger}
}

type txnFunc func(ctx context.Context, txn *ledger.Txn) ([]model.Event, error)

// update runs fn in a fresh transaction and commits it, retrying the whole
// invocation when the commit loses a write conflict.
func (s *Service) update(ctx context.Context, identity, op string, fn txnFunc) error {
	var (
		events []model.Event
		txn    *ledger.Txn
	)
	onRetry := func(attempt int, err error) {
		s.logger.Debug("retry transaction", zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
	}
	err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, onRetry, func(ctx context.Context) error {
		txn = ledger.Begin(s.store, identity, s.cfg.Clock())
		evs, err := fn(ctx, txn)
		if err != nil {
			return err
		}
		if err := txn.Commit(ctx); err != nil {
			return fmt.Errorf("commit %s: %w", op, err)
		}
		events = evs
		return nil
	})
	if err != nil {
		return err
	}

	for i := range events {
		events[i].TxID = txn.ID
		events[i].Identity = identity
		events[i].Timestamp = txn.TxUnixTime()
	}
	if err := s.sink.PutEventBatch(events); err != nil {
		s.logger.Warn("publish events failed", zap.String("op", op), zap.String("tx_id", txn.ID), zap.Error(err))
	}
	for _, ev := range events {
		s.logger.Info("committed",
			zap.String("op", op),
			zap.String("tx_id", txn.ID),
			zap.String("pool", ev.PoolHash),
			zap.String("identity", identity),
			zap.Any("data", ev.Data),
		)
	}
	return nil
}

// view runs fn against the store and discards whatever it writes.
func (s *Service) view(ctx context.Context, identity string, fn func(ctx context.Context, txn *ledger.Txn) error) error {
	return fn(ctx, ledger.Begin(s.store, identity, s.cfg.Clock()))
}
