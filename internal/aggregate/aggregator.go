package aggregate

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"liquidityCore/internal/model"
	"liquidityCore/internal/storage"
)

const (
	feeMethodApprox = "approx_from_fee_tier"
	feeMethodNone   = "unavailable"
)

// Config controls aggregation behavior.
type Config struct {
	WindowSeconds int64
	// From skips events with an earlier timestamp (unix seconds).
	From int64
}

// Aggregator folds an event log into per-pool window metrics.
type Aggregator struct {
	cfg          Config
	logger       *zap.Logger
	accumulators map[string]*Accumulator
	fees         map[string]uint32
	out          []model.PoolWindowMetrics
}

func NewAggregator(cfg Config, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Aggregator{
		cfg:          cfg,
		logger:       logger,
		accumulators: make(map[string]*Accumulator),
		fees:         make(map[string]uint32),
	}
}

// Run aggregates the events JSONL at inputPath. Fee tiers are learned from the
// CreatePool events of the same log.
func (a *Aggregator) Run(inputPath string) ([]model.PoolWindowMetrics, error) {
	if a.cfg.WindowSeconds <= 0 {
		return nil, fmt.Errorf("window seconds must be > 0")
	}

	var total, skipped, failed int
	err := storage.ScanEvents(inputPath, func(line []byte) error {
		total++

		var record model.EventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			a.logger.Warn("decode event", zap.Error(err))
			return nil
		}
		if err := a.add(record); err != nil {
			failed++
			a.logger.Warn("aggregate event", zap.Error(err), zap.String("pool", record.PoolHash), zap.String("event", record.EventName))
			return nil
		}
		if record.Timestamp < a.cfg.From {
			skipped++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for key, acc := range a.accumulators {
		a.flush(acc)
		delete(a.accumulators, key)
	}
	sort.Slice(a.out, func(i, j int) bool {
		if a.out[i].PoolHash != a.out[j].PoolHash {
			return a.out[i].PoolHash < a.out[j].PoolHash
		}
		return a.out[i].WindowStart.Before(a.out[j].WindowStart)
	})

	a.logger.Info("aggregate complete",
		zap.Int("total", total),
		zap.Int("windows", len(a.out)),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return a.out, nil
}

func (a *Aggregator) add(record model.EventRecord) error {
	if record.EventName == model.EventCreatePool {
		var created model.CreatePoolEventData
		if err := json.Unmarshal(record.Data, &created); err != nil {
			return fmt.Errorf("decode create pool: %w", err)
		}
		a.fees[record.PoolHash] = created.Fee
		return nil
	}
	if record.EventName != model.EventSwap || record.Timestamp < a.cfg.From {
		return nil
	}

	start := windowStart(record.Timestamp, a.cfg.WindowSeconds)
	acc := a.accumulators[record.PoolHash]
	if acc != nil && acc.WindowStart != start {
		a.flush(acc)
		acc = nil
	}
	if acc == nil {
		acc = NewAccumulator(record.PoolHash, a.fees[record.PoolHash], start, start+a.cfg.WindowSeconds)
		a.accumulators[record.PoolHash] = acc
	}
	return acc.AddEvent(record)
}

func (a *Aggregator) flush(acc *Accumulator) {
	if acc == nil || acc.SwapCount == 0 {
		return
	}
	method := feeMethodApprox
	if acc.Fee == 0 {
		method = feeMethodNone
	}
	a.out = append(a.out, model.PoolWindowMetrics{
		PoolHash:       acc.PoolHash,
		WindowSizeSecs: a.cfg.WindowSeconds,
		WindowStart:    time.Unix(acc.WindowStart, 0).UTC(),
		WindowEnd:      time.Unix(acc.WindowEnd, 0).UTC(),
		SwapCount:      acc.SwapCount,
		Volume0:        acc.Volume0.String(),
		Volume1:        acc.Volume1.String(),
		Fee0:           acc.Fee0.String(),
		Fee1:           acc.Fee1.String(),
		CloseSqrtPrice: acc.LastPrice,
		FeeMethod:      method,
	})
}

func windowStart(ts, windowSec int64) int64 {
	return ts - (ts % windowSec)
}
