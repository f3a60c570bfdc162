package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"liquidityCore/internal/dex"
	"liquidityCore/internal/dexmath"
	"liquidityCore/internal/ledger"
	"liquidityCore/internal/model"
)

func poolMeta(pool dex.Pool) model.PoolMeta {
	return model.PoolMeta{
		PoolHash:           pool.Hash(),
		PoolAlias:          pool.Alias(),
		Token0:             pool.Token0,
		Token1:             pool.Token1,
		Fee:                uint32(pool.Fee),
		TickSpacing:        pool.TickSpacing,
		Liquidity:          pool.Liquidity.String(),
		FeeGrowthGlobal0:   pool.FeeGrowthGlobal0.String(),
		FeeGrowthGlobal1:   pool.FeeGrowthGlobal1.String(),
		ProtocolFee:        pool.ProtocolFeeRate.String(),
		ProtocolFeesToken0: pool.ProtocolFeesToken0.String(),
		ProtocolFeesToken1: pool.ProtocolFeesToken1.String(),
		Slot0: &model.PoolSlot0{
			SqrtPrice: pool.SqrtPrice.String(),
			Tick:      pool.TickCurrent(),
		},
	}
}

func getFeeConfig(ctx context.Context, txn *ledger.Txn) (model.FeeConfig, bool, error) {
	key, err := feeConfigStateKey()
	if err != nil {
		return model.FeeConfig{}, false, err
	}
	var cfg model.FeeConfig
	if err := txn.GetState(ctx, key, &cfg); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return model.FeeConfig{}, false, nil
		}
		return model.FeeConfig{}, false, fmt.Errorf("load fee config: %w", err)
	}
	return cfg, true, nil
}

// authorize checks identity against the fee config authorities, or against the
// configured bootstrap authorities while no fee config exists.
func (s *Service) authorize(ctx context.Context, txn *ledger.Txn) (model.FeeConfig, bool, error) {
	cfg, found, err := getFeeConfig(ctx, txn)
	if err != nil {
		return cfg, found, err
	}
	authorities := s.cfg.Authorities
	if found {
		authorities = cfg.Authorities
	}
	if len(authorities) == 0 {
		return cfg, found, fmt.Errorf("no protocol fee authorities configured: %w", ErrUnauthorized)
	}
	for _, a := range authorities {
		if a == txn.Identity {
			return cfg, found, nil
		}
	}
	return cfg, found, fmt.Errorf("CallingUser %s is not authorized to create or update: %w", txn.Identity, ErrUnauthorized)
}

// CreatePool opens a pool at sqrtPrice. The protocol fee comes from the fee
// config record when present, else from the service default.
func (s *Service) CreatePool(ctx context.Context, identity string, key PoolKey, sqrtPrice decimal.Decimal) (model.PoolMeta, error) {
	var meta model.PoolMeta
	err := s.update(ctx, identity, "create_pool", func(ctx context.Context, txn *ledger.Txn) ([]model.Event, error) {
		if err := key.validate(); err != nil {
			return nil, err
		}
		if _, err := getPool(ctx, txn, key); err == nil {
			return nil, dex.NewError(dex.KindConflict, "Pool already exists")
		} else if dex.KindOf(err) != dex.KindNotFound {
			return nil, err
		}

		protocolFee := s.cfg.DefaultProtocolFee
		cfg, found, err := getFeeConfig(ctx, txn)
		if err != nil {
			return nil, err
		}
		if found {
			if protocolFee, err = decimal.NewFromString(cfg.ProtocolFee); err != nil {
				return nil, fmt.Errorf("parse fee config: %w", err)
			}
		}

		pool, err := dex.NewPool(key.Token0, key.Token1, key.Fee, sqrtPrice, protocolFee)
		if err != nil {
			return nil, err
		}
		if err := putPool(txn, pool); err != nil {
			return nil, err
		}
		meta = poolMeta(pool)
		return []model.Event{{
			EventName: model.EventCreatePool,
			PoolHash:  meta.PoolHash,
			Data: model.CreatePoolEventData{
				Token0:      pool.Token0,
				Token1:      pool.Token1,
				Fee:         uint32(pool.Fee),
				TickSpacing: pool.TickSpacing,
				SqrtPrice:   pool.SqrtPrice.String(),
				Tick:        pool.TickCurrent(),
				PoolAlias:   meta.PoolAlias,
			},
		}}, nil
	})
	return meta, err
}

func (s *Service) GetPool(ctx context.Context, key PoolKey) (model.PoolMeta, error) {
	var meta model.PoolMeta
	err := s.view(ctx, "", func(ctx context.Context, txn *ledger.Txn) error {
		pool, err := getPool(ctx, txn, key)
		if err != nil {
			return err
		}
		meta = poolMeta(pool)
		return nil
	})
	return meta, err
}

// AmountForLiquidity is the estimate returned by GetAmountForLiquidity.
type AmountForLiquidity struct {
	Amount0   decimal.Decimal `json:"amount0"`
	Amount1   decimal.Decimal `json:"amount1"`
	Liquidity decimal.Decimal `json:"liquidity"`
}

// GetAmountForLiquidity estimates the paired amount and liquidity for a
// single-sided deposit of amount into [tickLower, tickUpper].
func (s *Service) GetAmountForLiquidity(ctx context.Context, key PoolKey, tickLower, tickUpper int32, amount decimal.Decimal, isToken0 bool) (AmountForLiquidity, error) {
	var out AmountForLiquidity
	err := s.view(ctx, "", func(ctx context.Context, txn *ledger.Txn) error {
		pool, err := getPool(ctx, txn, key)
		if err != nil {
			return err
		}
		if err := pool.ValidateRange(tickLower, tickUpper); err != nil {
			return err
		}
		out.Amount0, out.Amount1, out.Liquidity, err = pool.GetAmountForLiquidity(amount, tickLower, tickUpper, isToken0)
		return err
	})
	return out, err
}

// ConfigureProtocolFee sets the protocol fee share of one pool.
func (s *Service) ConfigureProtocolFee(ctx context.Context, identity string, key PoolKey, rate decimal.Decimal) (model.PoolMeta, error) {
	var meta model.PoolMeta
	err := s.update(ctx, identity, "set_protocol_fee", func(ctx context.Context, txn *ledger.Txn) ([]model.Event, error) {
		if _, _, err := s.authorize(ctx, txn); err != nil {
			return nil, err
		}
		pool, err := getPool(ctx, txn, key)
		if err != nil {
			return nil, err
		}
		if pool, err = pool.ConfigureProtocolFee(rate); err != nil {
			return nil, err
		}
		if err := putPool(txn, pool); err != nil {
			return nil, err
		}
		meta = poolMeta(pool)
		return []model.Event{{
			EventName: model.EventProtocolFee,
			PoolHash:  meta.PoolHash,
			Data:      model.ProtocolFeeEventData{ProtocolFee: rate.String()},
		}}, nil
	})
	return meta, err
}

// SetDefaultProtocolFee writes the protocol fee applied to pools created from
// now on. The first write copies the service authorities into the fee config,
// which governs protocol fees from then on.
func (s *Service) SetDefaultProtocolFee(ctx context.Context, identity string, rate decimal.Decimal) (model.FeeConfig, error) {
	var out model.FeeConfig
	err := s.update(ctx, identity, "set_default_protocol_fee", func(ctx context.Context, txn *ledger.Txn) ([]model.Event, error) {
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, dex.NewError(dex.KindValidation, "Protocol Fees out of bounds")
		}
		cfg, found, err := s.authorize(ctx, txn)
		if err != nil {
			return nil, err
		}
		if !found {
			cfg.Authorities = append([]string(nil), s.cfg.Authorities...)
		}
		cfg.ProtocolFee = rate.String()

		key, err := feeConfigStateKey()
		if err != nil {
			return nil, err
		}
		if err := txn.PutState(key, cfg); err != nil {
			return nil, fmt.Errorf("store fee config: %w", err)
		}
		out = cfg
		return []model.Event{{
			EventName: model.EventProtocolFee,
			Data:      model.ProtocolFeeEventData{ProtocolFee: cfg.ProtocolFee},
		}}, nil
	})
	return out, err
}

// ProtocolFeesCollected is the result of CollectProtocolFees.
type ProtocolFeesCollected struct {
	Recipient string          `json:"recipient"`
	Amount0   decimal.Decimal `json:"amount0"`
	Amount1   decimal.Decimal `json:"amount1"`
}

// CollectProtocolFees withdraws the protocol fees accrued by a pool to identity.
func (s *Service) CollectProtocolFees(ctx context.Context, identity string, key PoolKey) (ProtocolFeesCollected, error) {
	var out ProtocolFeesCollected
	err := s.update(ctx, identity, "collect_protocol_fees", func(ctx context.Context, txn *ledger.Txn) ([]model.Event, error) {
		if _, _, err := s.authorize(ctx, txn); err != nil {
			return nil, err
		}
		pool, err := getPool(ctx, txn, key)
		if err != nil {
			return nil, err
		}
		next, fee0, fee1 := pool.CollectProtocolFees()
		if err := putPool(txn, next); err != nil {
			return nil, err
		}
		out = ProtocolFeesCollected{
			Recipient: identity,
			Amount0:   dexmath.F18(fee0),
			Amount1:   dexmath.F18(fee1),
		}
		return []model.Event{{
			EventName: model.EventCollectProtocolFees,
			PoolHash:  next.Hash(),
			Data: model.CollectProtocolFeesEventData{
				Recipient: identity,
				Amount0:   out.Amount0.String(),
				Amount1:   out.Amount1.String(),
			},
		}}, nil
	})
	return out, err
}
