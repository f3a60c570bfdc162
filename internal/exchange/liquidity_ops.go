package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"liquidityCore/internal/dex"
	"liquidityCore/internal/dexmath"
	"liquidityCore/internal/ledger"
	"liquidityCore/internal/model"
)

type AddLiquidityRequest struct {
	PositionRef
	Amount0Desired decimal.Decimal `json:"amount0_desired"`
	Amount1Desired decimal.Decimal `json:"amount1_desired"`
	Amount0Min     decimal.Decimal `json:"amount0_min"`
	Amount1Min     decimal.Decimal `json:"amount1_min"`
}

type RemoveLiquidityRequest struct {
	PositionRef
	Liquidity  decimal.Decimal `json:"liquidity"`
	Amount0Min decimal.Decimal `json:"amount0_min"`
	Amount1Min decimal.Decimal `json:"amount1_min"`
}

type CollectRequest struct {
	PositionRef
	Amount0Requested decimal.Decimal `json:"amount0_requested"`
	Amount1Requested decimal.Decimal `json:"amount1_requested"`
}

// LiquidityResult reports the amounts moved by a liquidity operation and the
// resulting position. Removed is set when the position was emptied and deleted.
type LiquidityResult struct {
	PoolHash   string          `json:"pool_hash"`
	PositionID string          `json:"position_id"`
	Liquidity  decimal.Decimal `json:"liquidity"`
	Amount0    decimal.Decimal `json:"amount0"`
	Amount1    decimal.Decimal `json:"amount1"`
	Position   dex.Position    `json:"position"`
	Removed    bool            `json:"removed,omitempty"`
}

func checkMinimums(amount0, amount1, min0, min1 decimal.Decimal) error {
	if amount0.LessThan(min0) || amount1.LessThan(min1) {
		return dex.NewError(dex.KindSlippageExceeded,
			"Slippage tolerance exceeded: expected minimums (amount0 ≥ %s, amount1 ≥ %s), but received (amount0 = %s, amount1 = %s)",
			min0, min1, amount0, amount1)
	}
	return nil
}

// commitTransition stages the pool, tick and position writes of tr.
func commitTransition(ctx context.Context, txn *ledger.Txn, owner string, tr dex.Transition) (bool, error) {
	if err := putPool(txn, tr.Pool); err != nil {
		return false, err
	}
	if err := putTicks(txn, tr.Pool.Hash(), tr.Ticks, tr.Cleared); err != nil {
		return false, err
	}
	return storePosition(ctx, txn, owner, tr.Position)
}

// AddLiquidity deposits up to the desired amounts into the identity's position
// over the range, creating the position if the identity holds none there.
func (s *Service) AddLiquidity(ctx context.Context, identity string, req AddLiquidityRequest) (LiquidityResult, error) {
	var out LiquidityResult
	err := s.update(ctx, identity, "add_liquidity", func(ctx context.Context, txn *ledger.Txn) ([]model.Event, error) {
		pool, err := getPool(ctx, txn, req.PoolKey)
		if err != nil {
			return nil, err
		}
		if err := pool.ValidateRange(req.TickLower, req.TickUpper); err != nil {
			return nil, err
		}
		liquidity := dexmath.LiquidityForAmounts(
			pool.SqrtPrice,
			dexmath.TickToSqrtPrice(req.TickLower),
			dexmath.TickToSqrtPrice(req.TickUpper),
			dexmath.F18(req.Amount0Desired),
			dexmath.F18(req.Amount1Desired),
		)

		pos, err := fetchOrCreatePosition(ctx, txn, identity, pool, req.PositionRef)
		if err != nil {
			return nil, err
		}
		tr, err := pool.Mint(txnTicks{ctx: ctx, txn: txn, poolHash: pool.Hash()}, pos, req.TickLower, req.TickUpper, liquidity)
		if err != nil {
			return nil, err
		}
		if err := checkMinimums(tr.Amount0, tr.Amount1, req.Amount0Min, req.Amount1Min); err != nil {
			return nil, err
		}
		if _, err := commitTransition(ctx, txn, identity, tr); err != nil {
			return nil, err
		}

		out = LiquidityResult{
			PoolHash:   pool.Hash(),
			PositionID: tr.Position.PositionID,
			Liquidity:  dexmath.F18(liquidity),
			Amount0:    tr.Amount0,
			Amount1:    tr.Amount1,
			Position:   tr.Position,
		}
		return []model.Event{{
			EventName: model.EventMint,
			PoolHash:  out.PoolHash,
			Data: model.MintEventData{
				Owner:      identity,
				PositionID: out.PositionID,
				TickLower:  req.TickLower,
				TickUpper:  req.TickUpper,
				Liquidity:  out.Liquidity.String(),
				Amount0:    out.Amount0.String(),
				Amount1:    out.Amount1.String(),
			},
		}}, nil
	})
	return out, err
}

func (s *Service) burn(ctx context.Context, txn *ledger.Txn, req RemoveLiquidityRequest) (dex.Transition, error) {
	pool, err := getPool(ctx, txn, req.PoolKey)
	if err != nil {
		return dex.Transition{}, err
	}
	if err := pool.ValidateRange(req.TickLower, req.TickUpper); err != nil {
		return dex.Transition{}, err
	}
	pos, err := fetchPosition(ctx, txn, txn.Identity, pool, req.PositionRef)
	if err != nil {
		return dex.Transition{}, err
	}
	tr, err := pool.Burn(txnTicks{ctx: ctx, txn: txn, poolHash: pool.Hash()}, pos, req.TickLower, req.TickUpper, req.Liquidity)
	if err != nil {
		return dex.Transition{}, err
	}
	if err := checkMinimums(tr.Amount0, tr.Amount1, req.Amount0Min, req.Amount1Min); err != nil {
		return dex.Transition{}, err
	}
	return tr, nil
}

// RemoveLiquidity burns liquidity from the identity's position. The released
// amounts become owed to the position and are withdrawn with Collect.
func (s *Service) RemoveLiquidity(ctx context.Context, identity string, req RemoveLiquidityRequest) (LiquidityResult, error) {
	var out LiquidityResult
	err := s.update(ctx, identity, "remove_liquidity", func(ctx context.Context, txn *ledger.Txn) ([]model.Event, error) {
		tr, err := s.burn(ctx, txn, req)
		if err != nil {
			return nil, err
		}
		removed, err := commitTransition(ctx, txn, identity, tr)
		if err != nil {
			return nil, err
		}

		out = LiquidityResult{
			PoolHash:   tr.Pool.Hash(),
			PositionID: tr.Position.PositionID,
			Liquidity:  dexmath.F18(req.Liquidity),
			Amount0:    tr.Amount0,
			Amount1:    tr.Amount1,
			Position:   tr.Position,
			Removed:    removed,
		}
		return []model.Event{{
			EventName: model.EventBurn,
			PoolHash:  out.PoolHash,
			Data: model.BurnEventData{
				Owner:      identity,
				PositionID: out.PositionID,
				TickLower:  req.TickLower,
				TickUpper:  req.TickUpper,
				Liquidity:  out.Liquidity.String(),
				Amount0:    out.Amount0.String(),
				Amount1:    out.Amount1.String(),
			},
		}}, nil
	})
	return out, err
}

// EstimateBurn runs RemoveLiquidity for identity without committing it.
func (s *Service) EstimateBurn(ctx context.Context, identity string, req RemoveLiquidityRequest) (LiquidityResult, error) {
	var out LiquidityResult
	err := s.view(ctx, identity, func(ctx context.Context, txn *ledger.Txn) error {
		tr, err := s.burn(ctx, txn, req)
		if err != nil {
			return err
		}
		out = LiquidityResult{
			PoolHash:   tr.Pool.Hash(),
			PositionID: tr.Position.PositionID,
			Liquidity:  dexmath.F18(req.Liquidity),
			Amount0:    tr.Amount0,
			Amount1:    tr.Amount1,
			Position:   tr.Position,
			Removed:    tr.Position.IsInactive(),
		}
		return nil
	})
	return out, err
}

// Collect withdraws owed tokens from the identity's position.
func (s *Service) Collect(ctx context.Context, identity string, req CollectRequest) (LiquidityResult, error) {
	var out LiquidityResult
	err := s.update(ctx, identity, "collect", func(ctx context.Context, txn *ledger.Txn) ([]model.Event, error) {
		pool, err := getPool(ctx, txn, req.PoolKey)
		if err != nil {
			return nil, err
		}
		pos, err := fetchPosition(ctx, txn, identity, pool, req.PositionRef)
		if err != nil {
			return nil, err
		}
		tr, err := pool.Collect(txnTicks{ctx: ctx, txn: txn, poolHash: pool.Hash()}, pos, req.Amount0Requested, req.Amount1Requested)
		if err != nil {
			return nil, err
		}
		removed, err := commitTransition(ctx, txn, identity, tr)
		if err != nil {
			return nil, err
		}

		out = LiquidityResult{
			PoolHash:   pool.Hash(),
			PositionID: tr.Position.PositionID,
			Liquidity:  tr.Position.Liquidity,
			Amount0:    tr.Amount0,
			Amount1:    tr.Amount1,
			Position:   tr.Position,
			Removed:    removed,
		}
		return []model.Event{{
			EventName: model.EventCollect,
			PoolHash:  out.PoolHash,
			Data: model.CollectEventData{
				Owner:      identity,
				PositionID: out.PositionID,
				TickLower:  tr.Position.TickLower,
				TickUpper:  tr.Position.TickUpper,
				Amount0:    out.Amount0.String(),
				Amount1:    out.Amount1.String(),
			},
		}}, nil
	})
	return out, err
}

// FeeEstimate is the fee income a position could collect right now.
type FeeEstimate struct {
	PositionID string          `json:"position_id"`
	Amount0    decimal.Decimal `json:"amount0"`
	Amount1    decimal.Decimal `json:"amount1"`
}

// EstimateFees reports what owner could collect from the position: the
// recorded owed balances plus fees accrued since the last snapshot.
func (s *Service) EstimateFees(ctx context.Context, owner string, ref PositionRef) (FeeEstimate, error) {
	var out FeeEstimate
	err := s.view(ctx, owner, func(ctx context.Context, txn *ledger.Txn) error {
		pool, err := getPool(ctx, txn, ref.PoolKey)
		if err != nil {
			return err
		}
		pos, err := fetchPosition(ctx, txn, owner, pool, ref)
		if err != nil {
			return err
		}
		_, owed0, owed1, err := pool.GetFeeCollectedEstimation(txnTicks{ctx: ctx, txn: txn, poolHash: pool.Hash()}, pos)
		if err != nil {
			return err
		}
		out = FeeEstimate{
			PositionID: pos.PositionID,
			Amount0:    pos.TokensOwed0.Add(owed0),
			Amount1:    pos.TokensOwed1.Add(owed1),
		}
		return nil
	})
	return out, err
}

// GetPosition returns owner's position with fees accrued up to the current
// pool state. The refreshed view is not persisted.
func (s *Service) GetPosition(ctx context.Context, owner string, ref PositionRef) (dex.Position, error) {
	var out dex.Position
	err := s.view(ctx, owner, func(ctx context.Context, txn *ledger.Txn) error {
		pool, err := getPool(ctx, txn, ref.PoolKey)
		if err != nil {
			return err
		}
		pos, err := fetchPosition(ctx, txn, owner, pool, ref)
		if err != nil {
			return err
		}
		tr, err := pool.RefreshPosition(txnTicks{ctx: ctx, txn: txn, poolHash: pool.Hash()}, pos)
		if err != nil {
			return err
		}
		out = tr.Position
		return nil
	})
	return out, err
}
