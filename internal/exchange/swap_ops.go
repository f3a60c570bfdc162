package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"liquidityCore/internal/dex"
	"liquidityCore/internal/ledger"
	"liquidityCore/internal/model"
)

// Price limits used when a swap names none. Both sit just inside the bounds
// the core accepts.
var (
	defaultLimitZeroForOne = decimal.RequireFromString("0.000000000000000000054212147")
	defaultLimitOneForZero = decimal.RequireFromString("18446050999999999999")
)

// SwapRequest trades against a pool. A positive AmountSpecified is an exact
// input, a negative one an exact output. AmountOutMinimum is the least the
// trader accepts to receive, as a positive amount.
type SwapRequest struct {
	PoolKey
	ZeroForOne       bool                `json:"zero_for_one"`
	AmountSpecified  decimal.Decimal     `json:"amount_specified"`
	SqrtPriceLimit   decimal.NullDecimal `json:"sqrt_price_limit"`
	AmountInMaximum  decimal.NullDecimal `json:"amount_in_maximum"`
	AmountOutMinimum decimal.NullDecimal `json:"amount_out_minimum"`
}

func (r SwapRequest) priceLimit() decimal.Decimal {
	if r.SqrtPriceLimit.Valid {
		return r.SqrtPriceLimit.Decimal
	}
	if r.ZeroForOne {
		return defaultLimitZeroForOne
	}
	return defaultLimitOneForZero
}

// SwapQuote reports the signed pool-side amounts of a swap and the price
// before and after it.
type SwapQuote struct {
	PoolHash         string          `json:"pool_hash"`
	Amount0          decimal.Decimal `json:"amount0"`
	Amount1          decimal.Decimal `json:"amount1"`
	CurrentSqrtPrice decimal.Decimal `json:"current_sqrt_price"`
	NewSqrtPrice     decimal.Decimal `json:"new_sqrt_price"`
	Tick             int32           `json:"tick"`
	TicksCrossed     int             `json:"ticks_crossed"`
}

func checkSwapBounds(req SwapRequest, res dex.SwapResult) error {
	for _, amount := range []decimal.Decimal{res.Amount0, res.Amount1} {
		if amount.IsPositive() && req.AmountInMaximum.Valid && amount.GreaterThan(req.AmountInMaximum.Decimal) {
			return dex.NewError(dex.KindSlippageExceeded,
				"Slippage tolerance exceeded: maximum allowed tokens (%s) is less than required amount (%s).",
				req.AmountInMaximum.Decimal, amount)
		}
		if amount.IsNegative() && req.AmountOutMinimum.Valid && amount.Neg().LessThan(req.AmountOutMinimum.Decimal) {
			return dex.NewError(dex.KindSlippageExceeded,
				"Slippage tolerance exceeded: minimum received tokens (%s) is less than actual received amount (%s).",
				req.AmountOutMinimum.Decimal, amount.Neg())
		}
	}
	return nil
}

func (s *Service) swap(ctx context.Context, txn *ledger.Txn, req SwapRequest) (dex.Pool, dex.SwapResult, error) {
	pool, err := getPool(ctx, txn, req.PoolKey)
	if err != nil {
		return dex.Pool{}, dex.SwapResult{}, err
	}
	res, err := pool.Swap(txnTicks{ctx: ctx, txn: txn, poolHash: pool.Hash()}, req.ZeroForOne, req.AmountSpecified, req.priceLimit())
	if err != nil {
		return dex.Pool{}, dex.SwapResult{}, err
	}
	return pool, res, nil
}

func newSwapQuote(before dex.Pool, res dex.SwapResult) SwapQuote {
	return SwapQuote{
		PoolHash:         before.Hash(),
		Amount0:          res.Amount0,
		Amount1:          res.Amount1,
		CurrentSqrtPrice: before.SqrtPrice,
		NewSqrtPrice:     res.Pool.SqrtPrice,
		Tick:             res.Pool.TickCurrent(),
		TicksCrossed:     res.TicksCrossed,
	}
}

// Swap executes a trade for identity and enforces its slippage bounds.
func (s *Service) Swap(ctx context.Context, identity string, req SwapRequest) (SwapQuote, error) {
	var out SwapQuote
	err := s.update(ctx, identity, "swap", func(ctx context.Context, txn *ledger.Txn) ([]model.Event, error) {
		before, res, err := s.swap(ctx, txn, req)
		if err != nil {
			return nil, err
		}
		if err := checkSwapBounds(req, res); err != nil {
			return nil, err
		}
		if err := putPool(txn, res.Pool); err != nil {
			return nil, err
		}
		if err := putTicks(txn, before.Hash(), res.Ticks, nil); err != nil {
			return nil, err
		}

		out = newSwapQuote(before, res)
		return []model.Event{{
			EventName: model.EventSwap,
			PoolHash:  out.PoolHash,
			Data: model.SwapEventData{
				Sender:       identity,
				ZeroForOne:   req.ZeroForOne,
				Amount0:      res.Amount0.String(),
				Amount1:      res.Amount1.String(),
				SqrtPrice:    res.Pool.SqrtPrice.String(),
				Liquidity:    res.Pool.Liquidity.String(),
				Tick:         out.Tick,
				TicksCrossed: res.TicksCrossed,
			},
		}}, nil
	})
	return out, err
}

// QuoteExactAmount runs the swap against current state without committing it.
// Slippage bounds in req are ignored.
func (s *Service) QuoteExactAmount(ctx context.Context, req SwapRequest) (SwapQuote, error) {
	var out SwapQuote
	err := s.view(ctx, "", func(ctx context.Context, txn *ledger.Txn) error {
		before, res, err := s.swap(ctx, txn, req)
		if err != nil {
			return err
		}
		out = newSwapQuote(before, res)
		return nil
	})
	return out, err
}
