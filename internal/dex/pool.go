package dex

import (
	"github.com/shopspring/decimal"

	"liquidityCore/internal/dexmath"
)

// Pool is the price and liquidity state of one (token0, token1, fee) pool.
// Operations take the pool by value and return the next state; the receiver
// is never modified.
type Pool struct {
	Token0              string          `json:"token0"`
	Token1              string          `json:"token1"`
	Fee                 dexmath.FeeTier `json:"fee"`
	TickSpacing         int32           `json:"tick_spacing"`
	SqrtPrice           decimal.Decimal `json:"sqrt_price"`
	Tick                int32           `json:"tick"`
	Liquidity           decimal.Decimal `json:"liquidity"`
	FeeGrowthGlobal0    decimal.Decimal `json:"fee_growth_global0"`
	FeeGrowthGlobal1    decimal.Decimal `json:"fee_growth_global1"`
	MaxLiquidityPerTick decimal.Decimal `json:"max_liquidity_per_tick"`
	ProtocolFeeRate     decimal.Decimal `json:"protocol_fees"`
	ProtocolFeesToken0  decimal.Decimal `json:"protocol_fees_token0"`
	ProtocolFeesToken1  decimal.Decimal `json:"protocol_fees_token1"`
	Bitmap              Bitmap          `json:"bitmap"`
}

// NewPool creates a pool at the given sqrt price.
func NewPool(token0, token1 string, fee dexmath.FeeTier, sqrtPrice, protocolFeeRate decimal.Decimal) (Pool, error) {
	spacing, ok := fee.TickSpacing()
	if !ok {
		return Pool{}, validationf("unsupported fee tier %d", fee)
	}
	if !sqrtPrice.IsPositive() {
		return Pool{}, validationf("Invalid sqrt price %s", sqrtPrice)
	}
	if err := checkProtocolFee(protocolFeeRate); err != nil {
		return Pool{}, err
	}
	return Pool{
		Token0:              token0,
		Token1:              token1,
		Fee:                 fee,
		TickSpacing:         spacing,
		SqrtPrice:           sqrtPrice,
		Tick:                dexmath.SqrtPriceToTick(sqrtPrice),
		MaxLiquidityPerTick: dexmath.TickSpacingToMaxLiquidityPerTick(spacing),
		ProtocolFeeRate:     protocolFeeRate,
		Bitmap:              make(Bitmap),
	}, nil
}

// Hash returns the content address of the pool.
func (p Pool) Hash() string {
	return PoolHash(p.Token0, p.Token1, p.Fee)
}

// Alias returns the custody identity of the pool.
func (p Pool) Alias() string {
	return PoolAlias(p.Hash())
}

// TickCurrent is the tick the pool's active liquidity belongs to. It equals the
// tick of SqrtPrice except after a zeroForOne swap stops exactly on the price of
// a crossed tick T, where it is T-1.
func (p Pool) TickCurrent() int32 {
	return p.Tick
}

func (p Pool) clone() Pool {
	next := p
	next.Bitmap = p.Bitmap.clone()
	return next
}

func checkTicks(tickLower, tickUpper int32) error {
	if tickLower >= tickUpper {
		return validationf("tickLower must be less than tickUpper")
	}
	if tickLower < dexmath.MinTick {
		return validationf("tickLower must not be less than %d", dexmath.MinTick)
	}
	if tickUpper > dexmath.MaxTick {
		return validationf("tickUpper must not be greater than %d", dexmath.MaxTick)
	}
	return nil
}

// ValidateRange checks that both ticks lie in the tick domain, are ordered and
// sit on the pool's tick spacing.
func (p Pool) ValidateRange(tickLower, tickUpper int32) error {
	if err := checkTicks(tickLower, tickUpper); err != nil {
		return err
	}
	for _, tick := range []int32{tickLower, tickUpper} {
		if p.TickSpacing <= 0 || tick%p.TickSpacing != 0 {
			return validationf("Tick is not spaced %d %d", tick, p.TickSpacing)
		}
	}
	return nil
}

func checkProtocolFee(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return validationf("Protocol Fees out of bounds")
	}
	return nil
}

// ConfigureProtocolFee sets the share of swap fees routed to the protocol.
func (p Pool) ConfigureProtocolFee(rate decimal.Decimal) (Pool, error) {
	if err := checkProtocolFee(rate); err != nil {
		return p, err
	}
	next := p.clone()
	next.ProtocolFeeRate = rate
	return next, nil
}

// CollectTradingFees returns the accrued protocol fees and zeroes them.
func (p Pool) CollectTradingFees() (Pool, decimal.Decimal, decimal.Decimal) {
	next := p.clone()
	fee0, fee1 := next.ProtocolFeesToken0, next.ProtocolFeesToken1
	next.ProtocolFeesToken0 = decimal.Zero
	next.ProtocolFeesToken1 = decimal.Zero
	return next, fee0, fee1
}

// CollectProtocolFees is CollectTradingFees under the name the fee collector uses.
func (p Pool) CollectProtocolFees() (Pool, decimal.Decimal, decimal.Decimal) {
	return p.CollectTradingFees()
}

// GetAmountForLiquidity estimates, from a single-sided amount, the liquidity it
// funds in [tickLower, tickUpper] and the paired amount of the other token.
func (p Pool) GetAmountForLiquidity(amount decimal.Decimal, tickLower, tickUpper int32, isToken0 bool) (amount0, amount1, liquidity decimal.Decimal, err error) {
	if err := checkTicks(tickLower, tickUpper); err != nil {
		return amount0, amount1, liquidity, err
	}
	amount = dexmath.F18(amount)
	if amount.IsZero() {
		return amount0, amount1, liquidity, validationf("You cannot add zero liquidity")
	}

	sqrtLower := dexmath.TickToSqrtPrice(tickLower)
	sqrtUpper := dexmath.TickToSqrtPrice(tickUpper)
	tickCurrent := p.TickCurrent()

	switch {
	case tickCurrent >= tickLower && tickCurrent < tickUpper:
		if isToken0 {
			liquidity = dexmath.Liquidity0(amount, p.SqrtPrice, sqrtUpper)
			return amount, dexmath.GetAmount1Delta(sqrtLower, p.SqrtPrice, liquidity, true), liquidity, nil
		}
		liquidity = dexmath.Liquidity1(amount, sqrtLower, p.SqrtPrice)
		return dexmath.GetAmount0Delta(p.SqrtPrice, sqrtUpper, liquidity, true), amount, liquidity, nil
	case tickCurrent < tickLower:
		if !isToken0 {
			return amount0, amount1, liquidity, validationf("Wrong values")
		}
		return amount, decimal.Zero, dexmath.Liquidity0(amount, sqrtLower, sqrtUpper), nil
	default:
		if isToken0 {
			return amount0, amount1, liquidity, validationf("Wrong values")
		}
		return decimal.Zero, amount, dexmath.Liquidity1(amount, sqrtLower, sqrtUpper), nil
	}
}
