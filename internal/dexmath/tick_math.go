package dexmath

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const (
	// MinTick is the lowest tick whose sqrt ratio is representable.
	MinTick int32 = -887272
	// MaxTick is the highest tick whose sqrt ratio is representable.
	MaxTick int32 = 887272
)

var (
	// MinSqrtRatio is GetSqrtRatioAtTick(MinTick) in Q64.96.
	MinSqrtRatio = mustFromBig("4295128739", 10)
	// MaxSqrtRatio is GetSqrtRatioAtTick(MaxTick) in Q64.96.
	MaxSqrtRatio = mustFromBig("1461446703485210103287273052203988822378723970342", 10)

	// MinSqrtPrice and MaxSqrtPrice bound the price limit accepted by a swap.
	MinSqrtPrice = decimal.RequireFromString("0.000000000000000000054212146")
	MaxSqrtPrice = decimal.RequireFromString("18446051000000000000")

	q96        = new(big.Int).Lsh(big.NewInt(1), 96)
	q96Decimal = decimal.NewFromBigInt(q96, 0)
	q128       = new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	maxUint256 = new(uint256.Int).Not(new(uint256.Int))
	lowMask32  = uint256.NewInt(0xffffffff)
	logBase    = math.Log(1.0001)

	// sqrt(1.0001^-(2^i)) in Q128.128.
	tickRatios = []*uint256.Int{
		mustFromBig("fffcb933bd6fad37aa2d162d1a594001", 16),
		mustFromBig("fff97272373d413259a46990580e213a", 16),
		mustFromBig("fff2e50f5f656932ef12357cf3c7fdcc", 16),
		mustFromBig("ffe5caca7e10e4e61c3624eaa0941cd0", 16),
		mustFromBig("ffcb9843d60f6159c9db58835c926644", 16),
		mustFromBig("ff973b41fa98c081472e6896dfb254c0", 16),
		mustFromBig("ff2ea16466c96a3843ec78b326b52861", 16),
		mustFromBig("fe5dee046a99a2a811c461f1969c3053", 16),
		mustFromBig("fcbe86c7900a88aedcffc83b479aa3a4", 16),
		mustFromBig("f987a7253ac413176f2b074cf7815e54", 16),
		mustFromBig("f3392b0822b70005940c7a398e4b70f3", 16),
		mustFromBig("e7159475a2c29b7443b29c7fa6e889d9", 16),
		mustFromBig("d097f3bdfd2022b8845ad8f792aa5825", 16),
		mustFromBig("a9f746462d870fdf8a65dc1f90e061e5", 16),
		mustFromBig("70d869a156d2a1b890bb3df62baf32f7", 16),
		mustFromBig("31be135f97d08fd981231505542fcfa6", 16),
		mustFromBig("9aa508b5b7a84e1c677de54f3e99bc9", 16),
		mustFromBig("5d6af8dedb81196699c329225ee604", 16),
		mustFromBig("2216e584f5fa1ea926041bedfe98", 16),
		mustFromBig("48a170391f7dc42444e8fa2", 16),
	}
)

func mustFromBig(s string, base int) *uint256.Int {
	b, ok := new(big.Int).SetString(s, base)
	if !ok {
		panic("dexmath: invalid constant " + s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		panic("dexmath: constant overflows 256 bits " + s)
	}
	return v
}

// GetSqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96, rounded up.
// tick must lie within [MinTick, MaxTick].
func GetSqrtRatioAtTick(tick int32) *uint256.Int {
	absTick := uint32(tick)
	if tick < 0 {
		absTick = uint32(-tick)
	}

	ratio := new(uint256.Int)
	if absTick&1 != 0 {
		ratio.Set(tickRatios[0])
	} else {
		ratio.Set(q128)
	}
	for i := 1; i < len(tickRatios); i++ {
		if absTick&(1<<uint(i)) != 0 {
			ratio.Mul(ratio, tickRatios[i])
			ratio.Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	rem := new(uint256.Int).And(ratio, lowMask32)
	ratio.Rsh(ratio, 32)
	if !rem.IsZero() {
		ratio.AddUint64(ratio, 1)
	}
	return ratio
}

// GetTickAtSqrtRatio returns the greatest tick whose sqrt ratio is <= sqrtRatioX96.
// Ratios outside [MinSqrtRatio, MaxSqrtRatio) are clamped to the tick bounds.
func GetTickAtSqrtRatio(sqrtRatioX96 *uint256.Int) int32 {
	if sqrtRatioX96.Lt(MinSqrtRatio) {
		return MinTick
	}
	if !sqrtRatioX96.Lt(MaxSqrtRatio) {
		return MaxTick
	}

	f, _ := new(big.Float).SetInt(sqrtRatioX96.ToBig()).Float64()
	f /= math.Exp2(96)
	tick := clampTick(int32(math.Floor(2 * math.Log(f) / logBase)))

	// the float estimate is within a tick or two; walk to the exact boundary
	for tick > MinTick && GetSqrtRatioAtTick(tick).Gt(sqrtRatioX96) {
		tick--
	}
	for tick < MaxTick && !GetSqrtRatioAtTick(tick+1).Gt(sqrtRatioX96) {
		tick++
	}
	return tick
}

func clampTick(tick int32) int32 {
	if tick < MinTick {
		return MinTick
	}
	if tick > MaxTick {
		return MaxTick
	}
	return tick
}

// TickToSqrtPrice converts a tick to its sqrt price with PriceScale digits, rounded up.
func TickToSqrtPrice(tick int32) decimal.Decimal {
	ratio := decimal.NewFromBigInt(GetSqrtRatioAtTick(tick).ToBig(), 0)
	return divUp(ratio, q96Decimal, PriceScale)
}

// SqrtPriceToTick returns the greatest tick whose sqrt price is <= sqrtPrice.
func SqrtPriceToTick(sqrtPrice decimal.Decimal) int32 {
	if !sqrtPrice.IsPositive() {
		return MinTick
	}
	scaled := sqrtPrice.Mul(q96Decimal).BigInt()
	if scaled.BitLen() > 256 {
		return MaxTick
	}
	x, _ := uint256.FromBig(scaled)
	return GetTickAtSqrtRatio(x)
}
