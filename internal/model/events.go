package model

// Event names.
const (
	EventCreatePool          = "CreatePool"
	EventMint                = "Mint"
	EventBurn                = "Burn"
	EventCollect             = "Collect"
	EventSwap                = "Swap"
	EventProtocolFee         = "SetProtocolFee"
	EventCollectProtocolFees = "CollectProtocolFees"
)

// CreatePoolEventData is the payload of a pool creation.
type CreatePoolEventData struct {
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	Fee         uint32 `json:"fee"`
	TickSpacing int32  `json:"tick_spacing"`
	SqrtPrice   string `json:"sqrt_price"`
	Tick        int32  `json:"tick"`
	PoolAlias   string `json:"pool_alias"`
}

// MintEventData is the payload of an add-liquidity call.
type MintEventData struct {
	Owner      string `json:"owner"`
	PositionID string `json:"position_id"`
	TickLower  int32  `json:"tick_lower"`
	TickUpper  int32  `json:"tick_upper"`
	Liquidity  string `json:"liquidity"`
	Amount0    string `json:"amount0"`
	Amount1    string `json:"amount1"`
}

// BurnEventData is the payload of a remove-liquidity call.
type BurnEventData struct {
	Owner      string `json:"owner"`
	PositionID string `json:"position_id"`
	TickLower  int32  `json:"tick_lower"`
	TickUpper  int32  `json:"tick_upper"`
	Liquidity  string `json:"liquidity"`
	Amount0    string `json:"amount0"`
	Amount1    string `json:"amount1"`
}

// CollectEventData is the payload of a fee withdrawal.
type CollectEventData struct {
	Owner      string `json:"owner"`
	PositionID string `json:"position_id"`
	TickLower  int32  `json:"tick_lower"`
	TickUpper  int32  `json:"tick_upper"`
	Amount0    string `json:"amount0"`
	Amount1    string `json:"amount1"`
}

// SwapEventData is the payload of a swap. Amounts are signed from the pool's side.
type SwapEventData struct {
	Sender       string `json:"sender"`
	ZeroForOne   bool   `json:"zero_for_one"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	SqrtPrice    string `json:"sqrt_price"`
	Liquidity    string `json:"liquidity"`
	Tick         int32  `json:"tick"`
	TicksCrossed int    `json:"ticks_crossed"`
}

// ProtocolFeeEventData is the payload of a protocol fee change.
type ProtocolFeeEventData struct {
	ProtocolFee string `json:"protocol_fee"`
}

// CollectProtocolFeesEventData is the payload of a protocol fee withdrawal.
type CollectProtocolFeesEventData struct {
	Recipient string `json:"recipient"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
}
