package model

// PoolMeta is the read view of a pool.
type PoolMeta struct {
	PoolHash           string     `json:"pool_hash"`
	PoolAlias          string     `json:"pool_alias"`
	Token0             string     `json:"token0"`
	Token1             string     `json:"token1"`
	Fee                uint32     `json:"fee"`
	TickSpacing        int32      `json:"tick_spacing"`
	Liquidity          string     `json:"liquidity"`
	FeeGrowthGlobal0   string     `json:"fee_growth_global0"`
	FeeGrowthGlobal1   string     `json:"fee_growth_global1"`
	ProtocolFee        string     `json:"protocol_fee"`
	ProtocolFeesToken0 string     `json:"protocol_fees_token0"`
	ProtocolFeesToken1 string     `json:"protocol_fees_token1"`
	Slot0              *PoolSlot0 `json:"slot0,omitempty"`
}

// PoolSlot0 is the current price of a pool.
type PoolSlot0 struct {
	SqrtPrice string `json:"sqrt_price"`
	Tick      int32  `json:"tick"`
}

// FeeConfig is the ledger-wide protocol fee setting applied to new pools.
type FeeConfig struct {
	Authorities []string `json:"authorities"`
	ProtocolFee string   `json:"protocol_fee"`
}
