package dex

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"liquidityCore/internal/dexmath"
)

const poolAliasPrefix = "service|pool_"

// PoolHash identifies a pool by keccak256("token0,token1,fee"). Token order is
// significant; callers canonicalize it first.
func PoolHash(token0, token1 string, fee dexmath.FeeTier) string {
	input := strings.Join([]string{token0, token1, strconv.FormatUint(uint64(fee), 10)}, ",")
	return common.Bytes2Hex(crypto.Keccak256([]byte(input)))
}

// PoolAlias is the custody identity holding the pool's token balances.
func PoolAlias(poolHash string) string {
	return poolAliasPrefix + poolHash
}

// PositionID derives a position id unique to its creation event.
func PositionID(owner, poolHash, tickRange string, txUnixTime int64) string {
	input := strings.Join([]string{owner, poolHash, tickRange, strconv.FormatInt(txUnixTime, 10)}, ",")
	return common.Bytes2Hex(crypto.Keccak256([]byte(input)))
}
