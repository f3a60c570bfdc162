package exchange

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"liquidityCore/internal/dex"
	"liquidityCore/internal/dexmath"
	"liquidityCore/internal/ledger"
)

// PoolKey identifies a pool by its ordered token pair and fee tier.
type PoolKey struct {
	Token0 string          `json:"token0"`
	Token1 string          `json:"token1"`
	Fee    dexmath.FeeTier `json:"fee"`
}

func (k PoolKey) validate() error {
	switch strings.Compare(k.Token0, k.Token1) {
	case 1:
		return dex.NewError(dex.KindValidation, "Token0 must be smaller")
	case 0:
		return dex.NewError(dex.KindValidation, "Cannot create pool of same tokens. Token0 %s and Token1 %s must be different.", k.Token0, k.Token1)
	}
	if _, ok := k.Fee.TickSpacing(); !ok {
		return dex.NewError(dex.KindValidation, "unsupported fee tier %d", k.Fee)
	}
	return nil
}

// Hash is the pool hash of the key.
func (k PoolKey) Hash() string {
	return dex.PoolHash(k.Token0, k.Token1, k.Fee)
}

func poolStateKey(k PoolKey) (string, error) {
	return ledger.CompositeKey(ledger.ObjectPool, k.Token0, k.Token1, strconv.FormatUint(uint64(k.Fee), 10))
}

func tickStateKey(poolHash string, tick int32) (string, error) {
	return ledger.CompositeKey(ledger.ObjectTick, poolHash, strconv.FormatInt(int64(tick), 10))
}

func positionStateKey(poolHash, positionID string) (string, error) {
	return ledger.CompositeKey(ledger.ObjectPosition, poolHash, positionID)
}

func ownerStateKey(owner, poolHash string) (string, error) {
	return ledger.CompositeKey(ledger.ObjectPositionOwner, owner, poolHash)
}

func feeConfigStateKey() (string, error) {
	return ledger.CompositeKey(ledger.ObjectFeeConfig)
}

func getPool(ctx context.Context, txn *ledger.Txn, k PoolKey) (dex.Pool, error) {
	if err := k.validate(); err != nil {
		return dex.Pool{}, err
	}
	key, err := poolStateKey(k)
	if err != nil {
		return dex.Pool{}, err
	}
	var pool dex.Pool
	if err := txn.GetState(ctx, key, &pool); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return dex.Pool{}, dex.NewError(dex.KindNotFound, "No pool for these tokens and fee exists")
		}
		return dex.Pool{}, fmt.Errorf("load pool: %w", err)
	}
	if pool.Bitmap == nil {
		pool.Bitmap = make(dex.Bitmap)
	}
	return pool, nil
}

func putPool(txn *ledger.Txn, pool dex.Pool) error {
	key, err := poolStateKey(PoolKey{Token0: pool.Token0, Token1: pool.Token1, Fee: pool.Fee})
	if err != nil {
		return err
	}
	if err := txn.PutState(key, pool); err != nil {
		return fmt.Errorf("store pool: %w", err)
	}
	return nil
}

// txnTicks resolves tick records through a ledger transaction, so ticks a
// swap walks over are fetched on demand.
type txnTicks struct {
	ctx      context.Context
	txn      *ledger.Txn
	poolHash string
}

func (s txnTicks) LookupTick(tick int32) (dex.TickData, bool, error) {
	key, err := tickStateKey(s.poolHash, tick)
	if err != nil {
		return dex.TickData{}, false, err
	}
	var data dex.TickData
	if err := s.txn.GetState(s.ctx, key, &data); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return dex.TickData{}, false, nil
		}
		return dex.TickData{}, false, fmt.Errorf("load tick %d: %w", tick, err)
	}
	return data, true, nil
}

func putTicks(txn *ledger.Txn, poolHash string, updated map[int32]dex.TickData, cleared []int32) error {
	for tick, data := range updated {
		key, err := tickStateKey(poolHash, tick)
		if err != nil {
			return err
		}
		if err := txn.PutState(key, data); err != nil {
			return fmt.Errorf("store tick %d: %w", tick, err)
		}
	}
	for _, tick := range cleared {
		key, err := tickStateKey(poolHash, tick)
		if err != nil {
			return err
		}
		txn.DeleteState(key)
	}
	return nil
}
