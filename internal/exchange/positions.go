package exchange

import (
	"context"
	"errors"
	"fmt"

	"liquidityCore/internal/dex"
	"liquidityCore/internal/ledger"
)

// PositionRef names a position by pool, tick range and optionally its id.
// Without an id the owner's first position in the range is used.
type PositionRef struct {
	PoolKey
	TickLower  int32  `json:"tick_lower"`
	TickUpper  int32  `json:"tick_upper"`
	PositionID string `json:"position_id,omitempty"`
}

func (r PositionRef) tickRange() string {
	return dex.TickRangeKey(r.TickLower, r.TickUpper)
}

func getOwner(ctx context.Context, txn *ledger.Txn, owner, poolHash string) (dex.PositionOwner, bool, error) {
	key, err := ownerStateKey(owner, poolHash)
	if err != nil {
		return dex.PositionOwner{}, false, err
	}
	var rec dex.PositionOwner
	if err := txn.GetState(ctx, key, &rec); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return dex.NewPositionOwner(owner, poolHash), false, nil
		}
		return dex.PositionOwner{}, false, fmt.Errorf("load position owner: %w", err)
	}
	return rec, true, nil
}

func putOwner(txn *ledger.Txn, rec dex.PositionOwner) error {
	key, err := ownerStateKey(rec.Owner, rec.PoolHash)
	if err != nil {
		return err
	}
	if rec.IsEmpty() {
		txn.DeleteState(key)
		return nil
	}
	if err := txn.PutState(key, rec); err != nil {
		return fmt.Errorf("store position owner: %w", err)
	}
	return nil
}

func getPositionRecord(ctx context.Context, txn *ledger.Txn, poolHash, positionID string) (dex.Position, error) {
	key, err := positionStateKey(poolHash, positionID)
	if err != nil {
		return dex.Position{}, err
	}
	var pos dex.Position
	if err := txn.GetState(ctx, key, &pos); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return dex.Position{}, dex.NewError(dex.KindNotFound, "Position %s not found", positionID)
		}
		return dex.Position{}, fmt.Errorf("load position: %w", err)
	}
	return pos, nil
}

func putPosition(txn *ledger.Txn, pos dex.Position) error {
	key, err := positionStateKey(pos.PoolHash, pos.PositionID)
	if err != nil {
		return err
	}
	if err := txn.PutState(key, pos); err != nil {
		return fmt.Errorf("store position: %w", err)
	}
	return nil
}

// fetchPosition loads the owner's position named by ref.
func fetchPosition(ctx context.Context, txn *ledger.Txn, owner string, pool dex.Pool, ref PositionRef) (dex.Position, error) {
	rec, _, err := getOwner(ctx, txn, owner, pool.Hash())
	if err != nil {
		return dex.Position{}, err
	}
	id := ref.PositionID
	if id == "" {
		id, _ = rec.GetPositionID(ref.tickRange())
	}
	if id == "" || !rec.HasPosition(ref.tickRange(), id) {
		return dex.Position{}, dex.NewError(dex.KindNotFound, "User doesn't hold any positions with this tick range in this pool")
	}
	return getPositionRecord(ctx, txn, pool.Hash(), id)
}

// fetchOrCreatePosition returns the owner's position in the range, creating a
// new one and indexing it when the owner holds none.
func fetchOrCreatePosition(ctx context.Context, txn *ledger.Txn, owner string, pool dex.Pool, ref PositionRef) (dex.Position, error) {
	if ref.PositionID != "" {
		return fetchPosition(ctx, txn, owner, pool, ref)
	}
	poolHash := pool.Hash()
	rec, _, err := getOwner(ctx, txn, owner, poolHash)
	if err != nil {
		return dex.Position{}, err
	}
	if id, ok := rec.GetPositionID(ref.tickRange()); ok {
		return getPositionRecord(ctx, txn, poolHash, id)
	}

	id := dex.PositionID(owner, poolHash, ref.tickRange(), txn.TxUnixTime())
	rec.AddPosition(ref.tickRange(), id)
	if err := putOwner(txn, rec); err != nil {
		return dex.Position{}, err
	}
	return dex.NewPosition(pool, id, ref.TickLower, ref.TickUpper), nil
}

// storePosition persists pos, or removes it and its owner index entry once it
// holds no liquidity and nothing is owed.
func storePosition(ctx context.Context, txn *ledger.Txn, owner string, pos dex.Position) (removed bool, err error) {
	if !pos.IsInactive() {
		return false, putPosition(txn, pos)
	}

	rec, _, err := getOwner(ctx, txn, owner, pos.PoolHash)
	if err != nil {
		return false, err
	}
	rec.RemovePosition(pos.TickRange(), pos.PositionID)
	if err := putOwner(txn, rec); err != nil {
		return false, err
	}
	key, err := positionStateKey(pos.PoolHash, pos.PositionID)
	if err != nil {
		return false, err
	}
	txn.DeleteState(key)
	return true, nil
}
