package dex

import (
	"fmt"
)

// PositionOwner indexes the positions an owner holds in one pool by tick range.
type PositionOwner struct {
	Owner        string              `json:"owner"`
	PoolHash     string              `json:"pool_hash"`
	TickRangeMap map[string][]string `json:"tick_range_map"`
}

// TickRangeKey is the canonical "tickLower:tickUpper" range key.
func TickRangeKey(tickLower, tickUpper int32) string {
	return fmt.Sprintf("%d:%d", tickLower, tickUpper)
}

func NewPositionOwner(owner, poolHash string) PositionOwner {
	return PositionOwner{Owner: owner, PoolHash: poolHash, TickRangeMap: make(map[string][]string)}
}

// AddPosition records positionID under tickRange. Adding an id twice is a no-op.
func (o *PositionOwner) AddPosition(tickRange, positionID string) {
	if o.TickRangeMap == nil {
		o.TickRangeMap = make(map[string][]string)
	}
	if o.HasPosition(tickRange, positionID) {
		return
	}
	o.TickRangeMap[tickRange] = append(o.TickRangeMap[tickRange], positionID)
}

// RemovePosition drops the given ids from tickRange, or the whole range when no
// id is given. Empty ranges are removed.
func (o *PositionOwner) RemovePosition(tickRange string, positionIDs ...string) {
	if len(positionIDs) == 0 {
		delete(o.TickRangeMap, tickRange)
		return
	}
	drop := make(map[string]bool, len(positionIDs))
	for _, id := range positionIDs {
		drop[id] = true
	}
	kept := make([]string, 0, len(o.TickRangeMap[tickRange]))
	for _, id := range o.TickRangeMap[tickRange] {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		delete(o.TickRangeMap, tickRange)
		return
	}
	o.TickRangeMap[tickRange] = kept
}

// GetPositionID returns the first position held in tickRange.
func (o PositionOwner) GetPositionID(tickRange string) (string, bool) {
	ids := o.TickRangeMap[tickRange]
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// PositionIDs returns every position held in tickRange.
func (o PositionOwner) PositionIDs(tickRange string) []string {
	return append([]string(nil), o.TickRangeMap[tickRange]...)
}

func (o PositionOwner) HasPosition(tickRange, positionID string) bool {
	for _, id := range o.TickRangeMap[tickRange] {
		if id == positionID {
			return true
		}
	}
	return false
}

func (o PositionOwner) IsEmpty() bool {
	return len(o.TickRangeMap) == 0
}
