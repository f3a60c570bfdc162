package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"liquidityCore/internal/ledger"
	"liquidityCore/internal/model"
)

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "ledger.json")

	store, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key, err := ledger.CompositeKey(ledger.ObjectPool, "A", "B", "3000")
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	txn := ledger.Begin(store, "client|alice", time.Now())
	if err := txn.PutState(key, map[string]string{"sqrt_price": "1"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := txn.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	reopened, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rec, err := reopened.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var value map[string]string
	if err := json.Unmarshal(rec.Value, &value); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if value["sqrt_price"] != "1" || rec.Version == 0 {
		t.Fatalf("unexpected record %+v", rec)
	}

	// versions keep increasing after reopen
	stale := ledger.ChangeSet{Reads: map[string]int64{key: rec.Version - 1}, Writes: []ledger.Write{{Key: key, Value: []byte(`{}`)}}}
	if err := reopened.Apply(ctx, stale); !errors.Is(err, ledger.ErrWriteConflict) {
		t.Fatalf("expected write conflict, got %v", err)
	}
	fresh := ledger.ChangeSet{Reads: map[string]int64{key: rec.Version}, Writes: []ledger.Write{{Key: key, Delete: true}}}
	if err := reopened.Apply(ctx, fresh); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := reopened.Get(ctx, key); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestJsonlStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink := NewJsonlStorage(path)

	events := []model.Event{
		{TxID: "1", EventName: model.EventMint, PoolHash: "p", Data: model.MintEventData{Amount0: "1"}},
		{TxID: "2", EventName: model.EventSwap, PoolHash: "p", Data: model.SwapEventData{Amount0: "-1"}},
	}
	if err := sink.PutEventBatch(events[:1]); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := sink.PutEventBatch(events[1:]); err != nil {
		t.Fatalf("put: %v", err)
	}

	var got []model.EventRecord
	err := ScanEvents(path, func(line []byte) error {
		var rec model.EventRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return err
		}
		got = append(got, rec)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 || got[0].TxID != "1" || got[1].EventName != model.EventSwap {
		t.Fatalf("unexpected events %+v", got)
	}

	if err := ScanEvents(filepath.Join(t.TempDir(), "missing.jsonl"), func([]byte) error { return nil }); err != nil {
		t.Fatalf("missing file should scan empty: %v", err)
	}
}
