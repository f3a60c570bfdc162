package aggregate

import (
	"path/filepath"
	"testing"

	"liquidityCore/internal/model"
	"liquidityCore/internal/storage"
)

func TestAggregatorWindows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink := storage.NewJsonlStorage(path)
	events := []model.Event{
		{EventName: model.EventCreatePool, PoolHash: "p1", Timestamp: 10, Data: model.CreatePoolEventData{Fee: 3000}},
		{EventName: model.EventSwap, PoolHash: "p1", Timestamp: 100, Data: model.SwapEventData{Amount0: "10", Amount1: "-9.9", SqrtPrice: "0.99"}},
		{EventName: model.EventSwap, PoolHash: "p1", Timestamp: 200, Data: model.SwapEventData{Amount0: "-5", Amount1: "5.2", SqrtPrice: "1.01"}},
		{EventName: model.EventMint, PoolHash: "p1", Timestamp: 250, Data: model.MintEventData{Amount0: "1"}},
		{EventName: model.EventSwap, PoolHash: "p1", Timestamp: 400, Data: model.SwapEventData{Amount0: "1", Amount1: "-1", SqrtPrice: "1"}},
		{EventName: model.EventSwap, PoolHash: "p2", Timestamp: 100, Data: model.SwapEventData{Amount0: "2", Amount1: "-2"}},
	}
	if err := sink.PutEventBatch(events); err != nil {
		t.Fatalf("write events: %v", err)
	}

	metrics, err := NewAggregator(Config{WindowSeconds: 300}, nil).Run(path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(metrics) != 3 {
		t.Fatalf("expected 3 windows, got %d: %+v", len(metrics), metrics)
	}

	first := metrics[0]
	if first.PoolHash != "p1" || first.SwapCount != 2 || first.WindowStart.Unix() != 0 {
		t.Fatalf("unexpected first window %+v", first)
	}
	if first.Volume0 != "15" || first.Volume1 != "15.1" {
		t.Fatalf("unexpected volume %s/%s", first.Volume0, first.Volume1)
	}
	if first.Fee0 != "0.03" || first.Fee1 != "0.0156" || first.FeeMethod != feeMethodApprox {
		t.Fatalf("unexpected fees %s/%s (%s)", first.Fee0, first.Fee1, first.FeeMethod)
	}
	if first.CloseSqrtPrice != "1.01" {
		t.Fatalf("unexpected close price %s", first.CloseSqrtPrice)
	}
	if metrics[1].PoolHash != "p1" || metrics[1].WindowStart.Unix() != 300 || metrics[1].SwapCount != 1 {
		t.Fatalf("unexpected second window %+v", metrics[1])
	}
	if metrics[2].PoolHash != "p2" || metrics[2].FeeMethod != feeMethodNone {
		t.Fatalf("pool without a create event should have no fee estimate: %+v", metrics[2])
	}
}

func TestAggregatorFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink := storage.NewJsonlStorage(path)
	if err := sink.PutEventBatch([]model.Event{
		{EventName: model.EventSwap, PoolHash: "p1", Timestamp: 100, Data: model.SwapEventData{Amount0: "1", Amount1: "-1"}},
		{EventName: model.EventSwap, PoolHash: "p1", Timestamp: 700, Data: model.SwapEventData{Amount0: "1", Amount1: "-1"}},
	}); err != nil {
		t.Fatalf("write events: %v", err)
	}

	metrics, err := NewAggregator(Config{WindowSeconds: 300, From: 600}, nil).Run(path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(metrics) != 1 || metrics[0].WindowStart.Unix() != 600 {
		t.Fatalf("unexpected windows %+v", metrics)
	}

	if _, err := NewAggregator(Config{}, nil).Run(path); err == nil {
		t.Fatalf("expected error for zero window")
	}
}
