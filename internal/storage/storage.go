package storage

import "liquidityCore/internal/model"

// EventSink receives the events of committed ledger invocations.
type EventSink interface {
	PutEventBatch(events []model.Event) error
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) PutEventBatch([]model.Event) error { return nil }
