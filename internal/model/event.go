package model

import "encoding/json"

// Event is a committed ledger invocation enriched with metadata.
type Event struct {
	TxID      string      `json:"tx_id"`
	EventName string      `json:"event_name"`
	PoolHash  string      `json:"pool_hash"`
	Identity  string      `json:"identity"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// EventRecord is the JSON representation read back from an event log.
type EventRecord struct {
	TxID      string          `json:"tx_id"`
	EventName string          `json:"event_name"`
	PoolHash  string          `json:"pool_hash"`
	Identity  string          `json:"identity"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}
