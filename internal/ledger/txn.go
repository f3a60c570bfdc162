package ledger

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Txn buffers the reads and writes of one invocation. Reads observe the
// transaction's own pending writes; nothing reaches the store until Commit.
type Txn struct {
	ID        string
	Identity  string
	Timestamp time.Time

	store  Store
	reads  map[string]int64
	writes map[string]Write
}

// Begin opens a transaction on store acting as identity at time now.
func Begin(store Store, identity string, now time.Time) *Txn {
	return &Txn{
		ID:        uuid.NewString(),
		Identity:  identity,
		Timestamp: now.UTC(),
		store:     store,
		reads:     make(map[string]int64),
		writes:    make(map[string]Write),
	}
}

// TxUnixTime is the transaction timestamp in seconds.
func (t *Txn) TxUnixTime() int64 {
	return t.Timestamp.Unix()
}

// GetState decodes the JSON value under key into out. It returns ErrNotFound
// when the key is absent or deleted in this transaction.
func (t *Txn) GetState(ctx context.Context, key string, out any) error {
	if w, ok := t.writes[key]; ok {
		if w.Delete {
			return ErrNotFound
		}
		return decode(key, w.Value, out)
	}

	rec, err := t.store.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Wrapf(err, "get %q", key)
	}
	if _, seen := t.reads[key]; !seen {
		t.reads[key] = rec.Version
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return decode(key, rec.Value, out)
}

// PutState stages v, encoded as JSON, under key.
func (t *Txn) PutState(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %q", key)
	}
	t.writes[key] = Write{Key: key, Value: data}
	return nil
}

// DeleteState stages removal of key.
func (t *Txn) DeleteState(key string) {
	t.writes[key] = Write{Key: key, Delete: true}
}

// Writes returns the staged writes ordered by key.
func (t *Txn) Writes() []Write {
	out := make([]Write, 0, len(t.writes))
	for _, w := range t.writes {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Commit applies the staged writes if nothing the transaction read has changed.
// A read-only transaction commits nothing.
func (t *Txn) Commit(ctx context.Context) error {
	if len(t.writes) == 0 {
		return nil
	}
	reads := make(map[string]int64, len(t.reads))
	for k, v := range t.reads {
		reads[k] = v
	}
	return t.store.Apply(ctx, ChangeSet{Reads: reads, Writes: t.Writes()})
}

func decode(key string, data []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %q", key)
	}
	return nil
}
