package ledger

import (
	"context"
	"sync"
)

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	seq     int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{Value: append([]byte(nil), rec.Value...), Version: rec.Version}, nil
}

func (s *MemoryStore) Apply(ctx context.Context, cs ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ApplyTo(s.records, &s.seq, cs)
}

func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// ApplyTo validates cs against records and applies it in place, stamping
// every write with the next value of seq. Versions are never reused, so a key
// deleted and recreated after a read still fails validation. Callers hold
// their own lock.
func ApplyTo(records map[string]Record, seq *int64, cs ChangeSet) error {
	for key, version := range cs.Reads {
		if records[key].Version != version {
			return ErrWriteConflict
		}
	}
	for _, w := range cs.Writes {
		if w.Delete {
			delete(records, w.Key)
			continue
		}
		*seq++
		records[w.Key] = Record{
			Value:   append([]byte(nil), w.Value...),
			Version: *seq,
		}
	}
	return nil
}
