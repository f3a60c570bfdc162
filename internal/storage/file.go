package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"liquidityCore/internal/ledger"
)

// FileStore is a ledger.Store persisted as a JSON snapshot. Every Apply
// rewrites the snapshot through a temporary file and a rename.
type FileStore struct {
	path    string
	mu      sync.RWMutex
	records map[string]ledger.Record
	seq     int64
}

type fileSnapshot struct {
	Seq       int64                 `json:"seq"`
	UpdatedAt string                `json:"updated_at"`
	Records   map[string]fileRecord `json:"records"`
}

type fileRecord struct {
	Value   json.RawMessage `json:"value"`
	Version int64           `json:"version"`
}

// OpenFileStore loads the snapshot at path, starting empty when it does not exist.
func OpenFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("state file path is required")
	}
	s := &FileStore{path: path, records: make(map[string]ledger.Record)}

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("stat state file: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("state path is a directory")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	var snap fileSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	for key, rec := range snap.Records {
		s.records[key] = ledger.Record{Value: []byte(rec.Value), Version: rec.Version}
	}
	s.seq = snap.Seq
	return s, nil
}

func (s *FileStore) Get(ctx context.Context, key string) (ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return ledger.Record{}, ledger.ErrNotFound
	}
	return ledger.Record{Value: append([]byte(nil), rec.Value...), Version: rec.Version}, nil
}

// Apply validates and applies cs, then persists the snapshot. On a write
// failure the in-memory state is rolled back.
func (s *FileStore) Apply(ctx context.Context, cs ledger.ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]ledger.Record, len(s.records))
	for k, v := range s.records {
		next[k] = v
	}
	seq := s.seq
	if err := ledger.ApplyTo(next, &seq, cs); err != nil {
		return err
	}
	if err := s.save(next, seq); err != nil {
		return err
	}
	s.records = next
	s.seq = seq
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) save(records map[string]ledger.Record, seq int64) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	snap := fileSnapshot{
		Seq:       seq,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Records:   make(map[string]fileRecord, len(records)),
	}
	for key, rec := range records {
		snap.Records[key] = fileRecord{Value: rec.Value, Version: rec.Version}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}
