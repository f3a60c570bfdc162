package ledger

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when no record exists under a key.
	ErrNotFound = errors.New("record not found")
	// ErrWriteConflict is returned by Apply when a key read by the change set
	// was modified after it was read.
	ErrWriteConflict = errors.New("write conflict on ledger key")
)

// Record is a stored value and its version. Version 0 means absent.
type Record struct {
	Value   []byte
	Version int64
}

// Write is a single put or delete within a change set.
type Write struct {
	Key    string
	Value  []byte
	Delete bool
}

// ChangeSet is the all-or-nothing result of one transaction. Reads holds the
// version observed for every key the transaction read.
type ChangeSet struct {
	Reads  map[string]int64
	Writes []Write
}

// Store is a versioned key-value ledger. Apply validates the read set and
// applies every write atomically, or nothing.
type Store interface {
	Get(ctx context.Context, key string) (Record, error)
	Apply(ctx context.Context, cs ChangeSet) error
	Close() error
}

const keySeparator = "\x00"

// Object types of the composite keys.
const (
	ObjectPool          = "GCDVP"
	ObjectTick          = "GCTDO"
	ObjectPosition      = "GCDPD"
	ObjectPositionOwner = "GCDPO"
	ObjectFeeConfig     = "GCDFC"
)

// CompositeKey builds a key of the form \x00type\x00attr1\x00attr2\x00.
func CompositeKey(objectType string, attrs ...string) (string, error) {
	if objectType == "" {
		return "", errors.New("composite key: object type required")
	}
	var b strings.Builder
	b.WriteString(keySeparator)
	b.WriteString(objectType)
	b.WriteString(keySeparator)
	for _, attr := range attrs {
		if strings.Contains(attr, keySeparator) {
			return "", errors.Errorf("composite key: attribute %q contains separator", attr)
		}
		b.WriteString(attr)
		b.WriteString(keySeparator)
	}
	return b.String(), nil
}

// SplitCompositeKey returns the object type and attributes of a composite key.
func SplitCompositeKey(key string) (string, []string, error) {
	if !strings.HasPrefix(key, keySeparator) || !strings.HasSuffix(key, keySeparator) || len(key) < 3 {
		return "", nil, errors.Errorf("not a composite key: %q", key)
	}
	parts := strings.Split(key[1:len(key)-1], keySeparator)
	return parts[0], parts[1:], nil
}
