package postgres

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"

	"liquidityCore/internal/ledger"
)

func TestKeyParamEncodesCompositeKeys(t *testing.T) {
	key, err := ledger.CompositeKey(ledger.ObjectTick, "pool", "-600")
	if err != nil {
		t.Fatalf("composite key: %v", err)
	}
	if !strings.Contains(key, "\x00") {
		t.Fatalf("composite key %q has no separators", key)
	}

	m := pgtype.NewMap()

	bin, err := m.Encode(pgtype.ByteaOID, pgtype.BinaryFormatCode, keyParam(key), nil)
	if err != nil {
		t.Fatalf("encode binary: %v", err)
	}
	if !bytes.Equal(bin, []byte(key)) {
		t.Fatalf("binary encoding %q, want %q", bin, key)
	}

	text, err := m.Encode(pgtype.ByteaOID, pgtype.TextFormatCode, keyParam(key), nil)
	if err != nil {
		t.Fatalf("encode text: %v", err)
	}
	if bytes.IndexByte(text, 0) >= 0 {
		t.Fatalf("text encoding carries a NUL byte: %q", text)
	}
	if string(text) != `\x`+hex.EncodeToString([]byte(key)) {
		t.Fatalf("text encoding %q", text)
	}

	var back []byte
	if err := m.Scan(pgtype.ByteaOID, pgtype.BinaryFormatCode, bin, &back); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if string(back) != key {
		t.Fatalf("round trip %q, want %q", back, key)
	}
}

func TestSchemaStoresKeysAsBytea(t *testing.T) {
	if !strings.Contains(schema, "key        BYTEA PRIMARY KEY") {
		t.Fatalf("ledger_state key column is not bytea:\n%s", schema)
	}
}
