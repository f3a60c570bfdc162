package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilterEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	lines := []string{
		`{"tx_id":"1","event_name":"Mint","pool_hash":"aa","identity":"client|alice","data":{"amount0":"1"}}`,
		`{"tx_id":"2","event_name":"Swap","pool_hash":"aa","identity":"client|bob","data":{"zero_for_one":true}}`,
		`{"tx_id":"3","event_name":"Swap","pool_hash":"bb","identity":"client|bob","data":{"zero_for_one":false}}`,
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cases := []struct {
		name  string
		pool  string
		typ   string
		where []string
		limit int
		want  int
	}{
		{name: "all", want: 3},
		{name: "by pool", pool: "aa", want: 2},
		{name: "by type", typ: "Swap", want: 2},
		{name: "by path", typ: "Swap", where: []string{"data.zero_for_one=true"}, want: 1},
		{name: "limit", limit: 1, want: 1},
		{name: "no match", pool: "cc", want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			filters, err := parseEventFilters(tc.pool, tc.typ, "", tc.where)
			if err != nil {
				t.Fatalf("filters: %v", err)
			}
			got, err := filterEvents(path, filters, tc.limit)
			if err != nil {
				t.Fatalf("filter: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("expected %d events, got %d", tc.want, len(got))
			}
		})
	}
}

func TestParseEventFiltersRejectsBadWhere(t *testing.T) {
	if _, err := parseEventFilters("", "", "", []string{"data.amount0"}); err == nil {
		t.Fatalf("expected error for missing value")
	}
}
