package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreFile || cfg.StateFile != "./data/ledger.json" {
		t.Fatalf("unexpected store config %+v", cfg)
	}
	if !cfg.ProtocolFee.IsZero() || cfg.MaxRetries != 5 || cfg.RetryBackoff != 50*time.Millisecond {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DEX_STORE", "memory")
	t.Setenv("DEX_PROTOCOL_FEE", "0.2")
	t.Setenv("DEX_MAX_RETRIES", "2")
	t.Setenv("DEX_AUTHORITIES", "client|alice, client|bob")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreMemory || cfg.ProtocolFee.String() != "0.2" || cfg.MaxRetries != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.Authorities) != 2 || cfg.Authorities[1] != "client|bob" {
		t.Fatalf("unexpected authorities %v", cfg.Authorities)
	}
}

func TestLoadFlagsAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dex.yaml")
	if err := os.WriteFile(path, []byte("store: postgres\npg-dsn: postgres://localhost/dex\nidentity: client|ops\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("identity", "", "")
	if err := flags.Set("identity", "client|cli"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StorePostgres || cfg.PGDSN != "postgres://localhost/dex" {
		t.Fatalf("unexpected store config %+v", cfg)
	}
	if cfg.Identity != "client|cli" {
		t.Fatalf("flag should override file, got %q", cfg.Identity)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown store":     {"DEX_STORE": "sqlite"},
		"postgres no dsn":   {"DEX_STORE": "postgres"},
		"fee out of bounds": {"DEX_PROTOCOL_FEE": "1.5"},
		"fee not a number":  {"DEX_PROTOCOL_FEE": "abc"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load("", nil); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
