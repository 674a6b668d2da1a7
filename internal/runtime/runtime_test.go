package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/moorlog/moor/internal/config"
	pebblestore "github.com/moorlog/moor/internal/storage/pebble"
)

func TestOpenAndHealth(t *testing.T) {
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestOpenLedgerUsesConfiguredStream(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.StreamName = "proofs"
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	l, err := rt.OpenLedger()
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	if l.Stream() != "proofs" {
		t.Fatalf("stream: %q", l.Stream())
	}
}
