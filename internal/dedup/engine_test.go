package dedup

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func testAddr(i int) string {
	return fmt.Sprintf("02:00:00:%02X:%02X:%02X", (i>>16)&0xFF, (i>>8)&0xFF, i&0xFF)
}

func TestEnsureIndexIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "capture")
	e := New(dir)

	if err := e.EnsureIndex(); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if _, err := os.Stat(e.IndexPath()); err != nil {
		t.Fatalf("index file not created: %v", err)
	}
	if err := e.EnsureIndex(); err != nil {
		t.Fatalf("second EnsureIndex: %v", err)
	}
}

func TestEnsureIndexKeepsExistingHistory(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)
	if err := e.Remember("AA:BB:CC:DD:EE:FF"); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	// A fresh engine over the same directory must not truncate.
	e2 := New(dir)
	if err := e2.EnsureIndex(); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	found, err := e2.InIndex("AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatalf("InIndex: %v", err)
	}
	if !found {
		t.Error("address lost after re-initialization")
	}
}

func TestRememberThenMembership(t *testing.T) {
	e := New(t.TempDir())
	const addr = "AA:BB:CC:DD:EE:FF"

	if e.InCache(addr) {
		t.Fatal("cache hit before insert")
	}
	if found, _ := e.InIndex(addr); found {
		t.Fatal("index hit before insert")
	}

	if err := e.Remember(addr); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if !e.InCache(addr) {
		t.Error("cache miss after Remember")
	}
	for i := 0; i < 3; i++ {
		found, err := e.InIndex(addr)
		if err != nil {
			t.Fatalf("InIndex: %v", err)
		}
		if !found {
			t.Errorf("index miss on query %d after Remember", i)
		}
	}
}

func TestIndexRecordsAreSixBytes(t *testing.T) {
	e := New(t.TempDir())
	for i := 0; i < 5; i++ {
		if err := e.Remember(testAddr(i)); err != nil {
			t.Fatalf("Remember: %v", err)
		}
	}
	info, err := os.Stat(e.IndexPath())
	if err != nil {
		t.Fatalf("stat index: %v", err)
	}
	if info.Size() != 5*blockSize {
		t.Errorf("index size = %d, want %d", info.Size(), 5*blockSize)
	}
}

func TestInIndexRejectsMalformedAddress(t *testing.T) {
	e := New(t.TempDir())
	if _, err := e.InIndex("not-a-mac"); err == nil {
		t.Error("malformed address accepted")
	}
}

func TestCacheMaintenance(t *testing.T) {
	e := New(t.TempDir())

	// Fill past the clean threshold; the insert that crosses it must
	// trigger a shrink to half capacity.
	for i := 0; i < cleanThreshold+1; i++ {
		if err := e.Remember(testAddr(i)); err != nil {
			t.Fatalf("Remember: %v", err)
		}
		if e.CacheLen() > CacheSize {
			t.Fatalf("cache exceeded capacity: %d", e.CacheLen())
		}
	}
	if got := e.CacheLen(); got != CacheSize/2 {
		t.Errorf("cache size after maintenance = %d, want %d", got, CacheSize/2)
	}

	// Lexicographically smallest entries are evicted first, so the
	// highest-numbered addresses survive.
	if !e.InCache(testAddr(cleanThreshold)) {
		t.Error("most recent (lexicographically largest) entry evicted")
	}
	if e.InCache(testAddr(0)) {
		t.Error("lexicographically smallest entry survived maintenance")
	}

	// Evicted entries must still be caught by the index.
	found, err := e.InIndex(testAddr(0))
	if err != nil {
		t.Fatalf("InIndex: %v", err)
	}
	if !found {
		t.Error("evicted entry missing from index")
	}
}

func TestVerifyStorageRecreatesRemovedDir(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "capture")
	e := New(dir)
	if err := e.EnsureIndex(); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("remove dir: %v", err)
	}
	if err := e.VerifyStorage(); err != nil {
		t.Fatalf("VerifyStorage: %v", err)
	}
	if _, err := os.Stat(e.IndexPath()); err != nil {
		t.Errorf("index not recreated: %v", err)
	}
}
