package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *MockupCache {
	t.Helper()
	c, err := NewMockupCache(filepath.Join(t.TempDir(), "mockups"))
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	return c
}

func TestGenerateKey(t *testing.T) {
	c := newTestCache(t)

	t.Run("is deterministic", func(t *testing.T) {
		a := c.GenerateKey("tshirt-black-front", "d1", "c1")
		b := c.GenerateKey("tshirt-black-front", "d1", "c1")
		if a != b {
			t.Fatalf("same triple keyed differently: %s vs %s", a, b)
		}
	})

	t.Run("changes with any component", func(t *testing.T) {
		base := c.GenerateKey("tshirt-black-front", "d1", "c1")
		if c.GenerateKey("tshirt-white-front", "d1", "c1") == base {
			t.Fatal("template change did not change the key")
		}
		if c.GenerateKey("tshirt-black-front", "d2", "c1") == base {
			t.Fatal("design change did not change the key")
		}
		if c.GenerateKey("tshirt-black-front", "d1", "c2") == base {
			t.Fatal("config change did not change the key")
		}
	})

	t.Run("empty config hash is omitted", func(t *testing.T) {
		if c.GenerateKey("t", "d", "") == c.GenerateKey("t", "d", "x") {
			t.Fatal("present config hash should differ from absent one")
		}
	})
}

func TestCacheRoundtrip(t *testing.T) {
	c := newTestCache(t)
	key := c.GenerateKey("poster-front", c.HashBuffer([]byte("design")), "")

	if got := c.Get(key); got != nil {
		t.Fatalf("expected miss before Set, got %d bytes", len(got))
	}
	if c.Has(key) {
		t.Fatal("Has reported an entry before Set")
	}

	c.Set(key, []byte("rendered bytes"))

	if !c.Has(key) {
		t.Fatal("Has reported a miss after Set")
	}
	got := c.Get(key)
	if string(got) != "rendered bytes" {
		t.Fatalf("Get returned %q, want %q", got, "rendered bytes")
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 || stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("stats = %+v, want 1 entry, 1 hit, 1 miss", stats)
	}
	if stats.TotalBytes != int64(len("rendered bytes")) {
		t.Fatalf("TotalBytes = %d, want %d", stats.TotalBytes, len("rendered bytes"))
	}

	if !c.Delete(key) {
		t.Fatal("Delete reported nothing removed")
	}
	if c.Has(key) {
		t.Fatal("entry still present after Delete")
	}
	if c.Delete(key) {
		t.Fatal("second Delete reported a removal")
	}
}

func TestCacheClear(t *testing.T) {
	c := newTestCache(t)
	for _, k := range []string{"a", "b", "c"} {
		c.Set(c.GenerateKey(k, "d", ""), []byte(k))
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	stats, err := c.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 0 {
		t.Fatalf("expected empty cache after Clear, got %d entries", stats.Entries)
	}
}

func TestCacheCleanup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mockups")
	c, err := NewMockupCache(dir)
	if err != nil {
		t.Fatal(err)
	}

	oldKey := c.GenerateKey("old", "d", "")
	freshKey := c.GenerateKey("fresh", "d", "")
	c.Set(oldKey, []byte("old"))
	c.Set(freshKey, []byte("fresh"))

	// Age the first entry past the cleanup threshold.
	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, oldKey+".png"), stale, stale); err != nil {
		t.Fatal(err)
	}

	removed, err := c.Cleanup(24 * time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("Cleanup removed %d entries, want 1", removed)
	}
	if c.Has(oldKey) {
		t.Fatal("expired entry survived cleanup")
	}
	if !c.Has(freshKey) {
		t.Fatal("fresh entry was removed by cleanup")
	}
}
