package cache

import (
	"testing"

	"github.com/yooz-lang/go-yooz/normalize"
)

func result(words ...string) normalize.Result {
	r := normalize.Result{}
	for _, w := range words {
		r.Words = append(r.Words, normalize.Word{Text: w})
	}
	return r
}

func TestNewCacheEmpty(t *testing.T) {
	c := New(100)
	if c.Size() != 0 {
		t.Error("new cache should be empty")
	}
}

func TestPutGet(t *testing.T) {
	c := New(100)
	c.Put("سلام دنیا", result("سلام", "دنیا"))

	got, ok := c.Get("سلام دنیا")
	if !ok {
		t.Fatal("should hit")
	}
	if got.Text() != "سلام دنیا" {
		t.Errorf("got %q", got.Text())
	}

	if _, ok := c.Get("خداحافظ"); ok {
		t.Error("different input should miss")
	}
}

func TestEvictionFIFO(t *testing.T) {
	c := New(2)
	c.Put("الف", result("الف"))
	c.Put("ب", result("ب"))
	c.Put("ج", result("ج"))

	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
	if _, ok := c.Get("الف"); ok {
		t.Error("oldest entry should be evicted")
	}
	if _, ok := c.Get("ج"); !ok {
		t.Error("newest entry should remain")
	}
}

func TestGetOrCompute(t *testing.T) {
	c := New(100)

	computeCount := 0
	compute := func() normalize.Result {
		computeCount++
		return result("سلام")
	}

	r1 := c.GetOrCompute("سلام", compute)
	if computeCount != 1 {
		t.Error("should compute on first call")
	}
	r2 := c.GetOrCompute("سلام", compute)
	if computeCount != 1 {
		t.Error("should not compute on second call")
	}
	if r1.Text() != r2.Text() {
		t.Error("should return same result")
	}
}

func TestUnlimitedCache(t *testing.T) {
	c := New(0)
	for _, w := range []string{"الف", "ب", "ج", "د"} {
		c.Put(w, result(w))
	}
	if c.Size() != 4 {
		t.Errorf("unlimited cache evicted: size = %d", c.Size())
	}
}

func TestStats(t *testing.T) {
	c := New(2)
	c.Put("الف", result("الف"))

	c.Get("الف") // hit
	c.Get("ب")   // miss
	c.Get("الف") // hit

	c.Put("ب", result("ب"))
	c.Put("ج", result("ج")) // evicts

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("hits=%d misses=%d, want 2/1", stats.Hits, stats.Misses)
	}
	if stats.Evictions != 1 {
		t.Errorf("evictions = %d, want 1", stats.Evictions)
	}
	if stats.HitRate < 0.66 || stats.HitRate > 0.67 {
		t.Errorf("hit rate = %v", stats.HitRate)
	}
}

func TestClear(t *testing.T) {
	c := New(10)
	c.Put("الف", result("الف"))
	c.Clear()
	if c.Size() != 0 {
		t.Error("clear should empty the cache")
	}
	if _, ok := c.Get("الف"); ok {
		t.Error("cleared entry should miss")
	}
}
