package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/user/netscan/internal/model"
)

func result(tool model.ToolID) model.DiagnosticResult {
	return model.DiagnosticResult{Success: true, Tool: tool, Timestamp: time.Now()}
}

func TestGetSet(t *testing.T) {
	c := New(10)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("example.com", result(model.ToolDNS), time.Minute)
	got, ok := c.Get("example.com")
	if !ok || got.Tool != model.ToolDNS {
		t.Fatalf("expected hit, got (%v, %v)", got, ok)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New(10)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("example.com", result(model.ToolDNS), 5*time.Minute)

	base = base.Add(4 * time.Minute)
	if _, ok := c.Get("example.com"); !ok {
		t.Fatal("entry should still be fresh before TTL")
	}

	base = base.Add(2 * time.Minute)
	if _, ok := c.Get("example.com"); ok {
		t.Fatal("entry should be expired after TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be removed, len = %d", c.Len())
	}
}

func TestLRUEviction(t *testing.T) {
	c := New(3)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("key%d", i), result(model.ToolPing), time.Minute)
	}

	// Touch key0 so key1 becomes the eviction candidate.
	if _, ok := c.Get("key0"); !ok {
		t.Fatal("key0 should be present")
	}

	c.Set("key3", result(model.ToolPing), time.Minute)

	if _, ok := c.Get("key1"); ok {
		t.Fatal("key1 should have been evicted")
	}
	for _, k := range []string{"key0", "key2", "key3"} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("%s should survive eviction", k)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
}

func TestKeyIsolation(t *testing.T) {
	a := Key("example.com", []int{22, 80})
	b := Key("example.com", []int{22, 80, 443})
	if a == b {
		t.Fatalf("keys with different port lists must differ: %q", a)
	}

	// Order does not matter.
	if Key("example.com", []int{80, 22}) != a {
		t.Fatal("port order should not change the key")
	}

	if Key("example.com", nil) != "example.com" {
		t.Fatal("no ports should key on target alone")
	}
}

func TestSetOverwrite(t *testing.T) {
	c := New(2)
	c.Set("k", result(model.ToolPing), time.Minute)
	c.Set("k", result(model.ToolDNS), time.Minute)

	got, ok := c.Get("k")
	if !ok || got.Tool != model.ToolDNS {
		t.Fatalf("overwrite lost: (%v, %v)", got, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
}
