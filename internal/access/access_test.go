package access

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/user/netscan/internal/model"
)

func freeReq(tool model.ToolID, identity string) model.DiagnosticRequest {
	return model.DiagnosticRequest{Tool: tool, Target: "example.com", Identity: identity, Tier: model.TierFree}
}

func TestEntitlement(t *testing.T) {
	c := NewController(5, time.Minute)

	_, err := c.Authorize(freeReq(model.ToolPortScan, "u1"))
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Reason != DenyUpgradeRequired {
		t.Fatalf("free caller on pro tool: got %v, want UpgradeRequired", err)
	}

	if _, err := c.Authorize(freeReq(model.ToolPing, "u1")); err != nil {
		t.Fatalf("free caller on free tool: %v", err)
	}

	pro := model.DiagnosticRequest{Tool: model.ToolPortScan, Tier: model.TierPro, Identity: "u2"}
	if rl, err := c.Authorize(pro); err != nil || rl != nil {
		t.Fatalf("pro caller on pro tool: got (%v, %v)", rl, err)
	}
}

func TestQuotaFixedWindow(t *testing.T) {
	c := NewController(5, time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	for i := 0; i < 5; i++ {
		rl, err := c.Authorize(freeReq(model.ToolPing, "u1"))
		if err != nil {
			t.Fatalf("consumption %d should succeed: %v", i+1, err)
		}
		if rl.Remaining != 4-i {
			t.Fatalf("consumption %d: remaining = %d, want %d", i+1, rl.Remaining, 4-i)
		}
	}

	_, err := c.Authorize(freeReq(model.ToolPing, "u1"))
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Reason != DenyRateLimited {
		t.Fatalf("6th consumption: got %v, want RateLimited", err)
	}
	if aerr.ResetIn <= 0 || aerr.ResetIn > time.Minute {
		t.Fatalf("ResetIn out of range: %v", aerr.ResetIn)
	}

	// A different identity has its own window.
	if _, err := c.Authorize(freeReq(model.ToolPing, "u2")); err != nil {
		t.Fatalf("separate identity should not be limited: %v", err)
	}

	// After the window elapses, consumption succeeds again.
	base = base.Add(61 * time.Second)
	if _, err := c.Authorize(freeReq(model.ToolPing, "u1")); err != nil {
		t.Fatalf("post-reset consumption should succeed: %v", err)
	}
}

func TestDenialDoesNotConsume(t *testing.T) {
	c := NewController(1, time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	if _, err := c.Authorize(freeReq(model.ToolPing, "u1")); err != nil {
		t.Fatal(err)
	}

	// Two denied attempts, then reset: the full quota must be back.
	for i := 0; i < 2; i++ {
		if _, err := c.Authorize(freeReq(model.ToolPing, "u1")); err == nil {
			t.Fatal("expected denial")
		}
	}

	base = base.Add(2 * time.Minute)
	rl, err := c.Authorize(freeReq(model.ToolPing, "u1"))
	if err != nil {
		t.Fatal(err)
	}
	if rl.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0 (fresh window of 1 minus this call)", rl.Remaining)
	}
}

func TestExpiredWindowsArePruned(t *testing.T) {
	c := NewController(5, time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	for _, id := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		if _, err := c.Authorize(freeReq(model.ToolPing, id)); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(c.windows); got != 3 {
		t.Fatalf("windows = %d, want 3", got)
	}

	base = base.Add(2 * time.Minute)
	if _, err := c.Authorize(freeReq(model.ToolPing, "4.4.4.4")); err != nil {
		t.Fatal(err)
	}
	if got := len(c.windows); got != 1 {
		t.Errorf("windows = %d after expiry, want 1 (only the live identity)", got)
	}
}

func TestProBypass(t *testing.T) {
	c := NewController(5, time.Minute)
	req := model.DiagnosticRequest{Tool: model.ToolPing, Tier: model.TierPro, Identity: "pro1"}

	for i := 0; i < 50; i++ {
		if _, err := c.Authorize(req); err != nil {
			t.Fatalf("pro caller rate limited on call %d: %v", i+1, err)
		}
	}
}

func TestIdentityPrecedence(t *testing.T) {
	if got := Identity("user-1", "1.2.3.4"); got != "user-1" {
		t.Errorf("user id should win, got %q", got)
	}
	if got := Identity("", "1.2.3.4"); got != "1.2.3.4" {
		t.Errorf("client IP should be next, got %q", got)
	}
	if got := Identity("", ""); got != "anon" {
		t.Errorf("fallback should be anon, got %q", got)
	}
	if got := Identity("", "unknown"); got != "anon" {
		t.Errorf("unknown IP should fall back to anon, got %q", got)
	}
}

func TestClientIPHeaderPrecedence(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.9:1234"
	r.Header.Set("X-Forwarded-For", "3.3.3.3, 4.4.4.4")
	r.Header.Set("X-Real-IP", "2.2.2.2")
	r.Header.Set("CF-Connecting-IP", "1.1.1.1")

	if got := ClientIP(r); got != "1.1.1.1" {
		t.Errorf("CDN header should win, got %q", got)
	}

	r.Header.Del("CF-Connecting-IP")
	if got := ClientIP(r); got != "2.2.2.2" {
		t.Errorf("real-IP header should be next, got %q", got)
	}

	r.Header.Del("X-Real-IP")
	if got := ClientIP(r); got != "3.3.3.3" {
		t.Errorf("first forwarded-for entry should be next, got %q", got)
	}

	r.Header.Del("X-Forwarded-For")
	if got := ClientIP(r); got != "10.0.0.9" {
		t.Errorf("socket address should be last, got %q", got)
	}
}
