// Package access enforces per-tool entitlement and free-tier request
// quotas for the diagnostics gateway.
package access

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/user/netscan/internal/model"
)

// DenyReason classifies an authorization failure.
type DenyReason int

const (
	DenyUpgradeRequired DenyReason = iota
	DenyRateLimited
)

// Error is an authorization failure with actionable metadata.
type Error struct {
	Reason  DenyReason
	Tool    model.ToolID
	ResetIn time.Duration // rate-limit only
}

func (e *Error) Error() string {
	switch e.Reason {
	case DenyUpgradeRequired:
		return fmt.Sprintf("%s requires a Pro subscription", e.Tool)
	case DenyRateLimited:
		return fmt.Sprintf("rate limit exceeded, retry in %ds", int(e.ResetIn.Seconds()))
	}
	return "access denied"
}

// proOnly lists tools gated behind the pro tier. Tools without a live
// executor (speed-test, ssl-check, wireshark-light) are listed so
// their entitlement answer is already correct when they ship.
var proOnly = map[model.ToolID]bool{
	model.ToolPortScan:        true,
	model.ToolTraceroute:      true,
	model.ToolGeoIP:           true,
	model.ToolNetworkAnalyzer: true,
	"speed-test":              true,
	"ssl-check":               true,
	"wireshark-light":         true,
}

// IsProOnly reports whether tool is gated behind the pro tier.
func IsProOnly(tool model.ToolID) bool {
	return proOnly[tool]
}

// window tracks one identity's consumption inside a fixed window.
type window struct {
	remaining int
	resetAt   time.Time
}

// Controller authorizes diagnostic requests. It holds the only
// mutable quota state in the system and is safe for concurrent use.
type Controller struct {
	mu          sync.Mutex
	windows     map[string]*window
	quotaTokens int
	quotaWindow time.Duration

	now func() time.Time // overridable in tests
}

// NewController creates a controller with the given free-tier quota.
func NewController(tokens int, windowLen time.Duration) *Controller {
	if tokens <= 0 {
		tokens = 5
	}
	if windowLen <= 0 {
		windowLen = 60 * time.Second
	}
	return &Controller{
		windows:     make(map[string]*window),
		quotaTokens: tokens,
		quotaWindow: windowLen,
		now:         time.Now,
	}
}

// Authorize checks entitlement then quota for the request. On success
// it returns the caller's remaining quota (nil for pro callers, which
// are exempt). A denied request never consumes a token.
func (c *Controller) Authorize(req model.DiagnosticRequest) (*model.RateLimitInfo, error) {
	if IsProOnly(req.Tool) && req.Tier != model.TierPro {
		return nil, &Error{Reason: DenyUpgradeRequired, Tool: req.Tool}
	}

	if req.Tier == model.TierPro {
		return nil, nil
	}

	return c.consume(req.Identity, req.Tool)
}

func (c *Controller) consume(identity string, tool model.ToolID) (*model.RateLimitInfo, error) {
	if identity == "" {
		identity = "anon"
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	// Drop lapsed windows so one-off identities do not accumulate for
	// the life of the process.
	for id, win := range c.windows {
		if now.After(win.resetAt) {
			delete(c.windows, id)
		}
	}

	w, ok := c.windows[identity]
	if !ok || now.After(w.resetAt) {
		w = &window{remaining: c.quotaTokens, resetAt: now.Add(c.quotaWindow)}
		c.windows[identity] = w
	}

	if w.remaining <= 0 {
		return nil, &Error{
			Reason:  DenyRateLimited,
			Tool:    tool,
			ResetIn: w.resetAt.Sub(now),
		}
	}

	w.remaining--
	return &model.RateLimitInfo{
		Remaining: w.remaining,
		ResetIn:   int(w.resetAt.Sub(now).Seconds()),
	}, nil
}

// Identity resolves the caller identity for quota keying: the
// authenticated user id wins, then the client IP, then "anon".
func Identity(userID, clientIP string) string {
	if userID != "" {
		return userID
	}
	if clientIP != "" && clientIP != "unknown" {
		return clientIP
	}
	return "anon"
}

// ClientIP extracts the caller's IP from proxy headers in fixed
// precedence: the CDN-provided header first, then the generic real-IP
// header, then the first forwarded-for entry, else the socket address.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.Split(fwd, ",")[0]
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if r.RemoteAddr != "" {
		host := r.RemoteAddr
		if i := strings.LastIndex(host, ":"); i > 0 {
			host = host[:i]
		}
		return host
	}
	return "unknown"
}
