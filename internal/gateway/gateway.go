// Package gateway is the façade in front of the diagnostic tools:
// validation, authorization, cache, executor, enrichment and
// normalization in a fixed order. Rejected requests never reach the
// network.
package gateway

import (
	"context"
	"time"

	"github.com/user/netscan/internal/access"
	"github.com/user/netscan/internal/cache"
	"github.com/user/netscan/internal/model"
	"github.com/user/netscan/internal/probes"
	"github.com/user/netscan/internal/storage"
	"github.com/user/netscan/internal/util"
	"github.com/user/netscan/internal/validate"
)

// Gateway walks each request through validator, access controller,
// cache and executor, and wraps the outcome in the uniform envelope.
type Gateway struct {
	access     *access.Controller
	execute    ExecutorFunc
	caches     map[model.ToolID]*cache.Cache
	audit      *storage.AuditStore
	upgradeURL string

	now func() time.Time
}

// New creates a gateway. audit may be nil to disable the audit log.
func New(ctl *access.Controller, execute ExecutorFunc, cacheCapacity int, upgradeURL string, audit *storage.AuditStore) *Gateway {
	caches := make(map[model.ToolID]*cache.Cache, len(model.AllTools()))
	for _, tool := range model.AllTools() {
		caches[tool] = cache.New(cacheCapacity)
	}

	return &Gateway{
		access:     ctl,
		execute:    execute,
		caches:     caches,
		audit:      audit,
		upgradeURL: upgradeURL,
		now:        time.Now,
	}
}

// Run handles one diagnostic request end to end. The returned error,
// when non-nil, is the typed failure (validation, access or executor)
// for status-code mapping; the envelope is complete either way.
func (g *Gateway) Run(ctx context.Context, req model.DiagnosticRequest) (model.DiagnosticResult, error) {
	start := g.now()

	// Validated
	target, err := validate.Target(req.Target, req.Tool.TargetKind(), req.Tool.ParamName())
	if err != nil {
		result := g.fail(req, nil, err, start)
		g.record(req, result, start)
		return result, err
	}
	req.Target = target

	// Authorized. Denials are audited like every other decision; they
	// are the traffic abuse review looks for.
	rl, err := g.access.Authorize(req)
	if err != nil {
		result := g.fail(req, nil, err, start)
		g.record(req, result, start)
		return result, err
	}

	if req.Mock {
		result := model.DiagnosticResult{
			Success:   true,
			Tool:      req.Tool,
			Data:      probes.SamplePayload(req.Tool, req.Target),
			RateLimit: rl,
			Timestamp: g.now(),
		}
		g.record(req, result, start)
		return result, nil
	}

	// CacheChecked
	key := cache.Key(req.Target, req.Ports)
	if hit, ok := g.caches[req.Tool].Get(key); ok {
		hit.Cached = true
		hit.RateLimit = rl
		g.record(req, hit, start)
		return hit, nil
	}

	// Executing
	data, err := g.execute(ctx, req)
	if err != nil {
		util.Error("%s executor failed for %s: %v", req.Tool, req.Target, err)
		result := g.fail(req, rl, err, start)
		g.record(req, result, start)
		return result, err
	}

	// Normalizing: timestamp is completion time; the cache layer, not
	// the normalizer, marks hits as cached.
	result := model.DiagnosticResult{
		Success:   true,
		Tool:      req.Tool,
		Data:      data,
		Cached:    false,
		RateLimit: rl,
		Timestamp: g.now(),
	}

	// Caching: success only. A transient upstream outage must not
	// poison the cache for the TTL window.
	g.caches[req.Tool].Set(key, result, req.Tool.CacheTTL())

	g.record(req, result, start)
	return result, nil
}

func (g *Gateway) fail(req model.DiagnosticRequest, rl *model.RateLimitInfo, err error, start time.Time) model.DiagnosticResult {
	result := model.DiagnosticResult{
		Success:   false,
		Tool:      req.Tool,
		Error:     err.Error(),
		RateLimit: rl,
		Timestamp: g.now(),
	}

	if aerr, ok := err.(*access.Error); ok {
		switch aerr.Reason {
		case access.DenyUpgradeRequired:
			result.UpgradeURL = g.upgradeURL
		case access.DenyRateLimited:
			result.RateLimit = &model.RateLimitInfo{
				Remaining: 0,
				ResetIn:   int(aerr.ResetIn.Seconds()),
			}
		}
	}

	return result
}

// record writes the decision to the audit log. Best effort: a storage
// failure never fails the request.
func (g *Gateway) record(req model.DiagnosticRequest, result model.DiagnosticResult, start time.Time) {
	if g.audit == nil {
		return
	}

	rec := model.AuditRecord{
		Tool:       string(req.Tool),
		Target:     req.Target,
		Identity:   req.Identity,
		Tier:       string(req.Tier),
		Success:    result.Success,
		Cached:     result.Cached,
		Error:      result.Error,
		DurationMs: float64(g.now().Sub(start).Microseconds()) / 1000.0,
		Timestamp:  result.Timestamp,
	}
	if err := g.audit.Record(rec); err != nil {
		util.Warn("audit log write failed: %v", err)
	}
}
