package probes

import (
	"bufio"
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/user/netscan/internal/model"
)

// Enricher resolves a best-effort location for an IP. A nil result
// means the location stays unknown; enrichment never fails a trace.
type Enricher interface {
	Enrich(ctx context.Context, ip string) *model.GeoPoint
}

// Tracer runs bounded-hop path traces.
type Tracer struct {
	runner   Runner
	maxHops  int
	timeout  time.Duration
	enricher Enricher
}

// NewTracer creates a tracer. enricher may be nil to skip hop
// locations entirely.
func NewTracer(runner Runner, maxHops int, timeout time.Duration, enricher Enricher) *Tracer {
	if maxHops <= 0 {
		maxHops = 10
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Tracer{runner: runner, maxHops: maxHops, timeout: timeout, enricher: enricher}
}

// Hop lines look like " 3  142.250.65.78  12.345 ms". Lines that do
// not match (unresolved "* * *" hops included) are dropped.
var hopRe = regexp.MustCompile(`^\s*(\d+)\s+(\d+\.\d+\.\d+\.\d+)\s+([\d.]+)\s*ms`)

// tracert puts latencies before the address:
// "  3    12 ms    11 ms    12 ms  142.250.65.78"
var hopWinRe = regexp.MustCompile(`^\s*(\d+)\s+<?(\d+) ms\s+(?:<?\d+ ms|\*)\s+(?:<?\d+ ms|\*)\s+(\d+\.\d+\.\d+\.\d+)\s*$`)

// Trace runs the path trace and attaches per-hop locations. Each
// hop's enrichment runs concurrently and fails independently; a hop
// whose lookup fails reports an Unknown location.
func (t *Tracer) Trace(ctx context.Context, target string) (*model.TraceData, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	out, err := t.runner.RunTraceroute(ctx, target, t.maxHops)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Timeout("traceroute deadline exceeded", err)
		}
		return nil, Process("traceroute failed: "+err.Error(), err)
	}

	hops := parseTraceOutput(out)
	t.enrichHops(ctx, hops)

	return &model.TraceData{Target: target, Hops: hops}, nil
}

func parseTraceOutput(out string) []model.TraceHop {
	var hops []model.TraceHop

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()

		ipIdx, latIdx := 2, 3
		m := hopRe.FindStringSubmatch(line)
		if m == nil {
			m = hopWinRe.FindStringSubmatch(line)
			ipIdx, latIdx = 3, 2
		}
		if m == nil {
			continue
		}

		hopNum, _ := strconv.Atoi(m[1])
		latency, _ := strconv.ParseFloat(m[latIdx], 64)
		hops = append(hops, model.TraceHop{
			Hop:       hopNum,
			IP:        m[ipIdx],
			LatencyMs: latency,
			City:      "Unknown",
			Country:   "Unknown",
		})
	}

	return hops
}

// enrichHops fills hop locations in place. The core trace data is
// already complete before this runs, so one slow lookup only delays
// the response, never another hop's data.
func (t *Tracer) enrichHops(ctx context.Context, hops []model.TraceHop) {
	if t.enricher == nil {
		return
	}

	var wg sync.WaitGroup
	for i := range hops {
		wg.Add(1)
		go func(hop *model.TraceHop) {
			defer wg.Done()
			if geo := t.enricher.Enrich(ctx, hop.IP); geo != nil {
				hop.City = geo.City
				hop.Country = geo.Country
				hop.Lat = geo.Lat
				hop.Lon = geo.Lon
			}
		}(&hops[i])
	}
	wg.Wait()
}
