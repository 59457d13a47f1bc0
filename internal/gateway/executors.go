package gateway

import (
	"context"
	"fmt"

	"github.com/user/netscan/internal/model"
	"github.com/user/netscan/internal/probes"
)

// ExecutorFunc performs the probe for one request and returns the
// tool-specific payload.
type ExecutorFunc func(ctx context.Context, req model.DiagnosticRequest) (interface{}, error)

// Executors bundles one executor per diagnostic capability.
type Executors struct {
	Ping     *probes.Pinger
	DNS      *probes.DNSResolver
	Whois    *probes.WhoisClient
	Geo      *probes.GeoClient
	Scanner  *probes.PortScanner
	Tracer   *probes.Tracer
	Analyzer *probes.Analyzer
}

// Execute dispatches to the executor for the request's tool. The
// switch is exhaustive over model.AllTools.
func (e *Executors) Execute(ctx context.Context, req model.DiagnosticRequest) (interface{}, error) {
	switch req.Tool {
	case model.ToolPing:
		return e.Ping.Ping(ctx, req.Target)
	case model.ToolDNS:
		return e.DNS.Lookup(ctx, req.Target)
	case model.ToolWhois:
		return e.Whois.Lookup(ctx, req.Target)
	case model.ToolGeoIP, model.ToolIPLookup:
		return e.Geo.Lookup(ctx, req.Target)
	case model.ToolPortScan:
		return e.Scanner.Scan(ctx, req.Target, req.Ports)
	case model.ToolTraceroute:
		return e.Tracer.Trace(ctx, req.Target)
	case model.ToolNetworkAnalyzer:
		return e.Analyzer.Analyze(ctx, req.Target)
	}
	return nil, probes.Process(fmt.Sprintf("no executor for tool %q", req.Tool), nil)
}
