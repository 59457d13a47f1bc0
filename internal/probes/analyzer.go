package probes

import (
	"context"
	"sync"

	"github.com/user/netscan/internal/model"
)

// analyzerPorts is the short well-known subset probed by the
// network analyzer.
var analyzerPorts = []int{22, 80, 443}

// Analyzer is the composite network-analyzer executor: ping
// statistics, DNS A records and a short port probe merged into one
// payload. Branches fail independently.
type Analyzer struct {
	pinger   *Pinger
	resolver *DNSResolver
	scanner  *PortScanner
}

// NewAnalyzer creates an analyzer over the given executors.
func NewAnalyzer(pinger *Pinger, resolver *DNSResolver, scanner *PortScanner) *Analyzer {
	return &Analyzer{pinger: pinger, resolver: resolver, scanner: scanner}
}

// Analyze fans the three probes out concurrently. A branch failure
// leaves that section empty; the analysis fails only when every
// branch fails.
func (a *Analyzer) Analyze(ctx context.Context, target string) (*model.AnalyzerData, error) {
	data := &model.AnalyzerData{
		Target:    target,
		ARecords:  []string{},
		OpenPorts: []int{},
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		anyOK    bool
		firstErr error
	)

	note := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			anyOK = true
		} else if firstErr == nil {
			firstErr = err
		}
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		stats, err := a.pinger.Ping(ctx, target)
		if err == nil {
			data.Ping = stats
		}
		note(err)
	}()
	go func() {
		defer wg.Done()
		records, err := a.resolver.Lookup(ctx, target)
		if err == nil {
			data.ARecords = records.A
		}
		note(err)
	}()
	go func() {
		defer wg.Done()
		scan, err := a.scanner.Scan(ctx, target, analyzerPorts)
		if err == nil {
			data.OpenPorts = scan.OpenPorts
		}
		note(err)
	}()
	wg.Wait()

	if !anyOK {
		return nil, firstErr
	}
	return data, nil
}
