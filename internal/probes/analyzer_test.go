package probes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/miekg/dns"
)

func testAnalyzer(t *testing.T, runner Runner, fail map[uint16]bool, dialErr error) *Analyzer {
	t.Helper()

	resolver := NewDNSResolver("", 2*time.Second)
	resolver.exchange = fakeExchange(t, fail)

	scanner := NewPortScanner(100 * time.Millisecond)
	scanner.dial = func(ctx context.Context, addr string, timeout time.Duration) error {
		return dialErr
	}

	return NewAnalyzer(NewPinger(runner, 4, 2*time.Second), resolver, scanner)
}

func TestAnalyze(t *testing.T) {
	a := testAnalyzer(t, &fakeRunner{pingOut: pingOutput}, nil, nil)

	data, err := a.Analyze(context.Background(), "example.com")
	if err != nil {
		t.Fatal(err)
	}

	if data.Ping == nil || !data.Ping.Alive {
		t.Errorf("ping branch: %+v", data.Ping)
	}
	if len(data.ARecords) != 1 {
		t.Errorf("dns branch: %v", data.ARecords)
	}
	if len(data.OpenPorts) != len(analyzerPorts) {
		t.Errorf("port branch: %v", data.OpenPorts)
	}
}

func TestAnalyzeBranchFailureIsolation(t *testing.T) {
	// Ping fails; DNS and ports still report.
	a := testAnalyzer(t, &fakeRunner{pingErr: errors.New("no ping binary")}, nil, nil)

	data, err := a.Analyze(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("one failed branch must not fail the analysis: %v", err)
	}
	if data.Ping != nil {
		t.Errorf("failed ping branch should be empty: %+v", data.Ping)
	}
	if len(data.ARecords) == 0 {
		t.Error("dns branch should survive")
	}
}

func TestAnalyzeRefusedPortsAreClosed(t *testing.T) {
	a := testAnalyzer(t, &fakeRunner{pingErr: errors.New("down")}, map[uint16]bool{
		dns.TypeA: true, dns.TypeAAAA: true, dns.TypeMX: true, dns.TypeTXT: true, dns.TypeNS: true,
	}, errors.New("refused"))

	data, err := a.Analyze(context.Background(), "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(data.OpenPorts) != 0 {
		t.Errorf("all dials refused, open ports = %v", data.OpenPorts)
	}
	if len(data.ARecords) != 0 {
		t.Errorf("failed dns should be empty: %v", data.ARecords)
	}
}
