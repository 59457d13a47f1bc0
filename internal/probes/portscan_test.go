package probes

import (
	"context"
	"net"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

// listen opens a real TCP listener on a loopback port.
func listen(t *testing.T) (string, int) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	host, portStr, _ := net.SplitHostPort(l.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return host, port
}

func TestScanPartition(t *testing.T) {
	host, openPort := listen(t)

	// A port that is almost certainly closed on loopback.
	closedPort := openPort + 1
	if closedPort > 65535 {
		closedPort = openPort - 1
	}

	s := NewPortScanner(500 * time.Millisecond)
	ports := []int{openPort, closedPort}

	data, err := s.Scan(context.Background(), host, ports)
	if err != nil {
		t.Fatal(err)
	}

	if got := len(data.OpenPorts) + len(data.ClosedPorts); got != len(ports) {
		t.Fatalf("partition size = %d, want %d", got, len(ports))
	}
	for _, o := range data.OpenPorts {
		for _, c := range data.ClosedPorts {
			if o == c {
				t.Fatalf("port %d in both partitions", o)
			}
		}
	}

	found := false
	for _, p := range data.OpenPorts {
		if p == openPort {
			found = true
		}
	}
	if !found {
		t.Errorf("listening port %d not reported open (open=%v)", openPort, data.OpenPorts)
	}
}

func TestScanDefaultPorts(t *testing.T) {
	s := NewPortScanner(100 * time.Millisecond)
	s.dial = func(ctx context.Context, addr string, timeout time.Duration) error {
		return context.DeadlineExceeded
	}

	data, err := s.Scan(context.Background(), "192.0.2.1", nil)
	if err != nil {
		t.Fatal(err)
	}

	want := len(DefaultPorts())
	if len(data.ClosedPorts) != want || len(data.OpenPorts) != 0 {
		t.Fatalf("default scan: open=%v closed=%v, want %d closed", data.OpenPorts, data.ClosedPorts, want)
	}
}

func TestScanRunsConcurrently(t *testing.T) {
	s := NewPortScanner(200 * time.Millisecond)
	s.dial = func(ctx context.Context, addr string, timeout time.Duration) error {
		time.Sleep(timeout)
		return context.DeadlineExceeded
	}

	start := time.Now()
	if _, err := s.Scan(context.Background(), "192.0.2.1", []int{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatal(err)
	}

	// Eight sequential timeouts would take 1.6s; the fan-out should
	// finish in roughly one timeout.
	if elapsed := time.Since(start); elapsed > 800*time.Millisecond {
		t.Errorf("scan took %v, expected about one per-port timeout", elapsed)
	}
}

func TestScanBoundsInFlightDials(t *testing.T) {
	var inFlight, peak atomic.Int64

	s := NewPortScanner(100 * time.Millisecond)
	s.dial = func(ctx context.Context, addr string, timeout time.Duration) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return context.DeadlineExceeded
	}

	ports := make([]int, 100)
	for i := range ports {
		ports[i] = i + 1
	}

	data, err := s.Scan(context.Background(), "192.0.2.1", ports)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(data.OpenPorts) + len(data.ClosedPorts); got != len(ports) {
		t.Fatalf("partition size = %d, want %d", got, len(ports))
	}
	if p := peak.Load(); p > scanConcurrency {
		t.Errorf("peak in-flight dials = %d, want at most %d", p, scanConcurrency)
	}
}
