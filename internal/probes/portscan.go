package probes

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/user/netscan/internal/model"
)

// PortScanner checks TCP ports on a target host.
type PortScanner struct {
	timeout time.Duration
	dial    func(ctx context.Context, addr string, timeout time.Duration) error
}

// NewPortScanner creates a port scanner with the given per-port timeout.
func NewPortScanner(timeout time.Duration) *PortScanner {
	if timeout <= 0 {
		timeout = 1200 * time.Millisecond
	}
	return &PortScanner{
		timeout: timeout,
		dial:    dialTCP,
	}
}

// DefaultPorts returns the well-known ports scanned when the caller
// does not supply a list.
func DefaultPorts() []int {
	return []int{21, 22, 23, 25, 53, 80, 110, 143, 443, 3389}
}

// scanConcurrency bounds simultaneous dials per scan.
const scanConcurrency = 20

// Scan checks the ports through a fixed pool of dial workers and
// partitions the list into open and closed. A timed-out or refused
// connection both count as closed.
func (s *PortScanner) Scan(ctx context.Context, host string, ports []int) (*model.PortScanData, error) {
	if len(ports) == 0 {
		ports = DefaultPorts()
	}

	var (
		mu     sync.Mutex
		open   []int
		closed []int
		wg     sync.WaitGroup
	)

	jobs := make(chan int, len(ports))
	for _, port := range ports {
		jobs <- port
	}
	close(jobs)

	workers := scanConcurrency
	if len(ports) < workers {
		workers = len(ports)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				addr := fmt.Sprintf("%s:%d", host, p)
				err := s.dial(ctx, addr, s.timeout)

				mu.Lock()
				if err == nil {
					open = append(open, p)
				} else {
					closed = append(closed, p)
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, Timeout("scan cancelled", err)
	}

	sort.Ints(open)
	sort.Ints(closed)

	return &model.PortScanData{
		Target:      host,
		OpenPorts:   open,
		ClosedPorts: closed,
	}, nil
}

func dialTCP(ctx context.Context, addr string, timeout time.Duration) error {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	conn.Close()
	return nil
}
