package probes

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/user/netscan/internal/model"
)

// Pinger runs echo probes against a target and parses the aggregate
// round-trip statistics.
type Pinger struct {
	runner   Runner
	count    int
	deadline time.Duration
}

// NewPinger creates a pinger issuing count probes under an overall
// deadline.
func NewPinger(runner Runner, count int, deadline time.Duration) *Pinger {
	if count <= 0 {
		count = 4
	}
	if deadline <= 0 {
		deadline = 5 * time.Second
	}
	return &Pinger{runner: runner, count: count, deadline: deadline}
}

var (
	// "4 packets transmitted, 4 received, 0% packet loss, time 3004ms"
	pingSummaryRe = regexp.MustCompile(`(\d+) packets transmitted, (\d+)(?: packets)? received.*?([\d.]+)% packet loss`)
	// "rtt min/avg/max/mdev = 11.2/12.5/14.1/0.9 ms"
	pingRTTRe = regexp.MustCompile(`min/avg/max/(?:mdev|stddev) = ([\d.]+)/([\d.]+)/([\d.]+)/([\d.]+) ms`)

	// Windows ping prints "Packets: Sent = 4, Received = 3, Lost = 1 (25% loss)"
	pingSummaryWinRe = regexp.MustCompile(`Sent = (\d+), Received = (\d+), Lost = \d+ \((\d+)% loss\)`)
	// and "Minimum = 20ms, Maximum = 23ms, Average = 21ms"
	pingRTTWinRe = regexp.MustCompile(`Minimum = (\d+)ms, Maximum = (\d+)ms, Average = (\d+)ms`)
)

// Ping probes the target. The target is alive iff packet loss is
// strictly below 100%. An unreachable host or a failed ping binary is
// a structured failure, not a crash.
func (p *Pinger) Ping(ctx context.Context, target string) (*model.PingStats, error) {
	ctx, cancel := context.WithTimeout(ctx, p.deadline+time.Second)
	defer cancel()

	out, err := p.runner.RunPing(ctx, target, p.count, p.deadline)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Timeout("ping deadline exceeded", err)
		}
		return nil, Process("ping failed: "+err.Error(), err)
	}

	stats, err := parsePingOutput(target, out)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func parsePingOutput(target, out string) (*model.PingStats, error) {
	m := pingSummaryRe.FindStringSubmatch(out)
	if m == nil {
		m = pingSummaryWinRe.FindStringSubmatch(out)
	}
	if m == nil {
		return nil, Parse("unrecognized ping output", nil)
	}

	sent, _ := strconv.Atoi(m[1])
	received, _ := strconv.Atoi(m[2])
	loss, _ := strconv.ParseFloat(m[3], 64)

	stats := &model.PingStats{
		Target:   target,
		Sent:     sent,
		Received: received,
		LossPct:  loss,
		Alive:    loss < 100,
	}

	if rtt := pingRTTRe.FindStringSubmatch(out); rtt != nil {
		stats.MinMs, _ = strconv.ParseFloat(rtt[1], 64)
		stats.AvgMs, _ = strconv.ParseFloat(rtt[2], 64)
		stats.MaxMs, _ = strconv.ParseFloat(rtt[3], 64)
		stats.JitterMs, _ = strconv.ParseFloat(rtt[4], 64)
	} else if rtt := pingRTTWinRe.FindStringSubmatch(out); rtt != nil {
		// Windows reports min/max/avg and no deviation.
		stats.MinMs, _ = strconv.ParseFloat(rtt[1], 64)
		stats.MaxMs, _ = strconv.ParseFloat(rtt[2], 64)
		stats.AvgMs, _ = strconv.ParseFloat(rtt[3], 64)
	}

	return stats, nil
}
