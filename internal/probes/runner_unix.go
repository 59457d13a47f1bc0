//go:build !windows

package probes

import (
	"os/exec"
	"strconv"
	"time"
)

// pingCommand builds the Unix ping invocation: -c probe count, -w
// overall deadline in seconds.
func pingCommand(target string, count int, deadline time.Duration) (string, []string) {
	secs := int(deadline.Seconds())
	if secs < 1 {
		secs = 1
	}
	return "ping", []string{"-c", strconv.Itoa(count), "-w", strconv.Itoa(secs), target}
}

// traceCommand builds the traceroute invocation: numeric output, one
// probe per hop, two-second per-hop wait.
func traceCommand(target string, maxHops int) (string, []string) {
	return "traceroute", []string{"-n", "-q", "1", "-w", "2", "-m", strconv.Itoa(maxHops), target}
}

// traceFallbackCommand switches to ICMP probes for networks that
// filter the default UDP probes.
func traceFallbackCommand(target string, maxHops int) (string, []string, bool) {
	return "traceroute", []string{"-n", "-I", "-q", "1", "-w", "2", "-m", strconv.Itoa(maxHops), target}, true
}

// hideWindow is a no-op on Unix systems.
func hideWindow(cmd *exec.Cmd) {}
