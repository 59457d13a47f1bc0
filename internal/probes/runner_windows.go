//go:build windows

package probes

import (
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
)

// pingCommand builds the Windows ping invocation: -n probe count, -w
// per-reply timeout in milliseconds.
func pingCommand(target string, count int, deadline time.Duration) (string, []string) {
	ms := int(deadline.Milliseconds())
	if count > 0 {
		ms /= count
	}
	if ms < 500 {
		ms = 500
	}
	return "ping", []string{"-n", strconv.Itoa(count), "-w", strconv.Itoa(ms), target}
}

// traceCommand builds the tracert invocation: -d numeric output, -h
// hop cap, -w per-reply timeout in milliseconds.
func traceCommand(target string, maxHops int) (string, []string) {
	return "tracert", []string{"-d", "-h", strconv.Itoa(maxHops), "-w", "2000", target}
}

// traceFallbackCommand reports no fallback: tracert is already
// ICMP-based.
func traceFallbackCommand(target string, maxHops int) (string, []string, bool) {
	return "", nil, false
}

// hideWindow keeps the probe binary from flashing a console window.
func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
