package probes

import (
	"context"
	"os/exec"
	"time"
)

// Runner invokes the OS probe binaries. Ping and traceroute logic is
// written against this interface so it can be tested with canned
// output, without network access or raw-socket privileges.
type Runner interface {
	RunPing(ctx context.Context, target string, count int, deadline time.Duration) (string, error)
	RunTraceroute(ctx context.Context, target string, maxHops int) (string, error)
}

// ExecRunner runs the real ping and traceroute binaries. Command
// names and flags come from the per-OS builders, since Windows ships
// different tools (ping -n, tracert) than Unix.
type ExecRunner struct{}

// RunPing invokes the system ping with a fixed probe count and an
// overall deadline.
func (ExecRunner) RunPing(ctx context.Context, target string, count int, deadline time.Duration) (string, error) {
	name, args := pingCommand(target, count, deadline)
	cmd := exec.CommandContext(ctx, name, args...)
	hideWindow(cmd)

	out, err := cmd.Output()
	// ping exits non-zero on 100% loss but still prints statistics;
	// hand the output to the parser when there is any.
	if err != nil && len(out) == 0 {
		return "", err
	}
	return string(out), nil
}

// RunTraceroute invokes the system path tracer.
func (ExecRunner) RunTraceroute(ctx context.Context, target string, maxHops int) (string, error) {
	name, args := traceCommand(target, maxHops)
	cmd := exec.CommandContext(ctx, name, args...)
	hideWindow(cmd)

	out, err := cmd.Output()
	if err != nil {
		name, args, ok := traceFallbackCommand(target, maxHops)
		if !ok {
			return "", err
		}
		cmd = exec.CommandContext(ctx, name, args...)
		hideWindow(cmd)
		out, err = cmd.Output()
		if err != nil {
			return "", err
		}
	}
	return string(out), nil
}
