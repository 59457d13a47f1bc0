// Package probes implements the diagnostic executors. Every executor
// captures network and parse failures as a structured *Error; nothing
// here panics or leaks raw errors past the gateway boundary.
package probes

import "fmt"

// ErrorKind classifies an executor failure.
type ErrorKind int

const (
	ErrTimeout ErrorKind = iota
	ErrUpstream
	ErrParse
	ErrProcess
)

var kindNames = map[ErrorKind]string{
	ErrTimeout:  "timeout",
	ErrUpstream: "upstream unavailable",
	ErrParse:    "parse failure",
	ErrProcess:  "process failure",
}

// Error is a structured executor failure. The message is a best-effort
// diagnostic string safe to pass through to the caller.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", kindNames[e.Kind], e.Msg)
	}
	return kindNames[e.Kind]
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout builds an ErrTimeout error.
func Timeout(msg string, err error) *Error {
	return &Error{Kind: ErrTimeout, Msg: msg, Err: err}
}

// Upstream builds an ErrUpstream error.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: ErrUpstream, Msg: msg, Err: err}
}

// Parse builds an ErrParse error.
func Parse(msg string, err error) *Error {
	return &Error{Kind: ErrParse, Msg: msg, Err: err}
}

// Process builds an ErrProcess error.
func Process(msg string, err error) *Error {
	return &Error{Kind: ErrProcess, Msg: msg, Err: err}
}
