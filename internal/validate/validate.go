// Package validate performs syntactic target validation before any probe runs.
package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/user/netscan/internal/model"
)

// Reason classifies why validation rejected an input.
type Reason int

const (
	ReasonMissing Reason = iota
	ReasonMalformed
)

// Error is a validation failure. It is always a caller error, never
// an operational incident.
type Error struct {
	Reason Reason
	Param  string
	Msg    string
}

func (e *Error) Error() string {
	return e.Msg
}

// Missing builds the error for an absent target parameter.
func Missing(param string) *Error {
	return &Error{
		Reason: ReasonMissing,
		Param:  param,
		Msg:    fmt.Sprintf("missing required parameter %q", param),
	}
}

// Malformed builds the error for a syntactically invalid target.
func Malformed(param, raw string) *Error {
	return &Error{
		Reason: ReasonMalformed,
		Param:  param,
		Msg:    fmt.Sprintf("invalid %s %q", param, raw),
	}
}

// Target checks raw against the rule for kind and returns the cleaned
// target. Pure function, no network access.
func Target(raw string, kind model.TargetKind, param string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", Missing(param)
	}

	switch kind {
	case model.KindIPv4:
		if !IsIPv4(raw) {
			return "", Malformed(param, raw)
		}
	case model.KindHostname:
		if !IsHostname(raw) {
			return "", Malformed(param, raw)
		}
	case model.KindHostOrIP:
		if !IsIPv4(raw) && !IsHostname(raw) {
			return "", Malformed(param, raw)
		}
	}

	return raw, nil
}

// IsIPv4 reports whether s is a dot-decimal IPv4 literal with each
// octet in 0-255. Octets with leading zeros beyond a lone "0" are
// rejected.
func IsIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if p == "" || len(p) > 3 {
			return false
		}
		if len(p) > 1 && p[0] == '0' {
			return false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

// IsHostname reports whether s looks like a resolvable domain name:
// alphanumeric/hyphen labels of at most 63 characters, at least one
// dot, and an alphabetic TLD of two or more characters.
func IsHostname(s string) bool {
	if len(s) > 253 || !strings.Contains(s, ".") {
		return false
	}

	labels := strings.Split(s, ".")
	for _, label := range labels {
		if label == "" || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			if !isAlnum(c) && c != '-' {
				return false
			}
		}
	}

	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return false
	}
	for i := 0; i < len(tld); i++ {
		if !isAlpha(tld[i]) {
			return false
		}
	}

	return true
}

// MaxPorts caps how many ports one scan request may name. The cap
// keeps a single request from fanning out across the whole port
// space.
const MaxPorts = 100

// Ports parses a comma-separated port list, deduplicating and keeping
// order of first appearance. Values outside 1-65535 are rejected, as
// are lists longer than MaxPorts.
func Ports(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) > MaxPorts {
		return nil, &Error{
			Reason: ReasonMalformed,
			Param:  "ports",
			Msg:    fmt.Sprintf("too many ports: %d (max %d)", len(parts), MaxPorts),
		}
	}

	seen := make(map[int]bool)
	var ports []int
	for _, part := range parts {
		part = strings.TrimSpace(part)
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > 65535 {
			return nil, Malformed("ports", part)
		}
		if !seen[n] {
			seen[n] = true
			ports = append(ports, n)
		}
	}
	return ports, nil
}

func isAlnum(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9')
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
