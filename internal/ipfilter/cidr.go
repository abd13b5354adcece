// Package ipfilter provides request-origin filtering for the admin surface.
package ipfilter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidCIDR indicates the CIDR string could not be parsed.
	ErrInvalidCIDR = errors.New("invalid CIDR")
)

// CIDR is an IPv4 network/prefix-length pair used for membership testing.
// It is immutable once parsed and never persisted.
type CIDR struct {
	network uint32
	prefix  int
}

// ParseCIDR parses a string of the form "a.b.c.d/n".
//
// The string must contain exactly one "/", the prefix must be an integer in
// [0,32], and every octet a decimal integer in [0,255]. A network address that
// converts to the integer 0 is rejected, so "0.0.0.0/n" ranges cannot be
// expressed. Known restriction, kept deliberately.
func ParseCIDR(s string) (CIDR, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return CIDR{}, fmt.Errorf("%w: %q must contain exactly one '/'", ErrInvalidCIDR, s)
	}

	prefix, err := strconv.Atoi(parts[1])
	if err != nil || prefix < 0 || prefix > 32 {
		return CIDR{}, fmt.Errorf("%w: prefix %q must be an integer in [0,32]", ErrInvalidCIDR, parts[1])
	}

	network, ok := ipToUint32(parts[0])
	if !ok {
		return CIDR{}, fmt.Errorf("%w: invalid network address %q", ErrInvalidCIDR, parts[0])
	}

	return CIDR{network: network, prefix: prefix}, nil
}

// MustParseCIDR is ParseCIDR for static configuration; panics on error.
func MustParseCIDR(s string) CIDR {
	c, err := ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCIDRList parses a comma-separated list of CIDR strings.
func ParseCIDRList(s string) ([]CIDR, error) {
	var ranges []CIDR
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := ParseCIDR(part)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, c)
	}
	return ranges, nil
}

// Contains reports whether ip falls inside the range.
//
// The result is tri-state: ok is false when ip does not parse as a dotted
// quad, which callers must treat as "does not match" and continue with any
// remaining ranges rather than aborting the whole check.
func (c CIDR) Contains(ip string) (matched, ok bool) {
	candidate, ok := ipToUint32(ip)
	if !ok {
		return false, false
	}
	return candidate >= c.network && uint64(candidate) <= c.broadcast(), true
}

// broadcast is network + 2^(32-prefix) - 1. Computed in 64 bits: a /0 range
// overflows uint32.
func (c CIDR) broadcast() uint64 {
	return uint64(c.network) + (uint64(1) << (32 - uint(c.prefix))) - 1
}

// String renders the range back in "a.b.c.d/n" form.
func (c CIDR) String() string {
	n := c.network
	return fmt.Sprintf("%d.%d.%d.%d/%d", n>>24, (n>>16)&0xff, (n>>8)&0xff, n&0xff, c.prefix)
}

// ipToUint32 converts a dotted-quad IPv4 string to a big-endian uint32.
// The zero address is rejected alongside malformed input.
func ipToUint32(ip string) (uint32, bool) {
	octets := strings.Split(ip, ".")
	if len(octets) != 4 {
		return 0, false
	}

	var result uint32
	for _, octet := range octets {
		n, err := strconv.Atoi(octet)
		if err != nil || n < 0 || n > 255 {
			return 0, false
		}
		result = result<<8 | uint32(n)
	}

	if result == 0 {
		return 0, false
	}
	return result, true
}
