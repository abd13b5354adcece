package ipfilter

import (
	"net"
	"net/http"
)

// AuditFunc receives the outcome of every gate decision. Implementations are
// optional and must not block; the gate itself never logs.
type AuditFunc func(admitted bool, source, detail string)

// Gate admits or rejects a request by its reported source address.
//
// Evaluation order: the transport-reported peer address first (when
// UseRemoteAddr is set), then every forwarded-for entry in the request (when
// UseForwarded is set). The gate is fail-closed: an address that cannot be
// determined or parsed never admits.
type Gate struct {
	UseRemoteAddr bool
	UseForwarded  bool
	Ranges        []CIDR
	Audit         AuditFunc
}

// Admit evaluates the request against the configured ranges.
func (g *Gate) Admit(r *http.Request) bool {
	if g.UseRemoteAddr {
		if ip := remoteIP(r); ip != "" && g.matchAny(ip) {
			g.audit(true, "remote_addr", ip)
			return true
		}
	}

	if g.UseForwarded {
		for _, entry := range ParseForwarded(r) {
			if entry.For != "" && g.matchAny(entry.For) {
				g.audit(true, "forwarded_for", entry.For)
				return true
			}
		}
	}

	g.audit(false, "remote_addr", remoteIP(r))
	return false
}

// matchAny reports whether ip is a member of any configured range.
// Indeterminate comparisons (unparsable ip) count as no-match and evaluation
// moves on to the next range.
func (g *Gate) matchAny(ip string) bool {
	for _, c := range g.Ranges {
		matched, ok := c.Contains(ip)
		if !ok {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

func (g *Gate) audit(admitted bool, source, detail string) {
	if g.Audit != nil {
		g.Audit(admitted, source, detail)
	}
}

// remoteIP returns the transport-reported peer address without its port.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// VhostGate rejects requests whose forwarding metadata does not name the
// expected virtual host. It exists to keep the admin surface unreachable on
// unintended hostnames behind a shared reverse proxy, and rejects outright
// when no forwarding metadata is present.
type VhostGate struct {
	Host  string
	Audit AuditFunc
}

// Admit checks the first forwarded host against the expected one.
func (g *VhostGate) Admit(r *http.Request) bool {
	for _, entry := range ParseForwarded(r) {
		if entry.Host == "" {
			continue
		}
		admitted := entry.Host == g.Host
		if g.Audit != nil {
			g.Audit(admitted, "forwarded_host", entry.Host)
		}
		return admitted
	}

	if g.Audit != nil {
		g.Audit(false, "forwarded_host", "")
	}
	return false
}
