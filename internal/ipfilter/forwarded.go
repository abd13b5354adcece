package ipfilter

import (
	"net/http"
	"strings"
)

// ForwardedEntry is one hop's worth of proxy-reported metadata, taken from an
// RFC 7239 Forwarded element or the legacy X-Forwarded-* headers.
type ForwardedEntry struct {
	For  string
	Host string
}

// ParseForwarded extracts every forwarded-for entry present in the request.
// Chained proxies may contribute several entries; all of them are returned in
// order. Values are unauthenticated client input and must only feed policy
// checks that fail closed.
func ParseForwarded(r *http.Request) []ForwardedEntry {
	var entries []ForwardedEntry

	for _, header := range r.Header.Values("Forwarded") {
		for _, element := range strings.Split(header, ",") {
			entry := ForwardedEntry{}
			for _, pair := range strings.Split(element, ";") {
				key, value, found := strings.Cut(strings.TrimSpace(pair), "=")
				if !found {
					continue
				}
				value = unquoteForwarded(value)
				switch strings.ToLower(strings.TrimSpace(key)) {
				case "for":
					entry.For = stripPort(value)
				case "host":
					entry.Host = value
				}
			}
			if entry.For != "" || entry.Host != "" {
				entries = append(entries, entry)
			}
		}
	}

	for _, header := range r.Header.Values("X-Forwarded-For") {
		for _, value := range strings.Split(header, ",") {
			value = strings.TrimSpace(value)
			if value != "" {
				entries = append(entries, ForwardedEntry{For: stripPort(value)})
			}
		}
	}

	if host := strings.TrimSpace(r.Header.Get("X-Forwarded-Host")); host != "" {
		entries = append(entries, ForwardedEntry{Host: host})
	}

	return entries
}

// unquoteForwarded strips the optional double quotes around a Forwarded
// parameter value.
func unquoteForwarded(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}

// stripPort removes a trailing :port from an address, leaving bracketed IPv6
// literals and plain IPv4 addresses intact for CIDR evaluation.
func stripPort(addr string) string {
	if strings.HasPrefix(addr, "[") {
		if end := strings.IndexByte(addr, ']'); end >= 0 {
			return addr[1:end]
		}
		return addr
	}
	if i := strings.LastIndexByte(addr, ':'); i >= 0 && strings.Count(addr, ":") == 1 {
		return addr[:i]
	}
	return addr
}
