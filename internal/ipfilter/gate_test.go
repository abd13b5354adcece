package ipfilter

import (
	"net/http/httptest"
	"testing"
)

func TestGate_RemoteAddr(t *testing.T) {
	t.Parallel()

	gate := &Gate{
		UseRemoteAddr: true,
		Ranges:        []CIDR{MustParseCIDR("10.0.0.0/24")},
	}

	tests := []struct {
		remoteAddr string
		want       bool
	}{
		{"10.0.0.5:41234", true},
		{"10.0.1.5:41234", false},
		{"10.0.0.5", true}, // no port reported
		{"", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := gate.Admit(req); got != tt.want {
			t.Errorf("Admit(remote=%q) = %v, want %v", tt.remoteAddr, got, tt.want)
		}
	}
}

func TestGate_Forwarded(t *testing.T) {
	t.Parallel()

	gate := &Gate{
		UseForwarded: true,
		Ranges:       []CIDR{MustParseCIDR("192.168.1.0/24")},
	}

	tests := []struct {
		name   string
		header map[string]string
		want   bool
	}{
		{
			name:   "forwarded header match",
			header: map[string]string{"Forwarded": "for=192.168.1.10"},
			want:   true,
		},
		{
			name:   "forwarded header quoted",
			header: map[string]string{"Forwarded": `for="192.168.1.10:9999";proto=https`},
			want:   true,
		},
		{
			name:   "chained proxies, later entry matches",
			header: map[string]string{"Forwarded": "for=203.0.113.5, for=192.168.1.20"},
			want:   true,
		},
		{
			name:   "x-forwarded-for match",
			header: map[string]string{"X-Forwarded-For": "203.0.113.5, 192.168.1.30"},
			want:   true,
		},
		{
			name:   "no match",
			header: map[string]string{"Forwarded": "for=203.0.113.5"},
			want:   false,
		},
		{
			name:   "unparsable entry skipped, not fatal",
			header: map[string]string{"X-Forwarded-For": "garbage, 192.168.1.40"},
			want:   true,
		},
		{
			name:   "no forwarding metadata",
			header: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			req.RemoteAddr = "172.17.0.2:5000"
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := gate.Admit(req); got != tt.want {
				t.Errorf("Admit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGate_RemoteAddrTakesPrecedence(t *testing.T) {
	t.Parallel()

	gate := &Gate{
		UseRemoteAddr: true,
		UseForwarded:  true,
		Ranges:        []CIDR{MustParseCIDR("10.0.0.0/8")},
	}

	req := httptest.NewRequest("GET", "/admin", nil)
	req.RemoteAddr = "10.1.2.3:9000"
	req.Header.Set("X-Forwarded-For", "203.0.113.5")

	if !gate.Admit(req) {
		t.Error("matching remote address should admit regardless of forwarded entries")
	}
}

func TestGate_Audit(t *testing.T) {
	t.Parallel()

	var admitted []bool
	gate := &Gate{
		UseRemoteAddr: true,
		Ranges:        []CIDR{MustParseCIDR("10.0.0.0/8")},
		Audit: func(ok bool, source, detail string) {
			admitted = append(admitted, ok)
		},
	}

	allow := httptest.NewRequest("GET", "/admin", nil)
	allow.RemoteAddr = "10.0.0.1:1"
	deny := httptest.NewRequest("GET", "/admin", nil)
	deny.RemoteAddr = "203.0.113.1:1"

	gate.Admit(allow)
	gate.Admit(deny)

	if len(admitted) != 2 || !admitted[0] || admitted[1] {
		t.Errorf("audit hook saw %v, want [true false]", admitted)
	}
}

func TestVhostGate(t *testing.T) {
	t.Parallel()

	gate := &VhostGate{Host: "files.example.com"}

	tests := []struct {
		name   string
		header map[string]string
		want   bool
	}{
		{
			name:   "matching forwarded host",
			header: map[string]string{"Forwarded": "for=10.0.0.1;host=files.example.com"},
			want:   true,
		},
		{
			name:   "matching x-forwarded-host",
			header: map[string]string{"X-Forwarded-Host": "files.example.com"},
			want:   true,
		},
		{
			name:   "wrong host",
			header: map[string]string{"Forwarded": "host=other.example.com"},
			want:   false,
		},
		{
			name:   "no forwarding metadata",
			header: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := gate.Admit(req); got != tt.want {
				t.Errorf("Admit() = %v, want %v", got, tt.want)
			}
		})
	}
}
