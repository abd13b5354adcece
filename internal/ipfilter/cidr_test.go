package ipfilter

import (
	"testing"
)

func TestParseCIDR_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"10.0.0.0/24", "10.0.0.0/24"},
		{"192.168.1.0/28", "192.168.1.0/28"},
		{"172.16.0.0/12", "172.16.0.0/12"},
		{"203.0.113.7/32", "203.0.113.7/32"},
		{"128.0.0.0/0", "128.0.0.0/0"},
	}

	for _, tt := range tests {
		c, err := ParseCIDR(tt.input)
		if err != nil {
			t.Errorf("ParseCIDR(%q) returned error: %v", tt.input, err)
			continue
		}
		if c.String() != tt.want {
			t.Errorf("ParseCIDR(%q).String() = %q, want %q", tt.input, c.String(), tt.want)
		}
	}
}

func TestParseCIDR_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"no slash", "10.0.0.0"},
		{"two slashes", "10.0.0.0/24/8"},
		{"prefix not integer", "10.0.0.0/abc"},
		{"prefix negative", "10.0.0.0/-1"},
		{"prefix too large", "10.0.0.0/33"},
		{"octet too large", "10.0.0.256/24"},
		{"octet not decimal", "10.0.0.x/24"},
		{"three octets", "10.0.0/24"},
		{"five octets", "10.0.0.0.1/24"},
		{"zero network", "0.0.0.0/8"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCIDR(tt.input); err == nil {
				t.Errorf("ParseCIDR(%q) should fail", tt.input)
			}
		})
	}
}

func TestCIDR_Contains_Boundaries(t *testing.T) {
	t.Parallel()

	// Network and broadcast addresses are members; one address outside
	// either boundary is not.
	c := MustParseCIDR("10.0.1.0/24")

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.0.1.0", true},    // network
		{"10.0.1.255", true},  // broadcast
		{"10.0.1.128", true},  // inside
		{"10.0.0.255", false}, // network - 1
		{"10.0.2.0", false},   // broadcast + 1
	}

	for _, tt := range tests {
		matched, ok := c.Contains(tt.ip)
		if !ok {
			t.Errorf("Contains(%q) indeterminate, want determinate", tt.ip)
			continue
		}
		if matched != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.ip, matched, tt.want)
		}
	}
}

func TestCIDR_Contains_SingleHost(t *testing.T) {
	t.Parallel()

	c := MustParseCIDR("203.0.113.7/32")

	if matched, ok := c.Contains("203.0.113.7"); !ok || !matched {
		t.Errorf("Contains(203.0.113.7) = (%v, %v), want (true, true)", matched, ok)
	}
	if matched, ok := c.Contains("203.0.113.8"); !ok || matched {
		t.Errorf("Contains(203.0.113.8) = (%v, %v), want (false, true)", matched, ok)
	}
}

func TestCIDR_Contains_Indeterminate(t *testing.T) {
	t.Parallel()

	c := MustParseCIDR("10.0.0.0/8")

	// Malformed candidates yield indeterminate, never an error or a match.
	malformed := []string{
		"",
		"not-an-ip",
		"10.0.0",
		"10.0.0.0.0",
		"10.0.0.999",
		"::1",
		"fe80::1",
		"0.0.0.0",
	}

	for _, ip := range malformed {
		if _, ok := c.Contains(ip); ok {
			t.Errorf("Contains(%q) should be indeterminate", ip)
		}
	}
}

func TestParseCIDRList(t *testing.T) {
	t.Parallel()

	ranges, err := ParseCIDRList("10.0.0.0/8, 192.168.0.0/16,172.16.0.0/12")
	if err != nil {
		t.Fatalf("ParseCIDRList failed: %v", err)
	}
	if len(ranges) != 3 {
		t.Fatalf("expected 3 ranges, got %d", len(ranges))
	}

	if _, err := ParseCIDRList("10.0.0.0/8,bogus"); err == nil {
		t.Error("expected error for malformed list entry")
	}

	ranges, err = ParseCIDRList("")
	if err != nil {
		t.Fatalf("empty list should parse: %v", err)
	}
	if len(ranges) != 0 {
		t.Errorf("empty list should yield no ranges, got %d", len(ranges))
	}
}
