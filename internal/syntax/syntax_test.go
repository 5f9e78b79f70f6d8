package syntax

import (
	"strings"
	"testing"

	"github.com/mailprobe/mailprobe/internal/core"
)

func TestParseValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		raw        string
		wantLocal  string
		wantDomain string
	}{
		{"plain address", "user@example.com", "user", "example.com"},
		{"dotted local part", "first.last@example.com", "first.last", "example.com"},
		{"plus tag", "user+tag@example.com", "user+tag", "example.com"},
		{"special characters", "o'brien_1%x@example.com", "o'brien_1%x", "example.com"},
		{"subdomain", "user@mail.sub.example.co.uk", "user", "mail.sub.example.co.uk"},
		{"upper-case domain lowered", "user@EXAMPLE.COM", "user", "example.com"},
		{"surrounding whitespace trimmed", "  user@example.com  ", "user", "example.com"},
		{"trailing dot stripped", "user@example.com.", "user", "example.com"},
		{"internationalized domain punycoded", "user@bücher.example", "user", "xn--bcher-kva.example"},
	}

	v := NewValidator()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			addr, res := v.Parse(tt.raw)
			if res.Outcome != core.OutcomePassed {
				t.Fatalf("Parse(%q) failed: %s", tt.raw, res.Reason)
			}
			if addr.LocalPart != tt.wantLocal {
				t.Errorf("local = %q, want %q", addr.LocalPart, tt.wantLocal)
			}
			if addr.Domain != tt.wantDomain {
				t.Errorf("domain = %q, want %q", addr.Domain, tt.wantDomain)
			}
			if res.Normalized != tt.wantLocal+"@"+tt.wantDomain {
				t.Errorf("normalized = %q, want %q", res.Normalized, tt.wantLocal+"@"+tt.wantDomain)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty string", ""},
		{"whitespace only", "   "},
		{"missing @", "userexample.com"},
		{"two @", "user@@example.com"},
		{"two @ separated", "us@er@example.com"},
		{"empty local part", "@example.com"},
		{"empty domain", "user@"},
		{"leading dot in local", ".user@example.com"},
		{"trailing dot in local", "user.@example.com"},
		{"consecutive dots in local", "us..er@example.com"},
		{"space in local", "us er@example.com"},
		{"domain without tld", "user@localhost"},
		{"domain label starts with hyphen", "user@-example.com"},
		{"domain with underscore", "user@exa_mple.com"},
		{"address too long", strings.Repeat("a", 250) + "@example.com"},
		{"local part too long", strings.Repeat("a", 65) + "@example.com"},
		{"domain too long", "user@" + strings.Repeat("a", 63) + "." + strings.Repeat("b", 63) + "." + strings.Repeat("c", 63) + "." + strings.Repeat("d", 63) + ".com"},
	}

	v := NewValidator()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, res := v.Parse(tt.raw)
			if res.Outcome != core.OutcomeFailed {
				t.Errorf("Parse(%q) outcome = %q, want failed", tt.raw, res.Outcome)
			}
			if res.Reason == "" {
				t.Errorf("Parse(%q) has no failure reason", tt.raw)
			}
		})
	}
}

func TestParseFailureKeepsBestEffortDomain(t *testing.T) {
	t.Parallel()

	v := NewValidator()
	addr, res := v.Parse("us er@gmial.com")
	if res.Outcome != core.OutcomeFailed {
		t.Fatalf("outcome = %q, want failed", res.Outcome)
	}
	if addr.Domain != "gmial.com" {
		t.Errorf("domain = %q, want best-effort %q", addr.Domain, "gmial.com")
	}
}
