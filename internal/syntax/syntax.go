// Package syntax implements the address grammar check, the unconditional
// first gate of the validation pipeline.
package syntax

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"github.com/mailprobe/mailprobe/internal/core"
)

// RFC 5321 length limits.
const (
	maxAddressLen = 254
	maxLocalLen   = 64
	maxDomainLen  = 253
)

var (
	localRegex  = regexp.MustCompile(`^(?i)[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*$`)
	domainRegex = regexp.MustCompile(`^(?i)(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)
)

// Validator implements core.SyntaxParser.
type Validator struct{}

// NewValidator creates a new syntax validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Parse validates raw against the address grammar and returns the
// normalized split. On failure the returned Address still carries a
// best-effort domain so the typo suggester can fire on near-miss inputs.
func (v *Validator) Parse(raw string) (core.Address, *core.SyntaxResult) {
	trimmed := strings.TrimSpace(raw)
	addr := core.Address{Raw: raw}

	fail := func(reason string) (core.Address, *core.SyntaxResult) {
		// Best-effort split for downstream pure-string stages.
		if at := strings.LastIndex(trimmed, "@"); at > 0 && at < len(trimmed)-1 {
			addr.LocalPart = trimmed[:at]
			addr.Domain = strings.ToLower(trimmed[at+1:])
		}
		return addr, &core.SyntaxResult{Outcome: core.OutcomeFailed, Reason: reason}
	}

	if trimmed == "" {
		return fail("empty address")
	}
	if len(trimmed) > maxAddressLen {
		return fail("address exceeds 254 characters")
	}
	if strings.Count(trimmed, "@") != 1 {
		return fail("address must contain exactly one @")
	}

	at := strings.Index(trimmed, "@")
	local, domain := trimmed[:at], trimmed[at+1:]

	if local == "" {
		return fail("empty local part")
	}
	if len(local) > maxLocalLen {
		return fail("local part exceeds 64 characters")
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return fail("local part starts or ends with a dot")
	}
	if strings.Contains(local, "..") {
		return fail("local part contains consecutive dots")
	}
	if !localRegex.MatchString(local) {
		return fail("local part contains disallowed characters")
	}

	if domain == "" {
		return fail("empty domain")
	}
	if len(domain) > maxDomainLen {
		return fail("domain exceeds 253 characters")
	}

	normalized, err := normalizeDomain(domain)
	if err != nil {
		return fail("domain is not a valid DNS name")
	}
	if !domainRegex.MatchString(normalized) {
		return fail("domain is not a valid DNS name")
	}

	addr.LocalPart = local
	addr.Domain = normalized
	return addr, &core.SyntaxResult{
		Outcome:    core.OutcomePassed,
		Normalized: local + "@" + normalized,
	}
}

// normalizeDomain lower-cases the domain and converts internationalized
// labels to their punycode form.
func normalizeDomain(domain string) (string, error) {
	lowered := strings.ToLower(strings.TrimSuffix(domain, "."))
	return idna.Lookup.ToASCII(lowered)
}
