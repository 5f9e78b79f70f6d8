// Package typo proposes corrections for domains that are a near-miss of a
// well-known mail provider.
package typo

import (
	"strings"
)

// DefaultThreshold is the maximum edit distance treated as a near-miss.
const DefaultThreshold = 2

// Default high-traffic provider domains, overridable through configuration.
var defaultProviders = []string{
	"aol.com",
	"comcast.net",
	"gmail.com",
	"gmx.com",
	"hotmail.com",
	"icloud.com",
	"live.com",
	"mail.com",
	"msn.com",
	"outlook.com",
	"protonmail.com",
	"yahoo.com",
	"yandex.com",
	"zoho.com",
}

// Suggester implements core.Suggester with a Levenshtein scan over the
// provider list. Pure string computation, no network I/O.
type Suggester struct {
	providers []string
	threshold int
}

// NewSuggester creates a suggester. An empty provider list falls back to
// the built-in defaults; a non-positive threshold falls back to
// DefaultThreshold.
func NewSuggester(providers []string, threshold int) *Suggester {
	if len(providers) == 0 {
		providers = defaultProviders
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	normalized := make([]string, len(providers))
	for i, p := range providers {
		normalized[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return &Suggester{providers: normalized, threshold: threshold}
}

// Suggest returns the nearest provider domain when the input is within the
// threshold but not an exact match, and the empty string otherwise.
func (s *Suggester) Suggest(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}

	best := ""
	bestDist := s.threshold + 1
	for _, p := range s.providers {
		d := levenshtein(domain, p)
		if d == 0 {
			// Exact match: nothing to correct.
			return ""
		}
		if d < bestDist {
			best = p
			bestDist = d
		}
	}
	if bestDist > s.threshold {
		return ""
	}
	return best
}

// levenshtein computes the edit distance with a two-row table.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
