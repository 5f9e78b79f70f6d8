// Package classify provides the static-set membership checks for
// disposable domains and role-based local parts.
package classify

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/core"
)

// Checker holds the lookup sets. Both are immutable after construction and
// need no synchronization.
type Checker struct {
	disposable map[string]struct{}
	roles      map[string]struct{}
	logger     *zap.Logger
}

// NewChecker creates a classifier from the configured lists. Empty lists
// fall back to the built-in defaults.
func NewChecker(disposableDomains, rolePrefixes []string, logger *zap.Logger) *Checker {
	if len(disposableDomains) == 0 {
		disposableDomains = defaultDisposableDomains
	}
	if len(rolePrefixes) == 0 {
		rolePrefixes = defaultRolePrefixes
	}

	disposable := make(map[string]struct{}, len(disposableDomains))
	for _, d := range disposableDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			disposable[d] = struct{}{}
		}
	}
	roles := make(map[string]struct{}, len(rolePrefixes))
	for _, r := range rolePrefixes {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			roles[r] = struct{}{}
		}
	}

	if logger != nil {
		logger.Info("Initialized classifier",
			zap.Int("disposable_domains", len(disposable)),
			zap.Int("role_prefixes", len(roles)))
	}

	return &Checker{disposable: disposable, roles: roles, logger: logger}
}

// Classify runs both membership checks. It never fails.
func (c *Checker) Classify(addr core.Address) *core.ClassifierResult {
	return &core.ClassifierResult{
		IsDisposable: c.IsDisposable(addr.Domain),
		IsRoleBased:  c.IsRoleBased(addr.LocalPart),
	}
}

// IsDisposable reports whether the domain is a known throwaway provider.
func (c *Checker) IsDisposable(domain string) bool {
	_, ok := c.disposable[strings.ToLower(domain)]
	return ok
}

// IsRoleBased reports whether the local part names a function rather than
// an individual. Plus-tagging is ignored: "support+tickets" still counts.
func (c *Checker) IsRoleBased(localPart string) bool {
	local := strings.ToLower(localPart)
	if plus := strings.Index(local, "+"); plus > 0 {
		local = local[:plus]
	}
	_, ok := c.roles[local]
	return ok
}
