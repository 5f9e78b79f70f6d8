// Package dns implements the MX resolution stage with a shared,
// time-bounded cache.
package dns

import (
	"context"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/core"
)

// Lookuper is the slice of net.Resolver the resolver depends on, split out
// so tests can inject fakes.
type Lookuper interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
	LookupIP(ctx context.Context, network, domain string) ([]net.IP, error)
}

// cacheEntry is one cached resolution, shared across a batch.
type cacheEntry struct {
	hosts      []string
	resolvedAt time.Time
	expiresAt  time.Time
}

// Resolver implements core.MXResolver. The cache is read-mostly: lookups
// take the read lock, misses serialize on the write lock.
type Resolver struct {
	lookuper Lookuper
	logger   *zap.Logger
	timeout  time.Duration
	ttl      time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry

	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewResolver creates a caching MX resolver backed by the system resolver.
func NewResolver(timeout, ttl, cleanupFreq time.Duration, logger *zap.Logger) *Resolver {
	return NewResolverWithLookuper(&net.Resolver{}, timeout, ttl, cleanupFreq, logger)
}

// NewResolverWithLookuper creates a caching resolver over an explicit
// lookup implementation.
func NewResolverWithLookuper(l Lookuper, timeout, ttl, cleanupFreq time.Duration, logger *zap.Logger) *Resolver {
	r := &Resolver{
		lookuper:    l,
		logger:      logger,
		timeout:     timeout,
		ttl:         ttl,
		entries:     make(map[string]cacheEntry),
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}
	if cleanupFreq > 0 {
		go r.startCleanupTask()
	}
	return r
}

// Resolve returns the DNS stage result for a domain. NXDOMAIN is a
// definitive failure; a lookup timeout or any other resolver error is
// inconclusive, never a rejection.
func (r *Resolver) Resolve(ctx context.Context, domain string) *core.DNSResult {
	domain = strings.ToLower(strings.TrimSpace(domain))

	if hosts, resolvedAt, ok := r.cached(domain); ok {
		return &core.DNSResult{
			Outcome:    core.OutcomePassed,
			MXHosts:    hosts,
			FromCache:  true,
			TTL:        r.ttl,
			ResolvedAt: resolvedAt,
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now()
	records, err := r.lookuper.LookupMX(lookupCtx, domain)
	if err != nil && isUncertain(err) {
		return &core.DNSResult{
			Outcome:    core.OutcomeInconclusive,
			Reason:     "mx lookup: " + err.Error(),
			ResolvedAt: now,
		}
	}

	hosts := hostsFromMX(records)
	if len(hosts) == 0 {
		// The stdlib resolver reports NXDOMAIN and "no MX records" the
		// same way, so a missing MX answer always falls back to the
		// address records: a domain with no mail routing is still
		// occasionally used for mail.
		ips, ipErr := r.lookuper.LookupIP(lookupCtx, "ip", domain)
		if ipErr != nil {
			if isUncertain(ipErr) {
				return &core.DNSResult{
					Outcome:    core.OutcomeInconclusive,
					Reason:     "address lookup: " + ipErr.Error(),
					ResolvedAt: now,
				}
			}
			return &core.DNSResult{
				Outcome:    core.OutcomeFailed,
				Reason:     "domain does not exist",
				ResolvedAt: now,
			}
		}
		if len(ips) == 0 {
			return &core.DNSResult{
				Outcome:    core.OutcomeFailed,
				Reason:     "no MX and no A/AAAA records",
				ResolvedAt: now,
			}
		}
		hosts = []string{domain}
	}

	r.store(domain, hosts, now)
	r.logger.Debug("Resolved mail exchangers",
		zap.String("domain", domain),
		zap.Strings("hosts", hosts))

	return &core.DNSResult{
		Outcome:    core.OutcomePassed,
		MXHosts:    hosts,
		TTL:        r.ttl,
		ResolvedAt: now,
	}
}

// isUncertain reports whether a lookup error leaves the domain's existence
// unknown (timeout, temporary server failure). A not-found answer is
// certain and must not be treated this way.
func isUncertain(err error) bool {
	dnsErr, ok := err.(*net.DNSError)
	if !ok {
		return true
	}
	return !dnsErr.IsNotFound
}

// hostsFromMX orders hosts by ascending preference and strips the trailing
// root dot.
func hostsFromMX(records []*net.MX) []string {
	sorted := make([]*net.MX, 0, len(records))
	for _, mx := range records {
		if mx != nil && strings.TrimSpace(mx.Host) != "" && mx.Host != "." {
			sorted = append(sorted, mx)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Pref < sorted[j].Pref
	})
	hosts := make([]string, len(sorted))
	for i, mx := range sorted {
		hosts[i] = strings.TrimSuffix(mx.Host, ".")
	}
	return hosts
}

func (r *Resolver) cached(domain string) ([]string, time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[domain]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, time.Time{}, false
	}
	return entry.hosts, entry.resolvedAt, true
}

func (r *Resolver) store(domain string, hosts []string, resolvedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[domain] = cacheEntry{
		hosts:      hosts,
		resolvedAt: resolvedAt,
		expiresAt:  resolvedAt.Add(r.ttl),
	}
}

// startCleanupTask evicts expired entries in the background.
func (r *Resolver) startCleanupTask() {
	ticker := time.NewTicker(r.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanup()
		case <-r.stopCh:
			return
		}
	}
}

func (r *Resolver) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	expired := 0
	for domain, entry := range r.entries {
		if now.After(entry.expiresAt) {
			delete(r.entries, domain)
			expired++
		}
	}
	if expired > 0 {
		r.logger.Debug("Evicted expired DNS cache entries", zap.Int("expired_count", expired))
	}
}

// Stop stops the background cleanup task.
func (r *Resolver) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}
