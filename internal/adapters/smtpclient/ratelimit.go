package smtpclient

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Default politeness rates, in probes per second. Large providers throttle
// and blocklist aggressive verifiers, so they get stricter per-domain
// rates than the default.
const (
	defaultGlobalRate = 10
	defaultDomainRate = 5
	strictDomainRate  = 1
)

var strictDomains = []string{
	"gmail.com",
	"googlemail.com",
	"hotmail.com",
	"live.com",
	"outlook.com",
	"yahoo.com",
}

// PolitenessLimiter combines a global probe rate with per-domain rates so
// one batch cannot hammer a single mail exchanger.
type PolitenessLimiter struct {
	global *rate.Limiter

	mu      sync.RWMutex
	domains map[string]*rate.Limiter

	domainRate rate.Limit
}

// NewPolitenessLimiter creates a limiter. Non-positive rates fall back to
// the defaults.
func NewPolitenessLimiter(globalPerSec, domainPerSec float64) *PolitenessLimiter {
	if globalPerSec <= 0 {
		globalPerSec = defaultGlobalRate
	}
	if domainPerSec <= 0 {
		domainPerSec = defaultDomainRate
	}

	l := &PolitenessLimiter{
		global:     rate.NewLimiter(rate.Limit(globalPerSec), burstFor(globalPerSec)),
		domains:    make(map[string]*rate.Limiter),
		domainRate: rate.Limit(domainPerSec),
	}
	for _, d := range strictDomains {
		l.domains[d] = rate.NewLimiter(strictDomainRate, 1)
	}
	return l
}

// Wait blocks until both the global and the domain limiter admit one
// probe, or the context is cancelled.
func (l *PolitenessLimiter) Wait(ctx context.Context, domain string) error {
	if err := l.global.Wait(ctx); err != nil {
		return err
	}
	return l.limiterFor(strings.ToLower(domain)).Wait(ctx)
}

func (l *PolitenessLimiter) limiterFor(domain string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.domains[domain]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok = l.domains[domain]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(l.domainRate, burstFor(float64(l.domainRate)))
	l.domains[domain] = limiter
	return limiter
}

func burstFor(perSec float64) int {
	if perSec < 1 {
		return 1
	}
	return int(perSec)
}
