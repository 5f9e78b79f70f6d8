package dns

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/core"
)

// fakeLookuper scripts the answers per domain.
type fakeLookuper struct {
	mx      map[string][]*net.MX
	mxErr   map[string]error
	ips     map[string][]net.IP
	ipErr   map[string]error
	mxCalls int
}

func (f *fakeLookuper) LookupMX(_ context.Context, domain string) ([]*net.MX, error) {
	f.mxCalls++
	if err, ok := f.mxErr[domain]; ok {
		return nil, err
	}
	return f.mx[domain], nil
}

func (f *fakeLookuper) LookupIP(_ context.Context, _, domain string) ([]net.IP, error) {
	if err, ok := f.ipErr[domain]; ok {
		return nil, err
	}
	return f.ips[domain], nil
}

func notFoundErr(domain string) *net.DNSError {
	return &net.DNSError{Err: "no such host", Name: domain, IsNotFound: true}
}

func timeoutErr(domain string) *net.DNSError {
	return &net.DNSError{Err: "i/o timeout", Name: domain, IsTimeout: true, IsTemporary: true}
}

func newTestResolver(l Lookuper, ttl time.Duration) *Resolver {
	// Cleanup disabled; tests drive the cache directly.
	return NewResolverWithLookuper(l, time.Second, ttl, 0, zap.NewNop())
}

func TestResolveOrdersByPreference(t *testing.T) {
	t.Parallel()

	l := &fakeLookuper{mx: map[string][]*net.MX{
		"example.com": {
			{Host: "backup.example.com.", Pref: 20},
			{Host: "primary.example.com.", Pref: 5},
			{Host: "secondary.example.com.", Pref: 10},
		},
	}}
	r := newTestResolver(l, time.Minute)

	res := r.Resolve(context.Background(), "example.com")
	if res.Outcome != core.OutcomePassed {
		t.Fatalf("outcome = %q, want passed (%s)", res.Outcome, res.Reason)
	}
	want := []string{"primary.example.com", "secondary.example.com", "backup.example.com"}
	if len(res.MXHosts) != len(want) {
		t.Fatalf("hosts = %v, want %v", res.MXHosts, want)
	}
	for i := range want {
		if res.MXHosts[i] != want[i] {
			t.Errorf("host[%d] = %q, want %q", i, res.MXHosts[i], want[i])
		}
	}
}

func TestResolveNXDomainIsDefinitive(t *testing.T) {
	t.Parallel()

	l := &fakeLookuper{
		mxErr: map[string]error{"nosuch.example": notFoundErr("nosuch.example")},
		ipErr: map[string]error{"nosuch.example": notFoundErr("nosuch.example")},
	}
	r := newTestResolver(l, time.Minute)

	res := r.Resolve(context.Background(), "nosuch.example")
	if res.Outcome != core.OutcomeFailed {
		t.Errorf("outcome = %q, want failed", res.Outcome)
	}
	if len(res.MXHosts) != 0 {
		t.Errorf("hosts = %v, want none", res.MXHosts)
	}
}

func TestResolveTimeoutIsInconclusive(t *testing.T) {
	t.Parallel()

	l := &fakeLookuper{
		mxErr: map[string]error{"slow.example": timeoutErr("slow.example")},
	}
	r := newTestResolver(l, time.Minute)

	res := r.Resolve(context.Background(), "slow.example")
	if res.Outcome != core.OutcomeInconclusive {
		t.Errorf("outcome = %q, want inconclusive", res.Outcome)
	}
}

func TestResolveFallsBackToAddressRecords(t *testing.T) {
	t.Parallel()

	// No MX answer but the domain itself resolves: probe the domain.
	l := &fakeLookuper{
		mxErr: map[string]error{"apex.example": notFoundErr("apex.example")},
		ips:   map[string][]net.IP{"apex.example": {net.ParseIP("192.0.2.10")}},
	}
	r := newTestResolver(l, time.Minute)

	res := r.Resolve(context.Background(), "apex.example")
	if res.Outcome != core.OutcomePassed {
		t.Fatalf("outcome = %q, want passed (%s)", res.Outcome, res.Reason)
	}
	if len(res.MXHosts) != 1 || res.MXHosts[0] != "apex.example" {
		t.Errorf("hosts = %v, want [apex.example]", res.MXHosts)
	}
}

func TestResolveNoRecordsAtAll(t *testing.T) {
	t.Parallel()

	l := &fakeLookuper{
		mx:  map[string][]*net.MX{"empty.example": nil},
		ips: map[string][]net.IP{"empty.example": nil},
	}
	r := newTestResolver(l, time.Minute)

	res := r.Resolve(context.Background(), "empty.example")
	if res.Outcome != core.OutcomeFailed {
		t.Errorf("outcome = %q, want failed", res.Outcome)
	}
}

func TestResolveNullMXIsFiltered(t *testing.T) {
	t.Parallel()

	// RFC 7505 null MX plus no address records means the domain refuses mail.
	l := &fakeLookuper{
		mx:  map[string][]*net.MX{"nomail.example": {{Host: ".", Pref: 0}}},
		ips: map[string][]net.IP{"nomail.example": nil},
	}
	r := newTestResolver(l, time.Minute)

	res := r.Resolve(context.Background(), "nomail.example")
	if res.Outcome != core.OutcomeFailed {
		t.Errorf("outcome = %q, want failed", res.Outcome)
	}
}

func TestResolveCachesWithinTTL(t *testing.T) {
	t.Parallel()

	l := &fakeLookuper{mx: map[string][]*net.MX{
		"example.com": {{Host: "mx.example.com.", Pref: 10}},
	}}
	r := newTestResolver(l, time.Minute)

	first := r.Resolve(context.Background(), "example.com")
	if first.FromCache {
		t.Error("first resolution reported as cached")
	}
	second := r.Resolve(context.Background(), "example.com")
	if !second.FromCache {
		t.Error("second resolution not served from cache")
	}
	if l.mxCalls != 1 {
		t.Errorf("lookups = %d, want 1", l.mxCalls)
	}
	if len(second.MXHosts) != 1 || second.MXHosts[0] != "mx.example.com" {
		t.Errorf("cached hosts = %v, want [mx.example.com]", second.MXHosts)
	}
}

func TestResolveExpiredEntryRefreshes(t *testing.T) {
	t.Parallel()

	l := &fakeLookuper{mx: map[string][]*net.MX{
		"example.com": {{Host: "mx.example.com.", Pref: 10}},
	}}
	r := newTestResolver(l, time.Millisecond)

	r.Resolve(context.Background(), "example.com")
	time.Sleep(5 * time.Millisecond)
	res := r.Resolve(context.Background(), "example.com")
	if res.FromCache {
		t.Error("expired entry served from cache")
	}
	if l.mxCalls != 2 {
		t.Errorf("lookups = %d, want 2", l.mxCalls)
	}
}

func TestResolveFailuresAreNotCached(t *testing.T) {
	t.Parallel()

	l := &fakeLookuper{
		mxErr: map[string]error{"flaky.example": timeoutErr("flaky.example")},
	}
	r := newTestResolver(l, time.Minute)

	r.Resolve(context.Background(), "flaky.example")

	// The next attempt re-queries instead of replaying the inconclusive
	// answer.
	delete(l.mxErr, "flaky.example")
	l.mx = map[string][]*net.MX{"flaky.example": {{Host: "mx.flaky.example.", Pref: 10}}}

	res := r.Resolve(context.Background(), "flaky.example")
	if res.Outcome != core.OutcomePassed {
		t.Errorf("outcome = %q, want passed after recovery", res.Outcome)
	}
	if res.FromCache {
		t.Error("recovered resolution served from cache")
	}
}
