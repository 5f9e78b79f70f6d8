package core

import (
	"context"
)

// SyntaxParser validates the grammar of a raw address and produces its
// normalized form. Parsing is pure; the returned Address is zero-valued
// except for Raw when the syntax result is a failure.
type SyntaxParser interface {
	Parse(raw string) (Address, *SyntaxResult)
}

// Classifier answers static-set membership checks for an address.
type Classifier interface {
	Classify(addr Address) *ClassifierResult
}

// Suggester proposes a corrected domain for near-miss inputs. It returns
// the empty string when no provider is within the edit-distance threshold.
type Suggester interface {
	Suggest(domain string) string
}

// MXResolver resolves the mail exchangers for a domain.
type MXResolver interface {
	// Resolve returns the DNS stage result for a normalized domain. The
	// result's Outcome distinguishes an unresolvable domain (Failed) from
	// a lookup that could not complete (Inconclusive).
	Resolve(ctx context.Context, domain string) *DNSResult
}

// MailboxProber tests recipient acceptance against a domain's mail
// exchangers without delivering a message.
type MailboxProber interface {
	// Probe queries acceptance of addr against hosts in priority order.
	Probe(ctx context.Context, hosts []string, addr Address, opts ValidationOptions) *SMTPResult

	// DetectCatchAll issues a decoy probe for a virtually-guaranteed
	// nonexistent local part on the same domain.
	DetectCatchAll(ctx context.Context, hosts []string, domain string, opts ValidationOptions) *CatchAllResult
}

// QuotaStore is the per-owner validation allowance, mutated only through
// atomic check-and-reserve. Concurrent reservations for the same owner must
// serialize so that used never exceeds limit.
type QuotaStore interface {
	// Reserve atomically checks and reserves up to n validations.
	Reserve(ctx context.Context, owner string, n int) (Reservation, error)

	// Release returns n unconsumed reservations to the owner's allowance.
	Release(ctx context.Context, owner string, n int) error

	// Usage reports the owner's current used count and lifetime limit.
	Usage(ctx context.Context, owner string) (used, limit int64, err error)
}

// RecordSink accepts finished records for durable storage. Writes are
// best-effort from the core's point of view; retries are the collaborator's
// concern.
type RecordSink interface {
	Store(ctx context.Context, owner string, record *ValidationRecord) error
}
