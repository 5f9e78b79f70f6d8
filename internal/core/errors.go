package core

import (
	"errors"
)

// Error taxonomy for the validation pipeline. Definitive failures
// short-circuit the remaining stages for an address; uncertain ones do not.
var (
	// ErrSyntaxInvalid marks a definitive, terminal grammar failure.
	ErrSyntaxInvalid = errors.New("address syntax invalid")

	// ErrDomainUnresolvable marks a definitive DNS failure (NXDOMAIN, or
	// no MX and no A/AAAA records).
	ErrDomainUnresolvable = errors.New("domain unresolvable")

	// ErrDNSInconclusive marks a lookup that could not complete; it is
	// not a rejection.
	ErrDNSInconclusive = errors.New("dns lookup inconclusive")

	// ErrSMTPRejected marks a definitive 5xx recipient rejection.
	ErrSMTPRejected = errors.New("smtp recipient rejected")

	// ErrSMTPTransient marks a 4xx reply, timeout or connection failure;
	// the mailbox state is unknown.
	ErrSMTPTransient = errors.New("smtp transient failure")

	// ErrQuotaExceeded is surfaced at batch admission time, before any
	// pipeline work runs.
	ErrQuotaExceeded = errors.New("validation quota exceeded")

	// ErrBatchCancelled is reported by the orchestrator when the caller
	// cancels a running batch.
	ErrBatchCancelled = errors.New("batch cancelled")
)
