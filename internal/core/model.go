package core

import (
	"time"
)

// Stage identifies one step of the validation pipeline.
type Stage string

const (
	StageSyntax     Stage = "syntax"
	StageDNS        Stage = "dns"
	StageClassifier Stage = "classifier"
	StageSMTP       Stage = "smtp"
	StageCatchAll   Stage = "catch_all"
)

// Outcome is the terminal status of a single stage. Inconclusive means the
// stage ran but the network did not give a definitive answer; it must never
// be collapsed into Failed.
type Outcome string

const (
	OutcomePassed       Outcome = "passed"
	OutcomeFailed       Outcome = "failed"
	OutcomeInconclusive Outcome = "inconclusive"
	OutcomeSkipped      Outcome = "skipped"
)

// Address is a parsed, normalized email address. Domain is lower-cased and
// punycode-normalized; it is non-empty whenever syntax validation passed.
type Address struct {
	Raw       string `json:"raw"`
	LocalPart string `json:"local_part"`
	Domain    string `json:"domain"`
}

// String returns the normalized address form.
func (a Address) String() string {
	if a.Domain == "" {
		return a.Raw
	}
	return a.LocalPart + "@" + a.Domain
}

// ValidationOptions controls which stages run for one request. Immutable
// once handed to the service.
type ValidationOptions struct {
	// SkipSMTP disables the mailbox probe and catch-all detection; the
	// record is scored from syntax, DNS and classifier signals only.
	SkipSMTP bool
	// SkipCatchAll disables only the decoy probe.
	SkipCatchAll bool
	// SMTPTimeout overrides the configured per-connection probe timeout
	// when positive.
	SMTPTimeout time.Duration
}

// SyntaxResult is the outcome of the grammar check. A syntax failure is the
// only failure that is always definitive.
type SyntaxResult struct {
	Outcome    Outcome `json:"outcome"`
	Normalized string  `json:"normalized,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// DNSResult is the outcome of MX (fallback A/AAAA) resolution.
type DNSResult struct {
	Outcome Outcome `json:"outcome"`
	// MXHosts is ordered by ascending MX preference. When the domain has
	// no MX records but resolves via A/AAAA, it holds the domain itself.
	MXHosts    []string      `json:"mx_hosts,omitempty"`
	FromCache  bool          `json:"from_cache,omitempty"`
	TTL        time.Duration `json:"ttl,omitempty"`
	ResolvedAt time.Time     `json:"resolved_at"`
	Reason     string        `json:"reason,omitempty"`
}

// ClassifierResult carries the static-set membership flags. The classifier
// never fails.
type ClassifierResult struct {
	IsDisposable bool `json:"is_disposable"`
	IsRoleBased  bool `json:"is_role_based"`
}

// SMTPResult is the outcome of the mailbox acceptance probe.
type SMTPResult struct {
	Outcome Outcome `json:"outcome"`
	// Accepted is true only on a definitive 2xx RCPT reply.
	Accepted bool `json:"accepted"`
	// TransientFailure marks 4xx replies, timeouts and connection
	// failures: the mailbox state is unknown, not rejected.
	TransientFailure bool          `json:"transient_failure"`
	ResponseCode     int           `json:"response_code,omitempty"`
	Host             string        `json:"host,omitempty"`
	Latency          time.Duration `json:"latency,omitempty"`
	Reason           string        `json:"reason,omitempty"`
}

// CatchAllResult is the outcome of the decoy probe.
type CatchAllResult struct {
	// Checked is false when the decoy probe could not produce a
	// definitive answer (connection failure, transient reply).
	Checked    bool `json:"checked"`
	IsCatchAll bool `json:"is_catch_all"`
}

// RiskBand is the discrete risk category derived from the score.
type RiskBand string

const (
	BandLow      RiskBand = "low"
	BandMedium   RiskBand = "medium"
	BandHigh     RiskBand = "high"
	BandCritical RiskBand = "critical"
)

// ConfidenceResult is the scorer output: an integer score in [0,100], the
// band it falls in, and the ordered list of reasons that contributed.
type ConfidenceResult struct {
	Score   int      `json:"score"`
	Band    RiskBand `json:"band"`
	Reasons []string `json:"reasons"`
}

// ValidationRecord aggregates every stage result for one address. It is
// produced once per request and not mutated after being returned.
type ValidationRecord struct {
	Address    Address           `json:"address"`
	Syntax     *SyntaxResult     `json:"syntax,omitempty"`
	DNS        *DNSResult        `json:"dns,omitempty"`
	Classifier *ClassifierResult `json:"classifier,omitempty"`
	SMTP       *SMTPResult       `json:"smtp,omitempty"`
	CatchAll   *CatchAllResult   `json:"catch_all,omitempty"`
	Confidence ConfidenceResult  `json:"confidence"`
	// Suggestion is a corrected domain when the input is a near-miss of a
	// well-known provider. It is attached regardless of other outcomes.
	Suggestion string `json:"suggestion,omitempty"`
	// StagesRun lists the stages that actually executed, so a caller can
	// distinguish "verified invalid" from "could not verify".
	StagesRun []Stage `json:"stages_run"`
	// InternalError is set when a stage failed unexpectedly; the failure
	// is isolated to this record.
	InternalError string    `json:"internal_error,omitempty"`
	CheckedAt     time.Time `json:"checked_at"`
}

// Err maps the record's verdict onto the error taxonomy. It returns nil
// for an accepted or skipped-probe record, a definitive sentinel for
// terminal failures, and an inconclusive sentinel when the network never
// gave an answer.
func (r *ValidationRecord) Err() error {
	if r.Syntax == nil || r.Syntax.Outcome != OutcomePassed {
		return ErrSyntaxInvalid
	}
	if r.DNS != nil {
		switch r.DNS.Outcome {
		case OutcomeFailed:
			return ErrDomainUnresolvable
		case OutcomeInconclusive:
			return ErrDNSInconclusive
		}
	}
	if r.SMTP != nil {
		switch r.SMTP.Outcome {
		case OutcomeFailed:
			return ErrSMTPRejected
		case OutcomeInconclusive:
			return ErrSMTPTransient
		}
	}
	return nil
}

// BatchState is the lifecycle state of a batch job.
type BatchState string

const (
	BatchPending   BatchState = "pending"
	BatchRunning   BatchState = "running"
	BatchCompleted BatchState = "completed"
	BatchCancelled BatchState = "cancelled"
	BatchRejected  BatchState = "rejected"
)

// StreamItem pairs a finished record with the submission index of its
// address, so a consumer can restore submission order if it wants to.
type StreamItem struct {
	Index  int               `json:"index"`
	Record *ValidationRecord `json:"record"`
}

// QuotaDecision is the admission verdict for a batch reservation.
type QuotaDecision string

const (
	QuotaFull     QuotaDecision = "full"
	QuotaPartial  QuotaDecision = "partial"
	QuotaRejected QuotaDecision = "rejected"
)

// Reservation is the result of an atomic check-and-reserve against an
// owner's quota counter.
type Reservation struct {
	Decision QuotaDecision
	// Approved is the number of validations actually reserved. It is n
	// for Full, 0 for Rejected, and the remaining allowance for Partial.
	Approved int
}
