package core

// Scoring constants. The score is a fixed weighted combination of stage
// signals: a base determined by the strongest network signal available,
// a ceiling applied for catch-all domains, and flat penalties for the
// classifier flags. The combination is order-independent.
const (
	scoreSyntaxInvalid   = 0
	scoreUnresolvable    = 5
	scoreDNSInconclusive = 50
	scoreSMTPRejected    = 10
	scoreSMTPTransient   = 55
	scoreSMTPAccepted    = 95
	scoreSMTPSkipped     = 70
	scoreCatchAllCeiling = 70
	penaltyDisposable    = 30
	penaltyRoleBased     = 10
)

// Band cut points over the score.
const (
	bandLowMin    = 80
	bandMediumMin = 50
	bandHighMin   = 25
)

// Scorer reason strings, appended in the order their terms apply.
const (
	ReasonSyntaxInvalid    = "syntax_invalid"
	ReasonDomainNotFound   = "domain_unresolvable"
	ReasonDNSInconclusive  = "dns_inconclusive"
	ReasonMailboxRejected  = "mailbox_rejected"
	ReasonSMTPTransient    = "smtp_transient"
	ReasonMailboxAccepted  = "mailbox_accepted"
	ReasonSMTPSkipped      = "smtp_skipped"
	ReasonCatchAllDomain   = "catch_all_domain"
	ReasonDisposableDomain = "disposable_domain"
	ReasonRoleBasedAddress = "role_based_address"
)

// BandFor maps a score onto its risk band.
func BandFor(score int) RiskBand {
	switch {
	case score >= bandLowMin:
		return BandLow
	case score >= bandMediumMin:
		return BandMedium
	case score >= bandHighMin:
		return BandHigh
	default:
		return BandCritical
	}
}

// ScoreRecord computes the confidence result for a record whose stage
// results are already populated. It never inspects anything outside the
// record, so the same inputs always produce the same score.
func ScoreRecord(rec *ValidationRecord) ConfidenceResult {
	var reasons []string

	if rec.Syntax == nil || rec.Syntax.Outcome != OutcomePassed {
		return ConfidenceResult{
			Score:   scoreSyntaxInvalid,
			Band:    BandCritical,
			Reasons: []string{ReasonSyntaxInvalid},
		}
	}

	var base int
	switch {
	case rec.DNS == nil || rec.DNS.Outcome == OutcomeFailed:
		return ConfidenceResult{
			Score:   scoreUnresolvable,
			Band:    BandCritical,
			Reasons: []string{ReasonDomainNotFound},
		}
	case rec.DNS.Outcome == OutcomeInconclusive:
		base = scoreDNSInconclusive
		reasons = append(reasons, ReasonDNSInconclusive)
	case rec.SMTP == nil || rec.SMTP.Outcome == OutcomeSkipped:
		base = scoreSMTPSkipped
		reasons = append(reasons, ReasonSMTPSkipped)
	case rec.SMTP.Outcome == OutcomeFailed:
		base = scoreSMTPRejected
		reasons = append(reasons, ReasonMailboxRejected)
	case rec.SMTP.Outcome == OutcomeInconclusive:
		base = scoreSMTPTransient
		reasons = append(reasons, ReasonSMTPTransient)
	default:
		base = scoreSMTPAccepted
		reasons = append(reasons, ReasonMailboxAccepted)
	}

	// An accepted-but-catch-all result carries no evidentiary value for
	// the specific mailbox, so it can never reach the low-risk band.
	if rec.CatchAll != nil && rec.CatchAll.IsCatchAll && base > scoreCatchAllCeiling {
		base = scoreCatchAllCeiling
		reasons = append(reasons, ReasonCatchAllDomain)
	}

	score := base
	if rec.Classifier != nil {
		if rec.Classifier.IsDisposable {
			score -= penaltyDisposable
			reasons = append(reasons, ReasonDisposableDomain)
		}
		if rec.Classifier.IsRoleBased {
			score -= penaltyRoleBased
			reasons = append(reasons, ReasonRoleBasedAddress)
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return ConfidenceResult{
		Score:   score,
		Band:    BandFor(score),
		Reasons: reasons,
	}
}
