package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// VerifierService runs the validation pipeline for one address at a time.
// Single-address requests call Verify directly on the caller's goroutine;
// the batch orchestrator runs the same method from its worker pool.
type VerifierService struct {
	syntax     SyntaxParser
	resolver   MXResolver
	classifier Classifier
	prober     MailboxProber
	suggester  Suggester
	sink       RecordSink
	logger     *zap.Logger
}

// NewVerifierService creates a new verification pipeline service.
func NewVerifierService(
	syntax SyntaxParser,
	resolver MXResolver,
	classifier Classifier,
	prober MailboxProber,
	suggester Suggester,
	sink RecordSink,
	logger *zap.Logger,
) *VerifierService {
	return &VerifierService{
		syntax:     syntax,
		resolver:   resolver,
		classifier: classifier,
		prober:     prober,
		suggester:  suggester,
		sink:       sink,
		logger:     logger,
	}
}

// Verify runs the full pipeline for one raw address and returns its record.
// The record is complete once returned: every address submitted gets exactly
// one terminal record, and an unexpected stage panic is converted into an
// internal-error record rather than propagated.
func (s *VerifierService) Verify(ctx context.Context, owner, raw string, opts ValidationOptions) (rec *ValidationRecord) {
	rec = &ValidationRecord{CheckedAt: time.Now()}

	defer func() {
		if r := recover(); r != nil {
			rec.InternalError = fmt.Sprintf("stage panic: %v", r)
			rec.Confidence = ConfidenceResult{Score: 0, Band: BandCritical, Reasons: []string{"internal_error"}}
			s.logger.Error("Validation stage panicked",
				zap.String("email", raw),
				zap.Any("panic", r))
		}
		s.persist(ctx, owner, rec)
	}()

	addr, syntaxRes := s.syntax.Parse(raw)
	rec.Address = addr
	rec.Syntax = syntaxRes
	rec.StagesRun = append(rec.StagesRun, StageSyntax)

	// The suggester is pure string work and runs regardless of other
	// outcomes, so a caller can fix an otherwise-invalid address.
	rec.Suggestion = s.suggester.Suggest(addr.Domain)

	if syntaxRes.Outcome != OutcomePassed {
		rec.Confidence = ScoreRecord(rec)
		return rec
	}

	rec.DNS = s.resolver.Resolve(ctx, addr.Domain)
	rec.StagesRun = append(rec.StagesRun, StageDNS)
	if rec.DNS.Outcome == OutcomeFailed {
		rec.Confidence = ScoreRecord(rec)
		return rec
	}

	rec.Classifier = s.classifier.Classify(addr)
	rec.StagesRun = append(rec.StagesRun, StageClassifier)

	if rec.DNS.Outcome == OutcomeInconclusive {
		// No MX hosts to probe; downstream network stages are skipped
		// and the record stays inconclusive.
		rec.Confidence = ScoreRecord(rec)
		return rec
	}

	if opts.SkipSMTP {
		rec.SMTP = &SMTPResult{Outcome: OutcomeSkipped}
		rec.Confidence = ScoreRecord(rec)
		return rec
	}

	rec.SMTP = s.prober.Probe(ctx, rec.DNS.MXHosts, addr, opts)
	rec.StagesRun = append(rec.StagesRun, StageSMTP)

	if rec.SMTP.Outcome == OutcomePassed && !opts.SkipCatchAll {
		rec.CatchAll = s.prober.DetectCatchAll(ctx, rec.DNS.MXHosts, addr.Domain, opts)
		rec.StagesRun = append(rec.StagesRun, StageCatchAll)
	}

	rec.Confidence = ScoreRecord(rec)

	s.logger.Debug("Validation finished",
		zap.String("email", addr.String()),
		zap.Int("score", rec.Confidence.Score),
		zap.String("band", string(rec.Confidence.Band)))

	return rec
}

// persist hands the finished record to the storage collaborator. The write
// is best-effort: a sink failure is logged and does not affect the verdict.
func (s *VerifierService) persist(ctx context.Context, owner string, rec *ValidationRecord) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Store(ctx, owner, rec); err != nil {
		s.logger.Warn("Failed to persist validation record",
			zap.String("email", rec.Address.Raw),
			zap.Error(err))
	}
}
