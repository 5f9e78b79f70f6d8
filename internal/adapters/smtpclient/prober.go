// Package smtpclient implements the mailbox acceptance probe and catch-all
// detection against a domain's mail exchangers. The probe performs the
// greeting, sender identification and recipient-acceptance exchange, then
// disconnects: it never reaches the content-transfer stage.
package smtpclient

import (
	"context"
	"crypto/rand"
	"math/big"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/core"
)

// Options configures the prober's network behavior and SMTP identity.
type Options struct {
	// HeloDomain is the identity sent in the HELO/EHLO command. Remote
	// servers reject bare "localhost" identities, so this must be a real
	// hostname.
	HeloDomain string
	// MailFrom is the sender identity for the MAIL FROM command.
	MailFrom string
	// Port is the SMTP port, normally 25.
	Port string
	// Timeout bounds both the connection attempt and the command
	// exchange against one host.
	Timeout time.Duration
	// MaxHosts caps how many MX hosts are tried for one probe. A
	// transient result retries against the next host, never the same
	// host twice.
	MaxHosts int
}

// attemptResult is the classified outcome of one host exchange.
type attemptOutcome int

const (
	attemptAccepted attemptOutcome = iota
	attemptRejected
	attemptTransient
)

type attempt struct {
	outcome attemptOutcome
	code    int
	reason  string
	latency time.Duration
}

// Prober implements core.MailboxProber.
type Prober struct {
	opts    Options
	limiter *PolitenessLimiter
	logger  *zap.Logger
}

// NewProber creates a probe client.
func NewProber(opts Options, limiter *PolitenessLimiter, logger *zap.Logger) *Prober {
	if opts.Port == "" {
		opts.Port = "25"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxHosts <= 0 {
		opts.MaxHosts = 2
	}
	return &Prober{opts: opts, limiter: limiter, logger: logger}
}

// Probe queries acceptance of addr against hosts in priority order. A 5xx
// reply is a definitive rejection and stops immediately; connection
// failures and 4xx replies move on to the next host. When every tried host
// is exhausted the result is inconclusive, never a rejection.
func (p *Prober) Probe(ctx context.Context, hosts []string, addr core.Address, vopts core.ValidationOptions) *core.SMTPResult {
	return p.probeRecipient(ctx, hosts, addr.String(), addr.Domain, vopts)
}

// DetectCatchAll issues a second recipient query for a randomly generated,
// virtually-guaranteed-nonexistent local part on the same domain. Accepting
// the decoy means the domain accepts any address.
func (p *Prober) DetectCatchAll(ctx context.Context, hosts []string, domain string, vopts core.ValidationOptions) *core.CatchAllResult {
	decoy := randomLocalPart(16) + "@" + domain
	res := p.probeRecipient(ctx, hosts, decoy, domain, vopts)

	switch res.Outcome {
	case core.OutcomePassed:
		p.logger.Debug("Decoy recipient accepted, domain is catch-all",
			zap.String("domain", domain))
		return &core.CatchAllResult{Checked: true, IsCatchAll: true}
	case core.OutcomeFailed:
		return &core.CatchAllResult{Checked: true, IsCatchAll: false}
	default:
		// The decoy probe could not get a definitive answer; the
		// original acceptance stands on its own.
		return &core.CatchAllResult{Checked: false, IsCatchAll: false}
	}
}

func (p *Prober) probeRecipient(ctx context.Context, hosts []string, recipient, domain string, vopts core.ValidationOptions) *core.SMTPResult {
	if len(hosts) == 0 {
		return &core.SMTPResult{
			Outcome:          core.OutcomeInconclusive,
			TransientFailure: true,
			Reason:           "no mail exchangers to probe",
		}
	}

	timeout := p.opts.Timeout
	if vopts.SMTPTimeout > 0 {
		timeout = vopts.SMTPTimeout
	}

	tried := hosts
	if len(tried) > p.opts.MaxHosts {
		tried = tried[:p.opts.MaxHosts]
	}

	var last attempt
	var lastHost string
	for _, host := range tried {
		if ctx.Err() != nil {
			return &core.SMTPResult{
				Outcome:          core.OutcomeInconclusive,
				TransientFailure: true,
				Reason:           "probe cancelled",
			}
		}
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx, domain); err != nil {
				return &core.SMTPResult{
					Outcome:          core.OutcomeInconclusive,
					TransientFailure: true,
					Reason:           "probe cancelled while rate limited",
				}
			}
		}

		last = p.exchange(ctx, host, recipient, timeout)
		lastHost = host

		switch last.outcome {
		case attemptAccepted:
			return &core.SMTPResult{
				Outcome:      core.OutcomePassed,
				Accepted:     true,
				ResponseCode: last.code,
				Host:         host,
				Latency:      last.latency,
				Reason:       last.reason,
			}
		case attemptRejected:
			return &core.SMTPResult{
				Outcome:      core.OutcomeFailed,
				ResponseCode: last.code,
				Host:         host,
				Latency:      last.latency,
				Reason:       last.reason,
			}
		case attemptTransient:
			p.logger.Debug("Transient probe result, trying next exchanger",
				zap.String("host", host),
				zap.Int("code", last.code),
				zap.String("reason", last.reason))
		}
	}

	return &core.SMTPResult{
		Outcome:          core.OutcomeInconclusive,
		TransientFailure: true,
		ResponseCode:     last.code,
		Host:             lastHost,
		Latency:          last.latency,
		Reason:           last.reason,
	}
}

// exchange runs the greeting/sender/recipient sequence against one host
// and classifies the reply. The connection is always closed before any
// content transfer could begin.
func (p *Prober) exchange(ctx context.Context, host, recipient string, timeout time.Duration) attempt {
	start := time.Now()

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, p.opts.Port))
	if err != nil {
		return attempt{
			outcome: attemptTransient,
			reason:  "connect failed: " + err.Error(),
			latency: time.Since(start),
		}
	}
	defer conn.Close()

	// One deadline covers the whole command exchange so a slow or
	// hostile server cannot stall the worker indefinitely.
	conn.SetDeadline(time.Now().Add(timeout))

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return classify(err, "greeting", time.Since(start))
	}
	defer client.Close()

	if err := client.Hello(p.opts.HeloDomain); err != nil {
		return classify(err, "HELO", time.Since(start))
	}
	if err := client.Mail(p.opts.MailFrom); err != nil {
		return classify(err, "MAIL FROM", time.Since(start))
	}

	err = client.Rcpt(recipient)
	latency := time.Since(start)

	// Disconnect politely either way; the probe aborts before DATA.
	_ = client.Quit()

	if err != nil {
		return classify(err, "RCPT TO", latency)
	}
	return attempt{
		outcome: attemptAccepted,
		code:    250,
		reason:  "recipient accepted",
		latency: latency,
	}
}

// classify maps an SMTP command error onto the probe taxonomy: 2xx
// accepted, 5xx permanently rejected, everything else (4xx, timeouts,
// broken connections) transient. Conflating transient with rejected would
// silently turn "unknown" into "invalid".
func classify(err error, command string, latency time.Duration) attempt {
	if proto, ok := err.(*textproto.Error); ok {
		switch {
		case proto.Code >= 200 && proto.Code < 300:
			return attempt{
				outcome: attemptAccepted,
				code:    proto.Code,
				reason:  command + ": " + proto.Msg,
				latency: latency,
			}
		case proto.Code >= 500:
			return attempt{
				outcome: attemptRejected,
				code:    proto.Code,
				reason:  command + ": " + proto.Msg,
				latency: latency,
			}
		default:
			return attempt{
				outcome: attemptTransient,
				code:    proto.Code,
				reason:  command + ": " + proto.Msg,
				latency: latency,
			}
		}
	}
	return attempt{
		outcome: attemptTransient,
		reason:  command + " failed: " + err.Error(),
		latency: latency,
	}
}

const localPartCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomLocalPart builds a decoy local part that no real mailbox plausibly
// uses.
func randomLocalPart(length int) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(localPartCharset))))
		if err != nil {
			// crypto/rand only fails when the platform source is
			// broken; fall back to a position-derived character.
			b[i] = localPartCharset[i%len(localPartCharset)]
			continue
		}
		b[i] = localPartCharset[n.Int64()]
	}
	return "mp" + string(b) + strconv.FormatInt(time.Now().UnixNano()%1000, 10)
}
