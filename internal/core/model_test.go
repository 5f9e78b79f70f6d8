package core

import (
	"errors"
	"testing"
)

func TestRecordErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  *ValidationRecord
		want error
	}{
		{
			name: "syntax failure",
			rec:  &ValidationRecord{Syntax: &SyntaxResult{Outcome: OutcomeFailed}},
			want: ErrSyntaxInvalid,
		},
		{
			name: "unresolvable domain",
			rec: &ValidationRecord{
				Syntax: passedSyntax(),
				DNS:    &DNSResult{Outcome: OutcomeFailed},
			},
			want: ErrDomainUnresolvable,
		},
		{
			name: "dns inconclusive",
			rec: &ValidationRecord{
				Syntax: passedSyntax(),
				DNS:    &DNSResult{Outcome: OutcomeInconclusive},
			},
			want: ErrDNSInconclusive,
		},
		{
			name: "mailbox rejected",
			rec: &ValidationRecord{
				Syntax: passedSyntax(),
				DNS:    passedDNS(),
				SMTP:   &SMTPResult{Outcome: OutcomeFailed},
			},
			want: ErrSMTPRejected,
		},
		{
			name: "smtp transient",
			rec: &ValidationRecord{
				Syntax: passedSyntax(),
				DNS:    passedDNS(),
				SMTP:   &SMTPResult{Outcome: OutcomeInconclusive},
			},
			want: ErrSMTPTransient,
		},
		{
			name: "accepted",
			rec: &ValidationRecord{
				Syntax: passedSyntax(),
				DNS:    passedDNS(),
				SMTP:   &SMTPResult{Outcome: OutcomePassed, Accepted: true},
			},
			want: nil,
		},
		{
			name: "probe skipped",
			rec: &ValidationRecord{
				Syntax: passedSyntax(),
				DNS:    passedDNS(),
				SMTP:   &SMTPResult{Outcome: OutcomeSkipped},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.rec.Err(); !errors.Is(got, tt.want) {
				t.Errorf("Err() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddressString(t *testing.T) {
	t.Parallel()

	addr := Address{Raw: "User@Example.COM", LocalPart: "User", Domain: "example.com"}
	if got := addr.String(); got != "User@example.com" {
		t.Errorf("String() = %q, want %q", got, "User@example.com")
	}

	// An unparseable input keeps its raw form.
	raw := Address{Raw: "not-an-email"}
	if got := raw.String(); got != "not-an-email" {
		t.Errorf("String() = %q, want raw input", got)
	}
}
