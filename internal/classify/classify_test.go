package classify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/linkprune/linkprune/internal/diag"
	"github.com/linkprune/linkprune/internal/probe"
)

func TestClassifyPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome probe.Outcome
		want    Decision
	}{
		{"absent keeps", probe.Absent(), Keep},
		{"tls error keeps", probe.Errored(probe.ErrorTLS, "handshake failure"), Keep},
		{"file not found drops", probe.Errored(probe.ErrorFileNotFound, "/tmp/x"), Drop},
		{"dns error drops", probe.Errored(probe.ErrorDNS, "no such host"), Drop},
		{"timeout drops", probe.Errored(probe.ErrorTimeout, "deadline exceeded"), Drop},
		{"200 keeps", probe.Respond(200), Keep},
		{"204 keeps", probe.Respond(204), Keep},
		{"301 keeps", probe.Respond(301), Keep},
		{"399 keeps", probe.Respond(399), Keep},
		{"400 drops", probe.Respond(400), Drop},
		{"401 keeps", probe.Respond(401), Keep},
		{"403 keeps", probe.Respond(403), Keep},
		{"404 drops", probe.Respond(404), Drop},
		{"410 drops", probe.Respond(410), Drop},
		{"500 drops", probe.Respond(500), Drop},
		{"503 keeps", probe.Respond(503), Keep},
		{"199 drops", probe.Respond(199), Drop},
	}

	policy := NewPolicy()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := policy.Classify("https://example.test/", tt.outcome); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.outcome, got, tt.want)
			}
		})
	}
}

func TestClassifyExtraKeepStatuses(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(WithExtraKeepStatuses([]int{429, 451}))

	if got := policy.Classify("u", probe.Respond(429)); got != Keep {
		t.Errorf("configured 429 should keep, got %v", got)
	}
	if got := policy.Classify("u", probe.Respond(451)); got != Keep {
		t.Errorf("configured 451 should keep, got %v", got)
	}
	// Built-ins are untouched.
	if got := policy.Classify("u", probe.Respond(404)); got != Drop {
		t.Errorf("404 must still drop, got %v", got)
	}
	if got := policy.Classify("u", probe.Respond(503)); got != Keep {
		t.Errorf("503 must still keep, got %v", got)
	}
}

func TestClassifyDiagnostics(t *testing.T) {
	t.Parallel()

	t.Run("tls keep logs ignore-error", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		policy := NewPolicy(WithDiag(diag.New(&buf)))
		policy.Classify("https://bad-cert.test/", probe.Errored(probe.ErrorTLS, "x509: unknown authority"))

		want := "IGNORE-ERROR TLSError https://bad-cert.test/ x509: unknown authority\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("error drop logs error", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		policy := NewPolicy(WithDiag(diag.New(&buf)))
		policy.Classify("file:///tmp/missing", probe.Errored(probe.ErrorFileNotFound, "/tmp/missing"))

		want := "ERROR FileNotFound file:///tmp/missing /tmp/missing\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("status drop logs status", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		policy := NewPolicy(WithDiag(diag.New(&buf)))
		policy.Classify("https://gone.test/", probe.Respond(404))

		want := "STATUS 404 https://gone.test/\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("plain keeps stay silent", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		policy := NewPolicy(WithDiag(diag.New(&buf)))
		policy.Classify("https://ok.test/", probe.Respond(200))
		policy.Classify("javascript:void(0)", probe.Absent())

		if buf.Len() != 0 {
			t.Errorf("unexpected diagnostics: %q", buf.String())
		}
	})
}

func TestDecisionString(t *testing.T) {
	t.Parallel()

	if !strings.EqualFold(Keep.String(), "keep") || !strings.EqualFold(Drop.String(), "drop") {
		t.Errorf("unexpected decision strings: %q, %q", Keep, Drop)
	}
}
