// Package classify turns probe outcomes into keep/drop decisions.
//
// The policy is pure with respect to the tree: it sees one outcome at a
// time and decides whether that bookmark stays. Its only side effect is
// a diagnostic line explaining each drop (and each deliberately ignored
// error).
package classify

import (
	"github.com/linkprune/linkprune/internal/diag"
	"github.com/linkprune/linkprune/internal/probe"
)

// Decision is the result of classifying one outcome.
type Decision int

const (
	// Keep retains the bookmark in the filtered tree.
	Keep Decision = iota

	// Drop removes the bookmark from the filtered tree.
	Drop
)

// String returns the decision name.
func (d Decision) String() string {
	if d == Keep {
		return "keep"
	}
	return "drop"
}

// Policy decides which probe outcomes keep a bookmark alive.
//
// The built-in rules never change: 2xx/3xx responses are kept, as are
// 503 (possibly transient), 401 and 403 (possibly fine behind a login
// the checker does not have), and TLS failures (a broken certificate
// does not prove the resource is gone). A policy file can only add keep
// statuses on top of these.
type Policy struct {
	extraKeep map[int]bool
	diag      *diag.Logger
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithExtraKeepStatuses adds status codes to keep beyond the built-in
// set.
func WithExtraKeepStatuses(codes []int) PolicyOption {
	return func(p *Policy) {
		for _, code := range codes {
			p.extraKeep[code] = true
		}
	}
}

// WithDiag sets the diagnostic stream for classification lines.
func WithDiag(d *diag.Logger) PolicyOption {
	return func(p *Policy) { p.diag = d }
}

// NewPolicy creates a Policy with the built-in rules.
func NewPolicy(opts ...PolicyOption) *Policy {
	p := &Policy{
		extraKeep: make(map[int]bool),
		diag:      diag.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Classify decides whether the bookmark at rawURL survives, given its
// probe outcome. Drops and ignored errors each emit one diagnostic
// line; plain keeps stay silent because the submission-time line
// already covered them.
func (p *Policy) Classify(rawURL string, outcome probe.Outcome) Decision {
	switch outcome.Kind {
	case probe.OutcomeAbsent:
		return Keep

	case probe.OutcomeErrored:
		if outcome.IsTLSError() {
			p.diag.IgnoreError(string(outcome.ErrKind), rawURL, outcome.ErrDetail)
			return Keep
		}
		p.diag.Error(string(outcome.ErrKind), rawURL, outcome.ErrDetail)
		return Drop

	default:
		if p.keepStatus(outcome.Status) {
			return Keep
		}
		p.diag.Status(outcome.Status, rawURL)
		return Drop
	}
}

// keepStatus reports whether a status code keeps the bookmark.
func (p *Policy) keepStatus(code int) bool {
	if code >= 200 && code < 400 {
		return true
	}
	switch code {
	case 503, 401, 403:
		return true
	}
	return p.extraKeep[code]
}
