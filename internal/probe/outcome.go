package probe

import "fmt"

// OutcomeKind discriminates the three possible probe results.
type OutcomeKind int

const (
	// OutcomeAbsent means the probe has no objection to the bookmark:
	// a local path that exists, or a scheme that is not checked at all.
	OutcomeAbsent OutcomeKind = iota

	// OutcomeErrored means the probe itself failed before producing an
	// HTTP response: missing file, connection failure, TLS failure.
	OutcomeErrored

	// OutcomeResponse means a network request completed and returned a
	// status code.
	OutcomeResponse
)

// String returns the kind name for logging.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAbsent:
		return "absent"
	case OutcomeErrored:
		return "errored"
	case OutcomeResponse:
		return "response"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// ErrorKind names the failure class of an errored probe. The classifier
// only distinguishes TLS failures from everything else, but the finer
// kinds make the diagnostic stream and reports far more useful.
type ErrorKind string

const (
	// ErrorFileNotFound means a file:// path does not exist.
	ErrorFileNotFound ErrorKind = "FileNotFound"

	// ErrorTLS means the TLS handshake or certificate processing
	// failed. These are kept by policy: a broken certificate does not
	// prove the resource is gone.
	ErrorTLS ErrorKind = "TLSError"

	// ErrorDNS means name resolution failed.
	ErrorDNS ErrorKind = "DNSError"

	// ErrorTimeout means the request exceeded its deadline.
	ErrorTimeout ErrorKind = "Timeout"

	// ErrorConnection means the TCP connection was refused or reset.
	ErrorConnection ErrorKind = "ConnectionError"

	// ErrorOther covers any transport failure not matched above.
	ErrorOther ErrorKind = "Error"
)

// Outcome is the typed result of probing one URL.
type Outcome struct {
	// Kind discriminates which of the remaining fields are meaningful.
	Kind OutcomeKind

	// Status is the HTTP status code. Set only for OutcomeResponse.
	Status int

	// ErrKind classifies the failure. Set only for OutcomeErrored.
	ErrKind ErrorKind

	// ErrDetail is the failure message. Set only for OutcomeErrored.
	ErrDetail string
}

// Absent returns an outcome carrying no objection to the bookmark.
func Absent() Outcome {
	return Outcome{Kind: OutcomeAbsent}
}

// Errored returns an outcome for a failed probe.
func Errored(kind ErrorKind, detail string) Outcome {
	return Outcome{Kind: OutcomeErrored, ErrKind: kind, ErrDetail: detail}
}

// Respond returns an outcome for a completed network response.
func Respond(status int) Outcome {
	return Outcome{Kind: OutcomeResponse, Status: status}
}

// IsTLSError reports whether the outcome is a TLS-class probe failure.
func (o Outcome) IsTLSError() bool {
	return o.Kind == OutcomeErrored && o.ErrKind == ErrorTLS
}

// String renders the outcome for logs and reports.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeAbsent:
		return "absent"
	case OutcomeErrored:
		return fmt.Sprintf("%s: %s", o.ErrKind, o.ErrDetail)
	case OutcomeResponse:
		return fmt.Sprintf("status %d", o.Status)
	default:
		return o.Kind.String()
	}
}
