package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/proxy"
)

// Default prober settings.
const (
	// DefaultUserAgent identifies requests as a common desktop browser.
	// Many sites answer bots and browsers differently; probing as a
	// browser measures what the bookmark's owner would actually see.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:96.0) Gecko/20100101 Firefox/96.0"

	// DefaultTimeout bounds a single probe. A probe that times out
	// produces an Errored outcome; it never hangs the worker pool.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodyRead caps how much of a response body is drained
	// before the connection is released.
	DefaultMaxBodyRead = 1 << 20 // 1MB
)

// Class is the scheme-based handling category of a URL, decided before
// any I/O happens.
type Class int

const (
	// ClassFile is a file:// URL, checked against the filesystem.
	ClassFile Class = iota

	// ClassPassthrough is any URL that is neither file:// nor
	// http(s)://, including malformed and relative strings. These are
	// kept without verification.
	ClassPassthrough

	// ClassFetch is an http:// or https:// URL, probed over the network.
	ClassFetch
)

// Classify determines how a URL will be probed. The scheme match is
// case-insensitive and ignores leading whitespace, but no other
// normalization is applied.
func Classify(rawURL string) Class {
	trimmed := strings.TrimSpace(rawURL)
	if len(trimmed) >= len("file://") && strings.EqualFold(trimmed[:len("file://")], "file://") {
		return ClassFile
	}
	norm := strings.ToLower(trimmed)
	if strings.HasPrefix(norm, "http:") || strings.HasPrefix(norm, "https:") {
		return ClassFetch
	}
	return ClassPassthrough
}

// filePath extracts the filesystem path from a file:// URL, preserving
// the original casing of the path portion.
func filePath(rawURL string) string {
	return strings.TrimSpace(rawURL)[len("file://"):]
}

// Prober checks single URLs for liveness. It is safe for concurrent
// use; one Prober is shared by all workers of a scheduling pass.
type Prober struct {
	client      *http.Client
	userAgent   string
	maxBodyRead int64
	timeout     time.Duration
	proxyAddr   string
}

// Option configures a Prober.
type Option func(*Prober)

// WithUserAgent overrides the User-Agent header sent on network probes.
func WithUserAgent(ua string) Option {
	return func(p *Prober) { p.userAgent = ua }
}

// WithTimeout sets the per-probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) { p.timeout = d }
}

// WithMaxBodyRead caps the number of response body bytes drained per
// probe.
func WithMaxBodyRead(n int64) Option {
	return func(p *Prober) { p.maxBodyRead = n }
}

// WithProxy routes network probes through a SOCKS5 proxy at addr
// ("host:port").
func WithProxy(addr string) Option {
	return func(p *Prober) { p.proxyAddr = addr }
}

// WithHTTPClient replaces the HTTP client entirely. Intended for tests;
// the caller is responsible for the client's TLS and redirect behavior.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Prober) { p.client = client }
}

// New creates a Prober. Unless a client is injected, the prober follows
// redirects and skips TLS certificate verification: an invalid
// certificate chain still proves the host is alive, which is the only
// question being asked here.
func New(opts ...Option) (*Prober, error) {
	p := &Prober{
		userAgent:   DefaultUserAgent,
		maxBodyRead: DefaultMaxBodyRead,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		transport := &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, //nolint:gosec // Liveness checking only; see above.
			},
			MaxIdleConns:        256,
			MaxIdleConnsPerHost: 8,
		}

		if p.proxyAddr != "" {
			dialer, err := proxy.SOCKS5("tcp", p.proxyAddr, nil, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("create SOCKS5 dialer for %s: %w", p.proxyAddr, err)
			}
			contextDialer, ok := dialer.(proxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("SOCKS5 dialer for %s does not support context dialing", p.proxyAddr)
			}
			transport.DialContext = contextDialer.DialContext
		}

		p.client = &http.Client{
			Transport: transport,
			Timeout:   p.timeout,
		}
	}

	return p, nil
}

// Probe determines the outcome for one URL. It never returns an error;
// every failure mode is folded into the Outcome.
func (p *Prober) Probe(ctx context.Context, rawURL string) Outcome {
	switch Classify(rawURL) {
	case ClassFile:
		return probeFile(filePath(rawURL))
	case ClassPassthrough:
		return Absent()
	default:
		return p.probeHTTP(ctx, rawURL)
	}
}

// probeFile checks whether a local path exists. No network involved.
func probeFile(path string) Outcome {
	if _, err := os.Stat(path); err != nil {
		return Errored(ErrorFileNotFound, path)
	}
	return Absent()
}

// probeHTTP performs the network fetch: GET with redirects followed and
// the configured User-Agent. The body is drained up to the configured
// cap so the connection can be reused.
func (p *Prober) probeHTTP(ctx context.Context, rawURL string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Errored(ErrorOther, err.Error())
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return Errored(classifyError(err), err.Error())
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort close on a drained body.

	_, _ = io.CopyN(io.Discard, resp.Body, p.maxBodyRead)
	return Respond(resp.StatusCode)
}

// classifyError maps a transport error onto an ErrorKind. The TLS
// classes matter most: the keep/drop policy treats them specially.
func classifyError(err error) ErrorKind {
	var (
		certVerifyErr  *tls.CertificateVerificationError
		recordErr      tls.RecordHeaderError
		unknownCAErr   x509.UnknownAuthorityError
		certInvalidErr x509.CertificateInvalidError
		hostnameErr    x509.HostnameError
		dnsErr         *net.DNSError
	)
	switch {
	case errors.As(err, &certVerifyErr),
		errors.As(err, &recordErr),
		errors.As(err, &unknownCAErr),
		errors.As(err, &certInvalidErr),
		errors.As(err, &hostnameErr):
		return ErrorTLS
	case errors.As(err, &dnsErr):
		return ErrorDNS
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return ErrorTimeout
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return ErrorConnection
	}

	// The TLS alert errors produced during a handshake do not all have
	// exported types; fall back to message sniffing for those.
	msg := err.Error()
	if strings.Contains(msg, "tls:") || strings.Contains(msg, "x509:") {
		return ErrorTLS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTimeout
	}
	return ErrorOther
}
