package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"finder/pkg/metrics"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const maxDiagnosticLen = 100

var errTooManyRedirects = errors.New("too many redirects")

// Deps holds the collaborators of a checker. Every field is optional.
type Deps struct {
	// Transport performs the HTTP exchanges. Defaults to a dedicated *http.Transport.
	Transport http.RoundTripper
	// Metrics receives probe observations.
	Metrics *metrics.Checker
}

// checker is the concrete implementation of the Checker interface.
type checker struct {
	options Options
	client  *http.Client
	domains DomainClassifier
	content ContentAnalyzer
	metrics *metrics.Checker
}

// New creates a Checker configured with the given options.
func New(options Options, deps Deps) (Checker, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	transport := deps.Transport
	if transport == nil {
		transport = newTransport(options)
	}

	domains := NewDomainClassifier(options.SkipDomains, options.ParkingDomains)

	return &checker{
		options: options,
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= options.MaxRedirects {
					return errTooManyRedirects
				}

				return nil
			},
		},
		domains: domains,
		content: NewContentAnalyzer(options.ParkingPhrases, options.ConstructionPhrases,
			options.ShortBodyThreshold, domains),
		metrics: deps.Metrics,
	}, nil
}

func newTransport(options Options) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   options.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   options.Timeout,
		ResponseHeaderTimeout: options.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          options.ConcurrencyLimit,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}

// attemptResult is the outcome of one attempt: either a definite result or
// an error that could not be classified.
type attemptResult struct {
	result domain.CheckResult
	err    error
}

// Check probes a single website. Dead or broken websites are reported through
// the result status, the returned error is non-nil only when ctx ends before
// the probe resolves, in which case no result is produced.
func (c *checker) Check(ctx context.Context, rawURL string) (domain.CheckResult, error) {
	u := NormalizeURL(rawURL)
	if u == "" {
		return domain.CheckResult{
			Status:    domain.StatusNoWebsite,
			Reason:    "Empty URL",
			CheckedAt: time.Now().UTC(),
		}, nil
	}

	ctx = logger.WithFields(ctx, zap.String("url", u))
	c.metrics.ProbeStarted()
	defer c.metrics.ProbeFinished()

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= c.options.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.options.RetryBackoff*time.Duration(attempt)); err != nil {
				return domain.CheckResult{}, fmt.Errorf("probe of %s abandoned: %w", u, err)
			}
		}

		res := c.attempt(ctx, u)
		if err := ctx.Err(); err != nil {
			return domain.CheckResult{}, fmt.Errorf("probe of %s abandoned: %w", u, err)
		}
		if res.err == nil {
			return c.finish(ctx, res.result, start), nil
		}

		lastErr = res.err
		logger.Debug(ctx, "probe attempt failed", zap.Int("attempt", attempt+1), zap.Error(res.err))
	}

	return c.finish(ctx, domain.CheckResult{
		URL:    u,
		Status: domain.StatusUnknown,
		Reason: fmt.Sprintf("Unexpected error after %d attempts: %s", c.options.MaxRetries+1, diagnostic(lastErr)),
	}, start), nil
}

func (c *checker) finish(ctx context.Context, res domain.CheckResult, start time.Time) domain.CheckResult {
	elapsed := time.Since(start)
	res.ResponseTimeMS = float64(elapsed.Microseconds()) / 1000
	res.CheckedAt = time.Now().UTC()

	c.metrics.ObserveProbe(string(res.Status), elapsed.Seconds())
	logger.Debug(ctx, "probe resolved",
		zap.String("status", string(res.Status)),
		zap.Int("statusCode", res.StatusCode),
		zap.Duration("elapsed", elapsed))

	return res
}

// attempt runs the HEAD then GET exchange once and classifies what it observed.
func (c *checker) attempt(ctx context.Context, u string) attemptResult {
	resp, err := c.do(ctx, http.MethodHead, u)
	if err == nil && resp.StatusCode >= http.StatusBadRequest {
		// some servers reject HEAD, ask again for the full page
		closeBody(resp)
		resp, err = c.do(ctx, http.MethodGet, u)
	}
	if err != nil {
		return c.classifyError(u, err)
	}
	defer closeBody(resp)

	finalURL := u
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	res := domain.CheckResult{
		URL:        u,
		StatusCode: resp.StatusCode,
		FinalURL:   finalURL,
	}

	switch {
	case c.domains.IsParking(finalURL):
		res.Status = domain.StatusRedirectParking
		res.Reason = "Redirected to parking domain: " + Host(finalURL)
	case resp.StatusCode >= http.StatusInternalServerError:
		res.Status = domain.StatusHTTPError5xx
		res.Reason = fmt.Sprintf("Server error: HTTP %d", resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		res.Status = domain.StatusHTTPError4xx
		res.Reason = fmt.Sprintf("Client error: HTTP %d", resp.StatusCode)
	default:
		res.Status = domain.StatusOK
		res.Reason = "Website is accessible"
		if c.options.CheckContent && resp.StatusCode < http.StatusMultipleChoices {
			if v, ok := c.inspectContent(ctx, resp, finalURL); ok {
				res.Status = v.Status
				res.Reason = v.Reason
			}
		}
	}

	return attemptResult{result: res}
}

// inspectContent runs the content heuristics. Any failure to obtain the page
// leaves the structural classification untouched.
func (c *checker) inspectContent(ctx context.Context, resp *http.Response, finalURL string) (Verdict, bool) {
	if resp.Request != nil && resp.Request.Method == http.MethodHead {
		pageResp, err := c.do(ctx, http.MethodGet, finalURL)
		if err != nil {
			logger.Debug(ctx, "could not fetch page content", zap.Error(err))

			return Verdict{}, false
		}
		defer closeBody(pageResp)
		resp = pageResp
	}

	page, err := readPage(resp, c.options.MaxBodyBytes)
	if err != nil {
		logger.Debug(ctx, "could not read page content", zap.Error(err))

		return Verdict{}, false
	}

	return c.content.Analyze(page)
}

// do issues one request bounded by the per-request timeout. The timeout
// context is released when the response body is closed.
func (c *checker) do(ctx context.Context, method, u string) (*http.Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.options.Timeout)

	req, err := http.NewRequestWithContext(reqCtx, method, u, nil)
	if err != nil {
		cancel()

		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("User-Agent", c.options.UserAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", c.options.AcceptLanguage)

	resp, err := c.client.Do(req)
	if err != nil {
		cancel()
		if resp != nil {
			closeBody(resp)
		}

		return nil, err //nolint: wrapcheck
	}
	resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}

	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()

	return err
}

func closeBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

// classifyError maps a transport failure to a status. Failures that are not
// deterministic properties of the target are returned as errors to retry.
func (c *checker) classifyError(u string, err error) attemptResult {
	res := domain.CheckResult{URL: u}

	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, errTooManyRedirects):
		res.Status = domain.StatusRedirectParking
		res.Reason = "Too many redirects (possible redirect loop or parking)"
	case errors.As(err, &dnsErr) && dnsErr.Timeout():
		res.Status = domain.StatusTimeout
		res.Reason = c.timeoutReason()
	case errors.As(err, &dnsErr):
		res.Status = domain.StatusNoDNS
		res.Reason = "DNS resolution failed: " + diagnostic(err)
	case isCertificateError(err):
		res.Status = domain.StatusSSLError
		res.Reason = "SSL/TLS error: " + diagnostic(err)
	case isTimeout(err):
		res.Status = domain.StatusTimeout
		res.Reason = c.timeoutReason()
	case isTLSMessage(err):
		res.Status = domain.StatusSSLError
		res.Reason = "SSL/TLS error: " + diagnostic(err)
	case isConnectionError(err):
		res.Status = domain.StatusConnectionError
		res.Reason = "Connection error: " + diagnostic(err)
	default:
		return attemptResult{err: err}
	}

	return attemptResult{result: res}
}

func (c *checker) timeoutReason() string {
	return fmt.Sprintf("Request timed out after %g seconds", c.options.Timeout.Seconds())
}

func isCertificateError(err error) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostname         x509.HostnameError
		invalid          x509.CertificateInvalidError
		verification     *tls.CertificateVerificationError
		recordHeader     tls.RecordHeaderError
		alert            tls.AlertError
	)

	return errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostname) ||
		errors.As(err, &invalid) ||
		errors.As(err, &verification) ||
		errors.As(err, &recordHeader) ||
		errors.As(err, &alert)
}

func isTLSMessage(err error) bool {
	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "tls:") || strings.Contains(msg, "x509:") || strings.Contains(msg, "certificate")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionError(err error) bool {
	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ECONNABORTED,
		syscall.EHOSTUNREACH,
		syscall.ENETUNREACH,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	var opErr *net.OpError

	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// diagnostic returns a short message for err, dropping the request line that
// *url.Error prepends.
func diagnostic(err error) string {
	if err == nil {
		return "unknown error"
	}

	msg := err.Error()
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		msg = urlErr.Err.Error()
	}

	if r := []rune(msg); len(r) > maxDiagnosticLen {
		msg = string(r[:maxDiagnosticLen])
	}

	return msg
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
