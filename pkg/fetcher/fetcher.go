package fetcher

import (
	"contactfinder/pkg/domain"
	"contactfinder/pkg/logger"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// UserAgent is the browser User-Agent sent when none is configured.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:146.0) Gecko/20100101 Firefox/146.0"

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxRedirects = 5
	defaultMaxBodyBytes = 5 << 20
)

var errTooManyRedirects = errors.New("too many redirects")

// Options configures an HTTPFetcher. Zero values select the defaults.
type Options struct {
	Timeout            time.Duration
	MaxRedirects       int
	MaxBodyBytes       int64
	UserAgent          string
	InsecureSkipVerify bool
}

// HTTPFetcher is the net/http backed Fetcher. It is safe for concurrent use.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// New builds an HTTPFetcher with its own transport.
func New(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = defaultMaxRedirects
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}

	transport, _ := http.DefaultTransport.(*http.Transport)
	transport = transport.Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint: gosec
	}

	maxRedirects := opts.MaxRedirects
	client := &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return errTooManyRedirects
			}

			return nil
		},
	}

	return &HTTPFetcher{client: client, userAgent: opts.UserAgent, maxBodyBytes: opts.MaxBodyBytes}
}

// Fetch performs one GET of url and returns its body when the final status
// is 2xx. Bodies longer than the configured cap are truncated to the cap and
// a warning is logged.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (domain.FetchedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.FetchedContent{}, &Error{Kind: Unreachable, URL: url, Err: fmt.Errorf("could not create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.FetchedContent{}, classify(url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.FetchedContent{}, &Error{Kind: NonSuccessStatus, StatusCode: resp.StatusCode, URL: url}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return domain.FetchedContent{}, classify(url, fmt.Errorf("could not read response body: %w", err))
	}
	if int64(len(b)) > f.maxBodyBytes {
		b = b[:f.maxBodyBytes]
		logger.Warn(ctx, "response body truncated", zap.String("url", url), zap.Int64("max_body_bytes", f.maxBodyBytes))
	}

	final := url
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}

	return domain.FetchedContent{URL: final, Body: string(b)}, nil
}

var _ Fetcher = (*HTTPFetcher)(nil)
