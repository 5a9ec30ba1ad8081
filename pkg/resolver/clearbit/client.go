// Package clearbit provides a resolver.Resolver backed by the Clearbit
// company autocomplete API.
package clearbit

import (
	"contactfinder/pkg/domain"
	"contactfinder/pkg/logger"
	"contactfinder/pkg/resolver"
	"contactfinder/pkg/serrors"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/go-faster/jx"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// DefaultBaseURL is the public autocomplete endpoint host.
const DefaultBaseURL = "https://autocomplete.clearbit.com"

const suggestPath = "/v1/companies/suggest"

// Options configures a Client. Zero values fall back to sane defaults.
type Options struct {
	BaseURL     string
	MaxAttempts uint
	RetryDelay  time.Duration
	MaxJitter   time.Duration
	UserAgent   string
}

// Client queries the autocomplete API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	opts       Options
}

// statusError is a non-2xx provider reply.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("suggestion provider replied %d: %s", e.StatusCode, e.Body)
}

// New constructs a Client on top of httpClient. The client's Timeout bounds
// every single attempt.
func New(httpClient *http.Client, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 1
	}
	// the random jitter source rejects a zero bound
	if opts.MaxJitter <= 0 {
		opts.MaxJitter = time.Millisecond
	}

	return &Client{httpClient: httpClient, opts: opts}
}

// Suggest returns the provider candidates for company in relevance order.
// An empty slice is a valid answer.
func (c *Client) Suggest(ctx context.Context, company string) ([]resolver.Candidate, error) {
	if domain.CompanyQuery(company).IsBlank() {
		return nil, serrors.With(serrors.ErrBadRequest, "company name is blank")
	}

	var lastErr error
	body, err := retry.DoWithData(
		func() ([]byte, error) {
			b, err := c.query(ctx, company)
			lastErr = err

			return b, err
		},
		retry.Context(ctx),
		retry.Attempts(c.opts.MaxAttempts),
		retry.Delay(c.opts.RetryDelay),
		retry.MaxJitter(c.opts.MaxJitter),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug(ctx, "retrying suggestion request",
				zap.Uint("attempt", n+1),
				zap.String("company", company),
				zap.Error(err))
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("could not query suggestions: %w", ctxErr)
		}
		if lastErr == nil {
			lastErr = err
		}
		if isTransient(lastErr) {
			return nil, serrors.Wrap(serrors.ErrNotFound, lastErr, "suggestion provider unreachable")
		}

		return nil, serrors.Wrap(serrors.ErrInternal, lastErr, "suggestion request failed")
	}

	candidates, err := DecodeCandidates(body)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrInternal, err, "could not decode suggestions")
	}

	return candidates, nil
}

// Resolve returns the domain of the top-ranked candidate.
func (c *Client) Resolve(ctx context.Context, company string) (string, error) {
	candidates, err := c.Suggest(ctx, company)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", serrors.With(serrors.ErrNotFound, "no domain suggested for %q", company)
	}

	d, err := ValidateDomain(candidates[0].Domain)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrInternal, err, "top suggestion for %q is unusable", company)
	}

	return d, nil
}

func (c *Client) query(ctx context.Context, company string) ([]byte, error) {
	endpoint := c.opts.BaseURL + suggestPath + "?query=" + url.QueryEscape(company)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	return b, nil
}

// isTransient reports whether a failed attempt is worth repeating: transport
// failures, 429 and 5xx replies.
func isTransient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= http.StatusInternalServerError
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	return err != nil
}

// DecodeCandidates parses a provider reply, which must be a JSON array of
// objects. Unknown fields are ignored and non-string values of known fields
// decode as empty strings.
func DecodeCandidates(b []byte) ([]resolver.Candidate, error) {
	d := jx.DecodeBytes(b)
	if d.Next() != jx.Array {
		return nil, errors.New("reply is not a JSON array")
	}

	out := []resolver.Candidate{}
	err := d.Arr(func(d *jx.Decoder) error {
		if d.Next() != jx.Object {
			return errors.New("suggestion is not a JSON object")
		}

		var cand resolver.Candidate
		if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			var dst *string
			switch string(key) {
			case "name":
				dst = &cand.Name
			case "domain":
				dst = &cand.Domain
			case "logo":
				dst = &cand.Logo
			default:
				return d.Skip()
			}
			if d.Next() != jx.String {
				return d.Skip()
			}
			v, err := d.Str()
			if err != nil {
				return err
			}
			*dst = v

			return nil
		}); err != nil {
			return err
		}
		out = append(out, cand)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ValidateDomain checks that raw is a registrable host name and returns it
// lower-cased without a trailing dot.
func ValidateDomain(raw string) (string, error) {
	d := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), ".")
	if d == "" {
		return "", errors.New("domain is empty")
	}
	if strings.ContainsAny(d, "/:@?# ") {
		return "", fmt.Errorf("domain %q is not a host name", raw)
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(d); err != nil {
		return "", fmt.Errorf("domain %q is not registrable: %w", raw, err)
	}

	return d, nil
}

var _ resolver.Resolver = (*Client)(nil)
