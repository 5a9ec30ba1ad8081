// Package contact sequences a lookup: resolve the company to a domain, fetch
// its homepage, extract the contact signals and assemble the bundle.
package contact

import (
	"contactfinder/internal/config"
	"contactfinder/pkg/domain"
	"contactfinder/pkg/extractor"
	"contactfinder/pkg/fetcher"
	"contactfinder/pkg/logger"
	"contactfinder/pkg/metrics"
	"contactfinder/pkg/resolver"
	"contactfinder/pkg/serrors"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "contactfinder/internal/contact"

// State is a step of the lookup state machine.
type State string

const (
	StateStart      State = "start"
	StateResolving  State = "resolving"
	StateFetching   State = "fetching"
	StateExtracting State = "extracting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Lookup outcomes as recorded on the lookups counter.
const (
	OutcomeSuccess         = "success"
	OutcomeInvalidInput    = "invalid_input"
	OutcomeNotFound        = "not_found"
	OutcomeRetrievalFailed = "retrieval_failed"
	OutcomeInternal        = "internal"
)

// Options configure the pipeline. The zero value fetches once and reports to
// the global otel providers.
type Options struct {
	// FetchAttempts is the number of fetch tries, the first one included.
	// Only unreachable and timed out fetches are repeated.
	FetchAttempts uint
	// FetchRetryDelay is the base delay between fetch tries.
	FetchRetryDelay time.Duration

	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		FetchAttempts:   cfg.Pipeline.FetchAttempts,
		FetchRetryDelay: cfg.Pipeline.FetchRetryDelay,
	}
}

type finder struct {
	options  Options
	resolver resolver.Resolver
	fetcher  fetcher.Fetcher

	tracer        trace.Tracer
	lookups       metric.Int64Counter
	stageDuration metric.Float64Histogram
}

// New creates a Finder on top of the given resolver and fetcher.
func New(r resolver.Resolver, f fetcher.Fetcher, options Options) (Finder, error) {
	if options.FetchAttempts == 0 {
		options.FetchAttempts = 1
	}
	if options.MeterProvider == nil {
		options.MeterProvider = otel.GetMeterProvider()
	}
	if options.TracerProvider == nil {
		options.TracerProvider = otel.GetTracerProvider()
	}

	meter := options.MeterProvider.Meter(instrumentationName)
	lookups, err := meter.Int64Counter(metrics.LookupsCounter,
		metric.WithDescription("Contact lookups by outcome."))
	if err != nil {
		return nil, fmt.Errorf("could not create lookups counter: %w", err)
	}
	stageDuration, err := meter.Float64Histogram(metrics.StageDurationHisto,
		metric.WithDescription("Duration of each lookup stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(metrics.DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create stage duration histogram: %w", err)
	}

	return &finder{
		options:       options,
		resolver:      r,
		fetcher:       f,
		tracer:        options.TracerProvider.Tracer(instrumentationName),
		lookups:       lookups,
		stageDuration: stageDuration,
	}, nil
}

// Find implements Finder.
func (f *finder) Find(ctx context.Context, company string) (*domain.ContactBundle, error) {
	q := domain.CompanyQuery(company)
	ctx = logger.WithFields(ctx, zap.String("company", q.Normalized()))
	ctx, span := f.tracer.Start(ctx, "contact.Find")
	defer span.End()

	bundle, err := f.run(ctx, q)

	outcome := Outcome(err)
	f.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		logger.Info(ctx, "contact lookup failed", zap.String("outcome", outcome), zap.Error(err))

		return nil, err
	}
	logger.Info(ctx, "contact lookup finished",
		zap.String("website", bundle.Website),
		zap.Int("phones", bundle.Phones.Len()),
		zap.Int("emails", bundle.Emails.Len()))

	return bundle, nil
}

func (f *finder) run(ctx context.Context, q domain.CompanyQuery) (*domain.ContactBundle, error) {
	enter(ctx, StateStart)
	if q.IsBlank() {
		enter(ctx, StateFailed)

		return nil, serrors.With(serrors.ErrBadRequest, "company name is required")
	}

	enter(ctx, StateResolving)
	d, err := f.resolve(ctx, string(q))
	if err != nil {
		enter(ctx, StateFailed)

		return nil, err
	}

	website := Website(d)
	ctx = logger.WithFields(ctx, zap.String("domain", d), zap.String("url", website))

	enter(ctx, StateFetching)
	content, err := f.fetch(ctx, website)
	if err != nil {
		enter(ctx, StateFailed)

		return nil, err
	}

	enter(ctx, StateExtracting)
	_, end := f.stage(ctx, StateExtracting)
	bundle := extractor.Extract(content.Body).Bundle(website)
	end(nil)

	enter(ctx, StateDone)

	return bundle, nil
}

func (f *finder) resolve(ctx context.Context, company string) (string, error) {
	stageCtx, end := f.stage(ctx, StateResolving)
	d, err := f.resolver.Resolve(stageCtx, company)
	end(err)

	switch {
	case err == nil:
		return d, nil
	case errors.Is(err, serrors.ErrNotFound), errors.Is(err, serrors.ErrBadRequest):
		return "", err
	default:
		return "", serrors.Wrap(serrors.ErrInternal, err, "could not resolve domain")
	}
}

func (f *finder) fetch(ctx context.Context, website string) (domain.FetchedContent, error) {
	stageCtx, end := f.stage(ctx, StateFetching)
	content, err := f.fetchWithRetry(stageCtx, website)
	end(err)

	if err != nil {
		logger.Warn(ctx, "could not fetch website", zap.Error(err))

		return domain.FetchedContent{}, serrors.Wrap(serrors.ErrRetrievalFailed, err, "could not retrieve %s", website)
	}

	return content, nil
}

func (f *finder) fetchWithRetry(ctx context.Context, website string) (domain.FetchedContent, error) {
	if f.options.FetchAttempts <= 1 {
		return f.fetcher.Fetch(ctx, website)
	}

	var lastErr error
	content, err := retry.DoWithData(
		func() (domain.FetchedContent, error) {
			c, err := f.fetcher.Fetch(ctx, website)
			lastErr = err

			return c, err
		},
		retry.Context(ctx),
		retry.Attempts(f.options.FetchAttempts),
		retry.Delay(f.options.FetchRetryDelay),
		retry.MaxJitter(jitter(f.options.FetchRetryDelay)),
		retry.RetryIf(retryableFetch),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug(ctx, "retrying fetch", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		if lastErr != nil {
			return domain.FetchedContent{}, lastErr
		}

		return domain.FetchedContent{}, err
	}

	return content, nil
}

// stage opens a span for s. The returned function ends the span and records
// the stage duration.
func (f *finder) stage(ctx context.Context, s State) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := f.tracer.Start(ctx, "contact."+string(s))

	return ctx, func(err error) {
		f.stageDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("stage", string(s))))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func enter(ctx context.Context, s State) {
	logger.Debug(ctx, "lookup state", zap.String("state", string(s)))
}

func retryableFetch(err error) bool {
	var fe *fetcher.Error

	return errors.As(err, &fe) && fe.Retryable()
}

func jitter(delay time.Duration) time.Duration {
	if j := delay / 2; j > 0 {
		return j
	}

	return time.Millisecond
}

// Website returns the canonical homepage URL for a resolved domain.
func Website(d string) string {
	return "https://www." + d
}

// Outcome maps a lookup error to its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, serrors.ErrBadRequest):
		return OutcomeInvalidInput
	case errors.Is(err, serrors.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, serrors.ErrRetrievalFailed):
		return OutcomeRetrievalFailed
	default:
		return OutcomeInternal
	}
}
