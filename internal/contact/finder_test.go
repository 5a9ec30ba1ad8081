package contact_test

import (
	"contactfinder/internal/contact"
	"contactfinder/pkg/domain"
	"contactfinder/pkg/fetcher"
	"contactfinder/pkg/logger"
	"contactfinder/pkg/metrics"
	"contactfinder/pkg/resolver/clearbit"
	"contactfinder/pkg/serrors"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	mockfetcher "contactfinder/pkg/fetcher/mock"
	mockresolver "contactfinder/pkg/resolver/mock"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

const acmePage = "contact us at info@acme.com or +14155551234, visit https://www.facebook.com/acmepage"

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	goleak.VerifyTestMain(m)
}

type fixture struct {
	resolver *mockresolver.MockResolver
	fetcher  *mockfetcher.MockFetcher
	reader   *sdkmetric.ManualReader
	spans    *tracetest.SpanRecorder
	finder   contact.Finder
}

func newFixture(t *testing.T, opts contact.Options) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	fx := fixture{
		resolver: mockresolver.NewMockResolver(ctrl),
		fetcher:  mockfetcher.NewMockFetcher(ctrl),
		reader:   sdkmetric.NewManualReader(),
		spans:    tracetest.NewSpanRecorder(),
	}
	opts.MeterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(fx.reader))
	opts.TracerProvider = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(fx.spans))

	f, err := contact.New(fx.resolver, fx.fetcher, opts)
	require.NoError(t, err)
	fx.finder = f

	return fx
}

func (fx fixture) lookups(t *testing.T, outcome string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, fx.reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != metrics.LookupsCounter {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value("outcome"); ok && v.AsString() == outcome {
					return dp.Value
				}
			}
		}
	}

	return 0
}

// ended returns the finished spans keyed by name.
func (fx fixture) ended(t *testing.T) map[string]sdktrace.ReadOnlySpan {
	t.Helper()

	spans := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range fx.spans.Ended() {
		spans[s.Name()] = s
	}

	return spans
}

func TestFind_AcmeScenario(t *testing.T) {
	fx := newFixture(t, contact.Options{})

	fx.resolver.EXPECT().Resolve(gomock.Any(), "Acme").Return("acme.com", nil)
	fx.fetcher.EXPECT().Fetch(gomock.Any(), "https://www.acme.com").
		Return(domain.FetchedContent{URL: "https://www.acme.com", Body: acmePage}, nil)

	b, err := fx.finder.Find(context.Background(), "Acme")
	require.NoError(t, err)
	require.Equal(t, "https://www.acme.com", b.Website)
	require.True(t, b.Emails.Equal(domain.NewStringSet("info@acme.com")))
	require.True(t, b.Phones.Equal(domain.NewStringSet("+14155551234")))
	require.True(t, b.FacebookLinks.Equal(domain.NewStringSet("https://www.facebook.com/acmepage")))
	require.Zero(t, b.InstagramLinks.Len())
	require.Zero(t, b.TwitterLinks.Len())
	require.Zero(t, b.YouTubeLinks.Len())

	require.Equal(t, int64(1), fx.lookups(t, contact.OutcomeSuccess))

	spans := fx.ended(t)
	require.Len(t, spans, 4)
	root := spans["contact.Find"]
	require.NotNil(t, root)
	require.Equal(t, codes.Unset, root.Status().Code)
	for _, name := range []string{"contact.resolving", "contact.fetching", "contact.extracting"} {
		s, ok := spans[name]
		require.True(t, ok, name)
		require.Equal(t, root.SpanContext().SpanID(), s.Parent().SpanID(), name)
	}
}

func TestFind_NotFoundSkipsFetch(t *testing.T) {
	fx := newFixture(t, contact.Options{})

	fx.resolver.EXPECT().Resolve(gomock.Any(), "Nonexistent Corp Zzz").
		Return("", serrors.With(serrors.ErrNotFound, "no domain suggested"))
	fx.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Times(0)

	b, err := fx.finder.Find(context.Background(), "Nonexistent Corp Zzz")
	require.Nil(t, b)
	require.ErrorIs(t, err, serrors.ErrNotFound)
	require.Equal(t, int64(1), fx.lookups(t, contact.OutcomeNotFound))
}

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestFind_EmptySuggestionListSkipsFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	ft := mockfetcher.NewMockFetcher(ctrl)
	ft.EXPECT().Fetch(gomock.Any(), gomock.Any()).Times(0)

	r := clearbit.New(&http.Client{Transport: rtFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader("[]")),
		}, nil
	})}, clearbit.Options{BaseURL: "https://suggest.test"})

	f, err := contact.New(r, ft, contact.Options{})
	require.NoError(t, err)

	b, err := f.Find(context.Background(), "Nonexistent Corp Zzz")
	require.Nil(t, b)
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestFind_BlankCompany(t *testing.T) {
	fx := newFixture(t, contact.Options{})
	fx.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).Times(0)
	fx.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Times(0)

	for _, company := range []string{"", "  ", "\t"} {
		b, err := fx.finder.Find(context.Background(), company)
		require.Nil(t, b)
		require.ErrorIs(t, err, serrors.ErrBadRequest)
	}
	require.Equal(t, int64(3), fx.lookups(t, contact.OutcomeInvalidInput))
}

func TestFind_ResolverFailureIsInternal(t *testing.T) {
	tests := map[string]error{
		"plain error":    errors.New("boom"),
		"internal kind":  serrors.With(serrors.ErrInternal, "malformed reply"),
		"canceled query": context.Canceled,
	}
	for name, resolveErr := range tests {
		t.Run(name, func(t *testing.T) {
			fx := newFixture(t, contact.Options{})
			fx.resolver.EXPECT().Resolve(gomock.Any(), "Acme").Return("", resolveErr)
			fx.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Times(0)

			b, err := fx.finder.Find(context.Background(), "Acme")
			require.Nil(t, b)
			require.ErrorIs(t, err, serrors.ErrInternal)
			require.NotErrorIs(t, err, serrors.ErrNotFound)
			require.Equal(t, contact.OutcomeInternal, contact.Outcome(err))
		})
	}
}

func TestFind_FetchFailureIsRetrievalFailed(t *testing.T) {
	failures := []*fetcher.Error{
		{Kind: fetcher.NonSuccessStatus, StatusCode: http.StatusServiceUnavailable, URL: "https://www.acme.com"},
		{Kind: fetcher.Unreachable, URL: "https://www.acme.com", Err: errors.New("connection refused")},
		{Kind: fetcher.Timeout, URL: "https://www.acme.com", Err: context.DeadlineExceeded},
	}
	for _, fe := range failures {
		t.Run(string(fe.Kind), func(t *testing.T) {
			fx := newFixture(t, contact.Options{})
			fx.resolver.EXPECT().Resolve(gomock.Any(), "Acme").Return("acme.com", nil)
			fx.fetcher.EXPECT().Fetch(gomock.Any(), "https://www.acme.com").Return(domain.FetchedContent{}, fe)

			b, err := fx.finder.Find(context.Background(), "Acme")
			require.Nil(t, b)
			require.ErrorIs(t, err, serrors.ErrRetrievalFailed)

			var got *fetcher.Error
			require.ErrorAs(t, err, &got)
			require.Equal(t, fe.Kind, got.Kind)
			require.Equal(t, int64(1), fx.lookups(t, contact.OutcomeRetrievalFailed))
		})
	}
}

func TestFind_RetrievalFailedMarksSpans(t *testing.T) {
	fx := newFixture(t, contact.Options{})
	fx.resolver.EXPECT().Resolve(gomock.Any(), "Acme").Return("acme.com", nil)
	fx.fetcher.EXPECT().Fetch(gomock.Any(), "https://www.acme.com").
		Return(domain.FetchedContent{}, &fetcher.Error{Kind: fetcher.NonSuccessStatus, StatusCode: 503, URL: "https://www.acme.com"})

	_, err := fx.finder.Find(context.Background(), "Acme")
	require.ErrorIs(t, err, serrors.ErrRetrievalFailed)

	spans := fx.ended(t)
	require.Len(t, spans, 3)
	require.NotContains(t, spans, "contact.extracting")

	root := spans["contact.Find"]
	require.NotNil(t, root)
	require.Equal(t, codes.Error, root.Status().Code)
	require.Equal(t, contact.OutcomeRetrievalFailed, root.Status().Description)

	fetching := spans["contact.fetching"]
	require.NotNil(t, fetching)
	require.Equal(t, codes.Error, fetching.Status().Code)
	require.NotEmpty(t, fetching.Events())
	require.Equal(t, root.SpanContext().SpanID(), fetching.Parent().SpanID())

	require.Equal(t, codes.Unset, spans["contact.resolving"].Status().Code)
}

func TestFind_RetriesTransientFetchFailures(t *testing.T) {
	fx := newFixture(t, contact.Options{FetchAttempts: 3, FetchRetryDelay: time.Millisecond})
	fx.resolver.EXPECT().Resolve(gomock.Any(), "Acme").Return("acme.com", nil)
	gomock.InOrder(
		fx.fetcher.EXPECT().Fetch(gomock.Any(), "https://www.acme.com").
			Return(domain.FetchedContent{}, &fetcher.Error{Kind: fetcher.Unreachable, URL: "https://www.acme.com"}),
		fx.fetcher.EXPECT().Fetch(gomock.Any(), "https://www.acme.com").
			Return(domain.FetchedContent{}, &fetcher.Error{Kind: fetcher.Timeout, URL: "https://www.acme.com"}),
		fx.fetcher.EXPECT().Fetch(gomock.Any(), "https://www.acme.com").
			Return(domain.FetchedContent{URL: "https://www.acme.com", Body: acmePage}, nil),
	)

	b, err := fx.finder.Find(context.Background(), "Acme")
	require.NoError(t, err)
	require.True(t, b.Emails.Has("info@acme.com"))
}

func TestFind_DoesNotRetryStatusFailures(t *testing.T) {
	fx := newFixture(t, contact.Options{FetchAttempts: 3, FetchRetryDelay: time.Millisecond})
	fx.resolver.EXPECT().Resolve(gomock.Any(), "Acme").Return("acme.com", nil)
	fx.fetcher.EXPECT().Fetch(gomock.Any(), "https://www.acme.com").Times(1).
		Return(domain.FetchedContent{}, &fetcher.Error{Kind: fetcher.NonSuccessStatus, StatusCode: 503})

	_, err := fx.finder.Find(context.Background(), "Acme")
	require.ErrorIs(t, err, serrors.ErrRetrievalFailed)
}

func TestFind_GivesUpAfterFetchAttempts(t *testing.T) {
	fx := newFixture(t, contact.Options{FetchAttempts: 2, FetchRetryDelay: time.Millisecond})
	fx.resolver.EXPECT().Resolve(gomock.Any(), "Acme").Return("acme.com", nil)
	fx.fetcher.EXPECT().Fetch(gomock.Any(), "https://www.acme.com").Times(2).
		Return(domain.FetchedContent{}, &fetcher.Error{Kind: fetcher.Timeout, URL: "https://www.acme.com"})

	_, err := fx.finder.Find(context.Background(), "Acme")
	require.ErrorIs(t, err, serrors.ErrRetrievalFailed)

	var fe *fetcher.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, fetcher.Timeout, fe.Kind)
}

func TestOutcome(t *testing.T) {
	require.Equal(t, contact.OutcomeSuccess, contact.Outcome(nil))
	require.Equal(t, contact.OutcomeInvalidInput, contact.Outcome(serrors.KindOnly(serrors.ErrBadRequest)))
	require.Equal(t, contact.OutcomeNotFound, contact.Outcome(serrors.KindOnly(serrors.ErrNotFound)))
	require.Equal(t, contact.OutcomeRetrievalFailed, contact.Outcome(serrors.KindOnly(serrors.ErrRetrievalFailed)))
	require.Equal(t, contact.OutcomeInternal, contact.Outcome(errors.New("boom")))
}

func TestWebsite(t *testing.T) {
	require.Equal(t, "https://www.acme.com", contact.Website("acme.com"))
}
