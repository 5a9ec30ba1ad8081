// Package api configures and exposes the HTTP server, routes, metrics, docs
// and related middleware for the contact finder service.
package api

import (
	"contactfinder/internal/api/handler/v1handler"
	"contactfinder/internal/config"
	"contactfinder/pkg/controller"
	"contactfinder/pkg/logger"
	"context"
	_ "embed"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

const timeoutBody = `{"code":"TIMEOUT","message":"request timed out"}`

// Options holds configuration for the HTTP server.
// Zero durations fall back to the net/http defaults, except RequestTimeout
// which disables the per-request deadline.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	// RequestTimeout bounds the handling of one request, lookup included.
	RequestTimeout time.Duration
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// Gatherer feeds the metrics endpoint; nil means the default registry.
	Gatherer prometheus.Gatherer
}

// NewOptions maps the HTTP section of the application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
	}
}

type Deps struct {
	v1handler.Deps
}

// NewHandler builds the routed and middleware-wrapped handler:
//   - POST /v1/contact-info and the legacy POST /get_contact_info
//   - the embedded OpenAPI document and its Swagger UI
//   - Prometheus metrics at MetricsPath
//   - pprof under /debug/pprof/
func NewHandler(deps Deps, opts Options) http.Handler {
	mux := http.NewServeMux()

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	mux.Handle(metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /specs/v1.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	mux.Handle("/v1/docs/", v5emb.New(
		"Contact Finder",
		"/specs/v1.yaml",
		"/v1/docs/",
	))

	h := v1handler.New(deps.Deps)
	mux.HandleFunc("POST /v1/contact-info", h.ContactInfo)
	mux.HandleFunc("POST /get_contact_info", h.ContactInfo)

	mux.Handle("/debug/pprof/", controller.PprofMux())

	handler := controller.WithRecover(mux)
	handler = controller.WithCORS(handler)
	handler = controller.WithLogger(handler)
	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, timeoutBody)
	}

	return handler
}

// NewServer wraps NewHandler in an *http.Server whose internal errors go to
// the application logger.
func NewServer(ctx context.Context, deps Deps, opts Options) *http.Server {
	return &http.Server{
		Addr:              opts.Addr,
		Handler:           NewHandler(deps, opts),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
		ErrorLog:          logger.StdError(ctx),
	}
}
