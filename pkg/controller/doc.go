// Package controller holds the HTTP middlewares shared by every route.
//
//   - WithCORS answers preflight requests and sets permissive CORS headers.
//   - WithLogger attaches a request id and a request-scoped logger, then writes the access log.
//   - WithRecover turns a handler panic into a 500 reply.
//   - PprofMux serves net/http/pprof under /debug/pprof/.
package controller
