// Package http implements the HTTP transport layer of the application.
// It provides middleware, route handlers, and request/response utilities
// for the REST API. Authentication, logging, tracing, compression, and
// integrity-checking concerns are all handled at this layer before
// requests are forwarded to the service layer.
package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Init constructs and returns a fully configured [chi.Mux] router that
// serves all API endpoints of the application.
//
// # Global middleware
//
// Every request passes through the following middleware chain in order:
//   - [middleware.Recoverer] — catches panics in handlers, logs the stack
//     trace, and returns HTTP 500 to the client so the server stays alive.
//   - [Handler.withTraceID] — resolves or generates a trace ID and stores
//     an enriched logger in the request context for structured tracing.
//   - withLogging — emits a structured access-log entry (URI, method,
//     status, duration, response size) after each request completes.
//   - withGZip — transparently decompresses gzip-encoded request bodies and
//     compresses response bodies for clients that advertise gzip support.
//
// # Route groups
//
// All API routes are nested under the "/api" prefix:
//
//	/api/auth
//	  POST /register       — create a new account (public).
//	  POST /login          — authenticate and receive a JWT (public).
//	  POST /params         — fetch key-derivation parameters by login (public).
//
//	/api/store             — record-store operations (requires JWT via [Handler.auth]):
//	  GET    /status       — per-(host, tag) head map for the user.
//	  GET    /records      — contiguous ascending range of one stream.
//	  POST   /records      — atomic, idempotent batch insert
//	                         (additionally guarded by [pushHashing]).
//	  DELETE /             — wipe every record and cache entry for the user.
//
//	/api/version           — server metadata (public):
//	  GET /                — return the current server version string.
//
// /metrics exposes Prometheus metrics (including the index-cache audit
// counter) outside the /api prefix.
//
// # Method-not-allowed behaviour
//
// [CheckHTTPMethod] is registered as the MethodNotAllowed handler. It
// overrides chi's default HTTP 405 response and returns HTTP 404 instead,
// preventing callers from discovering which HTTP methods are supported on
// a given route through error-code enumeration.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, withLogging, withGZip)

	router.Route("/api", func(api chi.Router) {

		// Authentication routes — public, no JWT required.
		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.register)
			auth.Post("/login", h.login)
			auth.Post("/params", h.params)
		})

		// Record-store routes — JWT required for all endpoints.
		api.Route("/store", func(st chi.Router) {
			st.Use(h.auth)

			st.Get("/status", h.status)
			st.Get("/records", h.nextRecords)

			// pushHashing verifies the transport integrity checksum of the
			// pushed batch before the request reaches the insert handler.
			st.With(pushHashing).Post("/records", h.addRecords)

			st.Delete("/", h.wipeStore)
		})

		// Server metadata routes — public, no authentication required.
		api.Route("/version", func(version chi.Router) {
			version.Get("/", h.getServerVersion)
		})
	})

	router.Method("GET", "/metrics", promhttp.Handler())

	// Replace chi's default 405 Method Not Allowed with 404 Not Found so that
	// callers cannot enumerate supported HTTP methods through error codes.
	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
