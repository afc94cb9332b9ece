// Package server provides HTTP routing, middleware and graceful shutdown for the web interface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method dispatch, so one path can
// serve GET and POST while other methods receive 405 with an Allow header.
//
// # Middleware
//
//   - [Logging] : structured request log line plus Prometheus request metrics
//   - [RateLimit] : token bucket over all requests, 429 once exhausted
//   - [Recover] : converts handler panics to 500 responses
//
// # Lifecycle
//
// [Run] starts an [HTTPServer] and shuts it down within [ShutdownTimeout] once its context is cancelled.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
