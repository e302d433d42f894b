// Package server runs the small HTTP server that salvage watch exposes for
// scraping and probing.
//
// Handlers are registered on the server's mux before Start. Every request
// passes through the middleware chain, outermost first:
//  1. Recovery: turns handler panics into 500 responses
//  2. Logging: logs method, path, status and duration
//  3. RequestID: reuses or generates an X-Request-ID
//
// Start binds the listener immediately, so a bind failure is reported before
// any request is served, and blocks until the context is cancelled:
//
//	srv := server.New(&cfg.Server, logger)
//	srv.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//	health.Mount(srv.Mux(), checker, &cfg.Telemetry.Health, info)
//	err := srv.Start(ctx)
//
// On cancellation in-flight requests get ShutdownTimeout to finish.
package server
