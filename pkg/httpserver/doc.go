// Package httpserver runs an http.Handler with graceful shutdown.
//
// Server binds its listener synchronously, so a bad address is reported by
// Run straight away, and then serves until the context is cancelled, the
// process receives SIGINT or SIGTERM, or Shutdown is called:
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// HealthCheckHandler returns a probe handler: without checks it reports
// liveness, with checks it reports readiness.
//
// Run wraps listen and serve failures with ErrStart; Shutdown wraps
// http.Server.Shutdown failures with ErrShutdown.
package httpserver
