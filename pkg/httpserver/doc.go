// Package httpserver runs the API's http.Server with configured timeouts
// and graceful shutdown when the run context ends, and provides liveness
// and readiness handlers.
//
//	srv := httpserver.New(cfg, router, httpserver.WithLogger(log))
//	if err := srv.Run(ctx); err != nil {
//		return err
//	}
//
// Run wraps listen failures with ErrStart and shutdown failures with
// ErrShutdown.
package httpserver
