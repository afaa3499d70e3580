// Package httpserver runs an http.Server with graceful shutdown.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// Run blocks until ctx is cancelled. Request contexts are cancelled when
// shutdown starts, which lets streaming handlers finish on their own.
//
// HealthCheckHandler serves a plain text probe that optionally runs
// dependency checks.
package httpserver
