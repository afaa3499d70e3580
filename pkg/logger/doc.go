// Package logger builds slog loggers from functional options and provides
// attribute constructors so the realtime components log with consistent keys.
//
// New picks a text or JSON handler, applies static attributes, and wraps the
// result in LogHandlerDecorator, which runs registered ContextExtractor
// callbacks on every record (request ids, environment).
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "snaketips"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "subscriber connected",
//		logger.Stream("tips"),
//		logger.Subscribers(3),
//	)
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally.
package logger
