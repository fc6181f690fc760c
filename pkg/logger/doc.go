// Package logger builds the application's slog loggers and provides typed
// attribute helpers so log keys stay consistent across components.
//
// Services receive a *slog.Logger via their functional options and default to
// a discarding logger, so logging is always opt-in at the composition root:
//
//	log := logger.New(logger.WithFormat(logger.FormatText), logger.WithLevel(slog.LevelDebug))
//	svc := auth.NewService(provider, auth.WithLogger(log))
package logger
