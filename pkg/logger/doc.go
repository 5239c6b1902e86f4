// Package logger builds *slog.Logger values from functional options and
// provides attribute helpers so log keys stay consistent across packages.
//
// New picks a JSON or text handler and wraps it with LogHandlerDecorator,
// which adds attributes pulled from the context of every *Context call,
// such as the request id set by the HTTP middleware.
//
// # Usage
//
//	import "github.com/dmitrymomot/fdfskit/pkg/logger"
//
//	log := logger.New(
//		logger.WithEnvironment("production", "fdfsctl"),
//		logger.WithContextExtractors(requestIDExtractor),
//	)
//	log.InfoContext(ctx, "file uploaded",
//		logger.StorageKey("group1/M00/00/01/a.jpg"),
//		logger.Size(1024),
//	)
//
// Environment-driven setup goes through Config:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.New(logger.WithConfig(cfg))
//
// # Attribute helpers
//
// Error, Errors, Group, RequestID, Component, StorageGroup, StorageKey,
// Backend, Size, Duration and Path return slog.Attr values with fixed keys.
// Helpers given a nil error or empty id return an empty Attr, which slog
// drops.
package logger
