// Package log provides ringlog's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Internally it is backed by the standard
// library slog via a bridge handler that feeds a formatter/outputs pipeline,
// keeping output consistent across the codebase.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.WithComponent("ring")
//	l.Info("engine ready", log.Uint32("cursor", 4096))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config supporting
// text or JSON formatting. RedirectStdLog routes standard library log output
// through a Logger instance.
package log
