// Package log provides the leveled logging interface shared by the searchflow
// components.
//
// # Log Levels
//
// Five levels are supported, in order of increasing severity:
//
//   - LogLevelDebug: pipeline tracing, every partial result and folded state
//   - LogLevelInfo: lifecycle messages such as restores and saves
//   - LogLevelWarn: suspicious but recoverable situations
//   - LogLevelError: failed fetches and storage errors
//   - LogLevelNone: disables all logging output
//
// # Implementations
//
// DefaultLogger writes through the standard library logger with a
// "[searchflow] " prefix. GologLogger adapts a kataras/golog logger, which
// is what the CLI uses. NoOpLogger discards everything and is handy in
// tests.
//
//	logger := log.NewGologLoggerWithLevel(log.LogLevelDebug)
//	orch := search.New(client, search.WithLogger(logger))
//
// Components that are not given a logger fall back to the package-level
// logger, which can be replaced with SetDefaultLogger.
//
// # Collections
//
// Abbreviate keeps log lines short when a value carries a long list, for
// instance a page of profiles:
//
//	log.Debug("fresh results %s", log.Abbreviate(names))
//	// fresh results 10 elements (from Alice 1 to Alice 10)
package log
