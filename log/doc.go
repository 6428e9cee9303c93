// Package log provides the leveled logger used by the lessons, the CLI and
// the tracing client.
//
// The default implementation wraps github.com/kataras/golog. When Options.File
// is set, output is also written to a size-rotated file managed by lumberjack:
//
//	logger := log.New(log.Options{Level: log.LevelDebug, File: "academy.log"})
//	defer logger.Close()
//	log.SetDefault(logger)
//	log.Info("thread %s resumed at step %d", threadID, step)
//
// Levels are parsed from configuration with ParseLevel ("debug", "info",
// "warn", "error", "none").
package log
