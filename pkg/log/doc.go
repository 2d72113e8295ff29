/*
Package log provides structured logging for vnix using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper functions
for common logging patterns. All logs include timestamps and support filtering
by severity level.

# Usage

Initializing the logger:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Component loggers:

	kernLog := log.WithComponent("kern")
	kernLog.Info().Uint("task_id", 3).Msg("task registered")

Context helpers:

	taskLog := log.WithTaskID(42)
	servLog := log.WithServ("sys.task")
	usrLog := log.WithUsr("super")

The kernel mirrors scheduler diagnostics (killed and failed tasks) onto the
terminal driver as well; the structured log is the machine-readable side of
that output.

# Integration Points

This package integrates with:

  - pkg/kern: scheduler passes, task lifecycle, dispatch errors
  - pkg/serv: per-service handler logging
  - cmd/vnix: logger initialization from flags and the boot manifest
*/
package log
