/*
Package log provides structured logging for the coordinator using zerolog.

A single package-level Logger is configured once via Init(Config) at
process startup (JSON output in production, a console writer in local
dev) and read everywhere else. Component loggers are built with
WithRelease, WithTask, and WithTaskService, each attaching the matching
id as a field so a release's log lines can be grepped out of the stream
without a correlation-id dance.

Handlers and background jobs alike log through this package rather than
returning every error up to a caller that might discard it — a pattern
shared with the Job Dispatcher's per-handler log-and-noop policy on
invalid transitions (spec §4.7, §7).
*/
package log
