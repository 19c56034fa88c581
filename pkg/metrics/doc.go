/*
Package metrics exposes the coordinator's Prometheus metrics: release and
task counts by state, task-service health, outbound command latency, and
poll-cycle duration. Collector recomputes the gauges on a ticker from
Store state. The API request counter and histogram are updated by the
internal/httpapi request middleware; the task-command, poll-cycle and
release-cancel metrics are registered but nothing in the coordinator
updates them.
*/
package metrics
