// Package health probes registered task services over HTTP and tracks
// their consecutive-failure count, from which ok/down status is derived.
package health
