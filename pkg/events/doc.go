/*
Package events implements the append-only audit journal from spec §4.6.

Journal.Append is the single place a state transition becomes durable: it
persists the Event through Store, fans it out to any live subscribers
(for the REST layer's activity-feed endpoint), and best-effort forwards
it to an external Publisher — a webhook, or in production a message-bus
topic. A Publish failure is logged and swallowed; the Event row already
committed is the source of truth, never the emission.

Broker is in-process pub/sub adapted from Warren's own event broker:
non-blocking publish, per-subscriber buffered channels, a dropped event
for any subscriber whose buffer is full rather than a blocked journal.
*/
package events
