/*
Package storage provides the coordinator's persistence layer.

Production deployments back Store with Postgres through pgx/pgxpool
(postgres.go); tests and single-process dev runs use an in-memory
implementation (memory.go) that satisfies the same interface. Atomic runs
a closure inside one SQL transaction on Postgres; the in-memory store runs
it directly, each of its methods taking the store's mutex separately, so
it gives no isolation across calls and no rollback.
*/
package storage
