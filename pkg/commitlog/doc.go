/*
Package commitlog is a bbolt-backed reference implementation of
types.Log, one bucket per partition, operations JSON-encoded and keyed by
an in-bucket monotonic sequence number so iteration order is commit order.
Append is a log-seeding convenience for tests and cmd/matctl; the
materializer only ever calls GetAll (rehydration) and Get (a snapshot-cache
miss).
*/
package commitlog
