/*
Package partition provides the single-threaded command processor that
owns one partition's mutating operations. Update, StoreSS, CheckTablesReady
and Handoff all funnel through one goroutine (loop), so they can never
race each other on the same key's caches. Read does not: it calls straight
through to materializer.Materializer.Read, which is already safe for
concurrent callers.
*/
package partition
