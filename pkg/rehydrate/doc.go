/*
Package rehydrate implements the partition startup state machine:
Init -> Loading -> Ready. Start waits LogStartupWait, then streams the
commit log page by page via types.Log.GetAll, loading every operation it
finds into the materializer's operation cache with
materializer.Materializer.LoadOperation (which — unlike Update — doesn't
check readiness or trigger a writeback). A log error recognized as
transient is retried with bounded backoff; any other error demotes
straight to Ready with whatever was loaded, since a partition that can
never become ready is worse than one serving from partial state.
*/
package rehydrate
