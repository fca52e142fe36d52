/*
Package crdt provides the reference CRDT types (gcounter, pncounter,
lwwregister) used to exercise the materializer's replay logic in tests and
cmd/matctl. A production deployment supplies its own types.CrdtRegistry;
this package is not meant to be the final word on CRDT semantics, just a
correct and simple one.
*/
package crdt
