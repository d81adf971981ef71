// Package catalog provides the build-scoped, in-memory registry of files
// destined for the generated site.
//
// Entries are unique per (kind, path) for the lifetime of one build. The
// registration discipline is check-then-insert, never blind overwrite:
//
//	absent  -> present            first write (OutcomeInserted)
//	present -> present unchanged  conflicting write, no overwrite (OutcomeSkipped)
//	present -> present replaced   conflicting write with overwrite (OutcomeReplaced)
//
// The existence check and the insert happen under one lock, so concurrent
// document processing cannot publish the same path twice.
//
// Entry contents are a Source that may be lazy: nothing is opened until the
// host performs the final write.
package catalog
