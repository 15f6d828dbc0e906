// Package task implements the reconciliation engine that keeps locally
// tracked assessment tasks in sync with the scoring service. It provides
// the periodic Reconciler (bounded-concurrency polling of unresolved
// tasks), the on-demand Regenerator (bounded-time retry loop), and the
// one-shot applied-flag Backfiller for records created before that field
// existed.
package task
