// Package remote is the thin client for the scoring service. It exposes
// exactly the named operations the reconciliation engine consumes: fetch
// a job snapshot, request regeneration, toggle the applied flag, and list
// recent jobs. It holds no state and performs no retries of its own.
package remote
