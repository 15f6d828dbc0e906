// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing the reconciliation engine to
// remain independent of specific database technologies.
package store
