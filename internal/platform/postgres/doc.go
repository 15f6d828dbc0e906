// Package postgres provides PostgreSQL-backed implementations of the
// store interfaces. The task store is a durable key-value mapping: one
// row per task ID, with the open data bag held in a JSONB column and
// every write replacing the whole record.
package postgres
