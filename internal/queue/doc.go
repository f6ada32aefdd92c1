// Package queue persists ingestion jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, and the status transitions that mirror the ingest pipeline. Jobs
// capture their URL set, progress, per-URL verification outcomes, and review
// flags so stages can coordinate without additional state.
//
// The database is treated as transient storage for in-flight jobs rather than
// a long-term archive; the track catalog owns the durable records. Schema
// changes bump the version in schema.go; users clear the database to adopt
// the new schema.
package queue
