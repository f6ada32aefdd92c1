// Package catalog records verified tracks and exposes the persistence
// capability set the CLI operates on: create, get, list, search, update,
// delete, and purge.
//
// Catalog is the abstract interface; Store is the SQLite implementation,
// sharing the queue database. Deletion is soft by default so purge can
// reclaim space later; a hard delete removes the row immediately.
package catalog
