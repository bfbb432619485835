// Package catalog provides the array registry (catalog.db).
package catalog

// The registry is a SQLite database that serves as the source of truth
// for which arrays exist and where their persisted schema documents
// live in object storage.

// CreateArraysTableSQL creates the core arrays table. The uri is the
// user-facing array location and is unique; the object_path points at
// the schema document in object storage.
const CreateArraysTableSQL = `
CREATE TABLE IF NOT EXISTS arrays (
    array_id TEXT PRIMARY KEY,
    uri TEXT NOT NULL UNIQUE,
    object_path TEXT NOT NULL,
    codec INTEGER NOT NULL,
    checksum INTEGER NOT NULL,
    size_bytes INTEGER NOT NULL,
    created_at INTEGER NOT NULL
)`

// CreateArraysIndexSQL creates an index for listing arrays in creation order.
const CreateArraysIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_arrays_created ON arrays(created_at)`

// AllSchemaSQL returns all SQL statements needed to initialize the registry.
func AllSchemaSQL() []string {
	return []string{
		CreateArraysTableSQL,
		CreateArraysIndexSQL,
	}
}
