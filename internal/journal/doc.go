// Package journal records placement passes in a SQLite database.
//
// Each non-dry-run place command opens one session row identified by a UUID
// and appends a placement row per materialized file. The journal is an audit
// trail only; nothing reads it back to decide what to place. Schema changes
// bump schemaVersion; users delete the database to adopt a new schema.
package journal
