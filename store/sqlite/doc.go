// Package sqlite stores conversation checkpoints in a SQLite database file
// through mattn/go-sqlite3. The table is created when the store is opened.
package sqlite
