package mapstore

// SQLiteDialect implements Dialect for SQLite databases.
type SQLiteDialect struct{}

// DriverName returns "sqlite" for the modernc.org/sqlite driver.
func (d *SQLiteDialect) DriverName() string {
	return "sqlite"
}

// Placeholder returns "?" regardless of position.
func (d *SQLiteDialect) Placeholder(position int) string {
	return "?"
}

// BlobType returns SQLite's binary column type.
func (d *SQLiteDialect) BlobType() string {
	return "BLOB"
}

// InitStatements returns the PRAGMA statements applied to every new
// connection: foreign keys, WAL for concurrent readers, and a busy
// timeout so writers wait on locks instead of failing.
func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}
