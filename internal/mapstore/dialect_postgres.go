package mapstore

import "fmt"

// PostgresDialect implements Dialect for PostgreSQL databases.
type PostgresDialect struct{}

// DriverName returns "postgres" for the lib/pq driver.
func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// Placeholder returns "$N" for the given position.
func (d *PostgresDialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

// BlobType returns PostgreSQL's binary column type.
func (d *PostgresDialect) BlobType() string {
	return "BYTEA"
}

// InitStatements returns nothing; PostgreSQL needs no per-connection
// setup for this schema.
func (d *PostgresDialect) InitStatements() []string {
	return nil
}
