// Package mapstore provides SQL-backed persistence for generated maps,
// supporting SQLite (default) and PostgreSQL.
package mapstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no map exists with the requested ID.
var ErrNotFound = errors.New("mapstore: map not found")

// StoredMap is a persisted generation result.
type StoredMap struct {
	ID          string
	Name        string
	Width       int
	Height      int
	NumPatterns int
	Seed        int64
	Cells       []uint8 // pattern index per cell, row-major
	CreatedAt   time.Time
}

// Store wraps the SQL connection and provides map persistence.
type Store struct {
	db *sql.DB
	qb *QueryBuilder
}

// Open opens the store. For SQLite, dsn is the database file path and
// its directory is created if missing; for PostgreSQL it is a
// connection string.
func Open(dialectType DialectType, dsn string) (*Store, error) {
	dialect := NewDialect(dialectType)

	if dialectType == DialectSQLite {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run init statement: %w", err)
		}
	}

	s := &Store{db: db, qb: NewQueryBuilder(dialect)}

	if err := s.migrate(dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the schema if it doesn't exist.
func (s *Store) migrate(dialect Dialect) error {
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS maps (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		num_patterns INTEGER NOT NULL,
		seed BIGINT NOT NULL,
		cells %s NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`, dialect.BlobType())

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	index := `CREATE INDEX IF NOT EXISTS idx_maps_created_at ON maps(created_at)`
	_, err := s.db.Exec(index)
	return err
}

// SaveMap persists a generated map. A missing ID is assigned a fresh
// UUID; the assigned ID and creation time are written back to m.
func (s *Store) SaveMap(m *StoredMap) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if len(m.Cells) != m.Width*m.Height {
		return fmt.Errorf("mapstore: map has %d cells, want %d", len(m.Cells), m.Width*m.Height)
	}

	query := s.qb.Build(`INSERT INTO maps (id, name, width, height, num_patterns, seed, cells, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.Exec(query, m.ID, m.Name, m.Width, m.Height, m.NumPatterns, m.Seed, m.Cells, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("mapstore: failed to save map %s: %w", m.ID, err)
	}
	return nil
}

// GetMap loads a map by ID.
func (s *Store) GetMap(id string) (*StoredMap, error) {
	query := s.qb.Build(`SELECT id, name, width, height, num_patterns, seed, cells, created_at
		FROM maps WHERE id = ?`)

	m := &StoredMap{}
	err := s.db.QueryRow(query, id).Scan(
		&m.ID, &m.Name, &m.Width, &m.Height, &m.NumPatterns, &m.Seed, &m.Cells, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("mapstore: failed to load map %s: %w", id, err)
	}
	return m, nil
}

// ListMaps returns the most recently created maps, newest first,
// without their cell data. limit <= 0 means no limit.
func (s *Store) ListMaps(limit int) ([]*StoredMap, error) {
	query := `SELECT id, name, width, height, num_patterns, seed, created_at
		FROM maps ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(s.qb.Build(query), args...)
	if err != nil {
		return nil, fmt.Errorf("mapstore: failed to list maps: %w", err)
	}
	defer rows.Close()

	var maps []*StoredMap
	for rows.Next() {
		m := &StoredMap{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Width, &m.Height, &m.NumPatterns, &m.Seed, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("mapstore: failed to scan map row: %w", err)
		}
		maps = append(maps, m)
	}
	return maps, rows.Err()
}

// DeleteMap removes a map by ID.
func (s *Store) DeleteMap(id string) error {
	query := s.qb.Build(`DELETE FROM maps WHERE id = ?`)
	result, err := s.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("mapstore: failed to delete map %s: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
