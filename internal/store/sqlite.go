package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"cellignore/internal/profile"
)

// SQLiteStore keeps profiles in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and runs migrations.
func OpenSQLite(path string, busyTimeoutMs int) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=%d", path, busyTimeoutMs)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// SchemaVersion returns the applied schema version.
func (s *SQLiteStore) SchemaVersion() (int, error) {
	return currentVersion(s.db)
}

// Load implements Store.
func (s *SQLiteStore) Load() (profile.Set, error) {
	rows, err := s.db.Query(`
		SELECT p.key, p.driver, p.num_cells, c.cell
		FROM profiles p
		LEFT JOIN ignored_cells c ON c.profile_key = p.key
		ORDER BY p.key, c.cell`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	set := profile.Set{}
	for rows.Next() {
		var (
			key, driver string
			numCells    int
			cell        sql.NullInt64
		)
		if err := rows.Scan(&key, &driver, &numCells, &cell); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		p, ok := set[key]
		if !ok {
			p = profile.Profile{Driver: driver, NumCells: numCells}
		}
		if cell.Valid {
			p.Ignored = append(p.Ignored, int(cell.Int64))
		}
		set[key] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return set, nil
}

// Save implements Store. The stored set is replaced; empty profiles are
// not kept.
func (s *SQLiteStore) Save(set profile.Set) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM ignored_cells`); err != nil {
		return fmt.Errorf("clear cells: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM profiles`); err != nil {
		return fmt.Errorf("clear profiles: %w", err)
	}

	profStmt, err := tx.Prepare(`INSERT INTO profiles (key, driver, num_cells, updated_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer profStmt.Close()

	cellStmt, err := tx.Prepare(`INSERT INTO ignored_cells (profile_key, cell) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer cellStmt.Close()

	now := time.Now().Unix()
	for _, key := range set.Keys() {
		p := set[key]
		if p.Empty() {
			continue
		}
		if _, err := profStmt.Exec(p.Key(), p.Driver, p.NumCells, now); err != nil {
			return fmt.Errorf("insert profile %s: %w", p.Key(), err)
		}
		for _, cell := range profile.NewCellList(p.Ignored...) {
			if _, err := cellStmt.Exec(p.Key(), cell); err != nil {
				return fmt.Errorf("insert cell %d of %s: %w", cell, p.Key(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
