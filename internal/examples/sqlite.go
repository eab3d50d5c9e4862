package examples

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the corpus in a SQLite database, one row per example
// ordered by position.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite creates or opens the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS examples (
		position INTEGER PRIMARY KEY,
		cantonese TEXT NOT NULL,
		traditional_chinese TEXT NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context) ([]Example, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cantonese, traditional_chinese FROM examples ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query examples: %w", err)
	}
	defer rows.Close()

	examples := []Example{}
	for rows.Next() {
		var ex Example
		if err := rows.Scan(&ex.Cantonese, &ex.TraditionalChinese); err != nil {
			return nil, fmt.Errorf("scan example: %w", err)
		}
		examples = append(examples, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read examples: %w", err)
	}
	return examples, nil
}

// Save implements Store. All rows are replaced in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, examples []Example) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM examples`); err != nil {
		return fmt.Errorf("clear examples: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO examples (position, cantonese, traditional_chinese) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, ex := range examples {
		if _, err := stmt.ExecContext(ctx, i, ex.Cantonese, ex.TraditionalChinese); err != nil {
			return fmt.Errorf("insert example %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit examples: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
