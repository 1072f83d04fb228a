// Package sqlitestore keeps save slots in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/1siamBot/scenekit/engine/savedata"
)

const schema = `
CREATE TABLE IF NOT EXISTS save_slots (
	slot       INTEGER PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Store implements savedata.Store over SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ savedata.Store = (*Store)(nil)

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("storage path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	dsn := path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Read(ctx context.Context, slot int) ([]byte, error) {
	var data []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM save_slots WHERE slot = ?`, slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", savedata.ErrSlotNotFound, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %d: %w", slot, err)
	}
	return data, nil
}

func (s *Store) Write(ctx context.Context, slot int, data []byte) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO save_slots (slot, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(slot) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`, slot, data)
	if err != nil {
		return fmt.Errorf("write slot %d: %w", slot, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, slot int) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM save_slots WHERE slot = ?`, slot)
	if err != nil {
		return fmt.Errorf("delete slot %d: %w", slot, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot %d: %w", slot, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", savedata.ErrSlotNotFound, slot)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]int, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT slot FROM save_slots ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, n)
	}
	return slots, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
