package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/mattn/go-sqlite3"
)

// SQLite holds the durable side of the app: users and finished-game records.
type SQLite struct {
	Connection *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &SQLite{Connection: conn}, nil
}

func (that *SQLite) Init(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS game_records (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			result TEXT NOT NULL,
			duration_minutes REAL NOT NULL,
			board_size INTEGER NOT NULL,
			difficulty TEXT NOT NULL,
			finished_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_game_records_user ON game_records (user_id, finished_at DESC)`,
	}

	for _, query := range queries {
		if _, err := that.Connection.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("can't create table: %w", err)
		}
	}

	return nil
}

func (that *SQLite) Close() error {
	if err := that.Connection.Close(); err != nil {
		return fmt.Errorf("can't close database: %w", err)
	}

	return nil
}
