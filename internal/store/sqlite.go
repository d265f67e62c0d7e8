package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// timeLayout is fixed width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02 15:04:05.000000000"

// formatTime renders t in UTC for a DATETIME column. The driver reads the
// value back as a time.Time.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// SQLite is a Store backed by a SQLite database opened with db.Open.
type SQLite struct {
	DB *sql.DB
}

// NewSQLite wraps an open database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{DB: db}
}

// Ping checks the database connection.
func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging sqlite: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close(_ context.Context) error {
	return s.DB.Close()
}
