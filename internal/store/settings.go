package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Setting inserts candidate under key unless a value exists, then reads the
// stored value back. INSERT OR IGNORE + re-SELECT avoids a race between
// concurrent first starts.
func (s *SQLite) Setting(ctx context.Context, key, candidate string) (string, error) {
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		key, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing setting %s: %w", key, err)
	}

	var value string
	err = s.DB.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("querying setting %s: %w", key, err)
	}
	return value, nil
}

// GetJWTSecret returns the persisted JWT secret, generating one on first use.
func GetJWTSecret(ctx context.Context, s Store) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return s.Setting(ctx, JWTSecretKey, hex.EncodeToString(buf))
}
