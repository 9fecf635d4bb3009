package store

import (
	"context"
	"database/sql"
	"errors"

	"cafe-pos/internal/models"
)

func (s *Store) ListSettings(ctx context.Context) (map[string]string, error) {
	var rows []models.Setting
	if err := s.sel(ctx, &rows, `SELECT key, value FROM settings`); err != nil {
		return nil, err
	}

	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

// GetSetting returns the value for key, or "" when the key is absent.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.get(ctx, &value, `SELECT value FROM settings WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	return s.exec(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
}

// GetUserByCredentials returns the matching user or (nil, nil). The check
// is a plaintext comparison, as the terminals expect.
func (s *Store) GetUserByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.get(ctx, &user, `
		SELECT * FROM users WHERE username = $1 AND password = $2`, username, password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
