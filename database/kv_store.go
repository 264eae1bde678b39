package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// KeyValueStore persists a single string under a fixed key, the way a
// browser keeps an entry in local storage.
type KeyValueStore struct {
	db  *sql.DB
	key string
}

func NewKeyValueStore(db *sql.DB, key string) *KeyValueStore {
	return &KeyValueStore{db, key}
}

func (s *KeyValueStore) Load(ctx context.Context) (string, bool, error) {
	var value string
	err := s.db.
		QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", s.key).
		Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, errors.Wrapf(err, "kv.load %s", s.key)
	}
	return value, true, nil
}

func (s *KeyValueStore) Save(ctx context.Context, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		s.key,
		value,
	)
	return errors.Wrapf(err, "kv.save %s", s.key)
}

func (s *KeyValueStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", s.key)
	return errors.Wrapf(err, "kv.clear %s", s.key)
}
