package data

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// KV is a durable key-value store backed by the application database. It
// is the single owner of the persisted content document, category list and
// contact messages; nothing else writes these rows.
type KV struct {
	db *sqlx.DB
}

// NewKV creates a KV over an already-connected database. The kv_entries
// table is created by migrations.
func NewKV(db *sqlx.DB) *KV {
	return &KV{db: db}
}

// Get retrieves a value. It returns nil if the key is not present;
// absence is not an error.
func (s *KV) Get(key string) ([]byte, error) {
	var item struct {
		Value     []byte `db:"value"`
		UpdatedAt int64  `db:"updated_at"`
	}
	query := `SELECT value, updated_at FROM kv_entries WHERE entry_key = ?`
	err := s.db.Get(&item, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return item.Value, nil
}

// Set stores a value, replacing any previous one.
func (s *KV) Set(key string, value []byte) error {
	query := `REPLACE INTO kv_entries (entry_key, value, updated_at) VALUES (?, ?, ?)`
	if _, err := s.db.Exec(query, key, value, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is a no-op.
func (s *KV) Delete(key string) error {
	query := `DELETE FROM kv_entries WHERE entry_key = ?`
	if _, err := s.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}
