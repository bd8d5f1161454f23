package store

import (
	"database/sql"
	"errors"
	"time"
)

// Get returns the value stored under key. ok is false when the key is absent.
func (db *DB) Get(key string) (value string, ok bool, err error) {
	err = db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put inserts or overwrites the value under key.
func (db *DB) Put(key, value string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, value, now)
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (db *DB) Delete(key string) error {
	_, err := db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}
