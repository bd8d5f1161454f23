package store

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

// DB is one session's settings database (evo.db). It holds the saved
// provider credentials, so every write has to reach disk before Put returns.
type DB struct {
	*sql.DB
}

// sessionPragmas are passed through the go-sqlite3 DSN. synchronous=FULL
// fsyncs the WAL on every commit, which is what lets credentials.Save report
// success only once the settings are durable. The busy timeout covers evoctl
// writing while the TUI holds the same file open.
var sessionPragmas = url.Values{
	"_journal_mode": {"WAL"},
	"_synchronous":  {"FULL"},
	"_busy_timeout": {"5000"},
}

// Open opens the session database at path, creating the file if needed.
// Call Migrate before reading or writing settings.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?"+sessionPragmas.Encode())
	if err != nil {
		return nil, fmt.Errorf("open session db %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session db %s unusable: %w", path, err)
	}
	return &DB{db}, nil
}
