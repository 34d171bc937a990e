package cases

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init initializes the case database and ensures the cases table exists.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	casesSchema := `CREATE TABLE IF NOT EXISTS cases (
	          case_id INTEGER PRIMARY KEY AUTOINCREMENT,
	          guild_id TEXT NOT NULL DEFAULT '',
	          type TEXT NOT NULL,
	          subject_id TEXT NOT NULL,
	          subject_tag TEXT NOT NULL DEFAULT '',
	          actor_id TEXT NOT NULL,
	          actor_tag TEXT NOT NULL DEFAULT '',
	          reason TEXT NOT NULL DEFAULT '',
	          duration_seconds INTEGER NOT NULL DEFAULT 0,
	          category TEXT NOT NULL DEFAULT '',
	          expires_at INTEGER NOT NULL DEFAULT 0,
	          threshold_triggered INTEGER NOT NULL DEFAULT 0,
	          created_at INTEGER NOT NULL
	      );`
	if _, err := db.Exec(casesSchema); err != nil {
		return nil, fmt.Errorf("failed to create cases table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_cases_subject ON cases (subject_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_expiry ON cases (type, expires_at)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	return db, nil
}
