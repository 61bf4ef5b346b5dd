package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"pawhub/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS auth_storage (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLitePersister keeps encoded sessions in a single SQLite table.
type SQLitePersister struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLitePersister{db: db, now: time.Now}, nil
}

func (p *SQLitePersister) Load(ctx context.Context, key string) (models.Session, bool, error) {
	var b []byte
	err := p.db.QueryRowContext(ctx, `SELECT value FROM auth_storage WHERE key = ?`, key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("sqlite load session: %w", err)
	}
	return decode(b)
}

func (p *SQLitePersister) Save(ctx context.Context, key string, s models.Session) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO auth_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, b, p.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite save session: %w", err)
	}
	return nil
}

func (p *SQLitePersister) Delete(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM auth_storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite delete session: %w", err)
	}
	return nil
}

// Health pings the database.
func (p *SQLitePersister) Health(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database.
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}
