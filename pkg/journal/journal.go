// Package journal keeps a local sqlite log of command invocations.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"cidfeed/pkg/model"
)

// FileName is the journal database name inside the data directory.
const FileName = "journal.db"

const schema = `CREATE TABLE IF NOT EXISTS command_journal(
	id TEXT PRIMARY KEY,
	command TEXT NOT NULL,
	ok INTEGER NOT NULL,
	error TEXT,
	duration_ms INTEGER,
	ts INTEGER NOT NULL
)`

const indexSchema = `CREATE INDEX IF NOT EXISTS idx_command_journal_ts ON command_journal(ts)`

type Journal struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates (or reuses) the journal database at path.
func Open(path string, logger *zap.Logger) (*Journal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal mkdir: %w", err)
	}
	dsn := "file:" + path + "?_pragma=busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal open: %w", err)
	}
	db.SetMaxOpenConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal ping: %w", err)
	}
	for _, stmt := range []string{schema, indexSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal init schema: %w", err)
		}
	}
	return &Journal{db: db, logger: logger}, nil
}

// Record appends e. It is best-effort: failures are logged at debug and dropped.
func (j *Journal) Record(ctx context.Context, e model.JournalEntry) {
	if j == nil || j.db == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	ok := 0
	if e.OK {
		ok = 1
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO command_journal(id, command, ok, error, duration_ms, ts) VALUES(?,?,?,?,?,?)`,
		e.ID, e.Command, ok, e.Error, e.DurationMS, e.Timestamp.UnixNano())
	if err != nil {
		j.logger.Debug("journal record dropped", zap.String("command", e.Command), zap.Error(err))
	}
}

// List returns up to limit of the newest entries, oldest first.
func (j *Journal) List(ctx context.Context, limit int) ([]model.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, command, ok, error, duration_ms, ts FROM command_journal ORDER BY ts DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()
	out := []model.JournalEntry{}
	for rows.Next() {
		var (
			e     model.JournalEntry
			ok    int
			msg   sql.NullString
			durMS sql.NullInt64
			ts    int64
		)
		if err := rows.Scan(&e.ID, &e.Command, &ok, &msg, &durMS, &ts); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		e.OK = ok == 1
		e.Error = msg.String
		e.DurationMS = durMS.Int64
		e.Timestamp = time.Unix(0, ts)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}
