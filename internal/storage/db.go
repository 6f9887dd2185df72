package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"sheetetl/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  job TEXT NOT NULL,
  source TEXT NOT NULL,
  status TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  outputPath TEXT,
  error TEXT,
  durationMs INTEGER NOT NULL DEFAULT 0,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_job ON runs(job);
CREATE INDEX IF NOT EXISTS idx_runs_traceId ON runs(traceId);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(traceID string, result internal.JobResult) error {
	countsJSON, _ := json.Marshal(result.Stats)
	var errText *string
	if result.Err != nil {
		msg := result.Err.Error()
		errText = &msg
	}
	var outputPath *string
	if result.OutputPath != "" {
		outputPath = &result.OutputPath
	}
	_, err := d.conn.Exec(`
INSERT INTO runs (traceId, job, source, status, countsJson, outputPath, error, durationMs)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, traceID, result.Job, result.Source, string(result.Status), string(countsJSON), outputPath, errText, result.DurationMs)
	return err
}

// ListRuns returns the newest runs first. An empty job lists every job.
func (d *DB) ListRuns(job string, limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, job, source, status, countsJson, outputPath, error, durationMs, createdAt
FROM runs
WHERE (? = '' OR job = ?)
ORDER BY id DESC
LIMIT ?
`, job, job, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		var countsJSON string
		var outputPath, errText sql.NullString
		if err := rows.Scan(
			&row.ID, &row.TraceID, &row.Job, &row.Source, &row.Status,
			&countsJSON, &outputPath, &errText, &row.DurationMs, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(countsJSON), &row.Stats)
		row.OutputPath = outputPath.String
		row.Error = errText.String
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
