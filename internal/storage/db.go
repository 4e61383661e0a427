package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"memclean/internal"
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
CREATE TABLE IF NOT EXISTS files (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  ref TEXT NOT NULL,
  name TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  error TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, ref)
);
CREATE INDEX IF NOT EXISTS idx_files_status ON files(status);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  fileId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(fileId) REFERENCES files(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertFile(provider, ref, name, sender, receivedAt, hash, rawRef, status string) (internal.FileRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO files (provider, ref, name, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, ref) DO UPDATE SET
  name=excluded.name,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, ref, name, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.FileRow{}, err
	}

	row, err := d.GetFileByProviderRef(provider, ref)
	if err != nil {
		return internal.FileRow{}, err
	}
	if row == nil {
		return internal.FileRow{}, errors.New("failed to upsert file")
	}
	return *row, nil
}

func (d *DB) GetFileByProviderRef(provider, ref string) (*internal.FileRow, error) {
	return scanFile(d.conn.QueryRow(`
SELECT id, provider, ref, name, sender, receivedAt, hash, status, rawRef, error
FROM files WHERE provider = ? AND ref = ?
`, provider, ref))
}

func (d *DB) GetFileByID(id int) (*internal.FileRow, error) {
	return scanFile(d.conn.QueryRow(`
SELECT id, provider, ref, name, sender, receivedAt, hash, status, rawRef, error
FROM files WHERE id = ?
`, id))
}

func scanFile(r *sql.Row) (*internal.FileRow, error) {
	var row internal.FileRow
	err := r.Scan(&row.ID, &row.Provider, &row.Ref, &row.Name, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef, &row.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListFilesByStatus(status string, limit int) ([]internal.FileRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, ref, name, sender, receivedAt, hash, status, rawRef, error
FROM files WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.FileRow
	for rows.Next() {
		var row internal.FileRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.Ref, &row.Name, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef, &row.Error); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateFileStatus(fileID int, status string) error {
	_, err := d.conn.Exec(`UPDATE files SET status = ?, error = NULL, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, fileID)
	return err
}

// MarkFileError records a per-file failure; other files in the batch are
// unaffected.
func (d *DB) MarkFileError(fileID int, message string) error {
	_, err := d.conn.Exec(`UPDATE files SET status = ?, error = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, internal.StatusError, message, fileID)
	return err
}

func (d *DB) InsertRun(traceID string, fileID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, fileId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, fileID, string(timingsJSON), string(countsJSON))
	return err
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

func (d *DB) MustFileByProviderRef(provider, ref string) (internal.FileRow, error) {
	row, err := d.GetFileByProviderRef(provider, ref)
	if err != nil {
		return internal.FileRow{}, err
	}
	if row == nil {
		return internal.FileRow{}, fmt.Errorf("file not found: provider=%s ref=%s", provider, ref)
	}
	return *row, nil
}
