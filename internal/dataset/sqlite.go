package dataset

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/joelkehle/weightfill/internal/resolve"
)

// Journal is the per-run audit trail, persisted to SQLite with
// write-through semantics: every result and review entry is recorded the
// moment the single writer receives it, so an interrupted run keeps
// everything committed up to that point.
type Journal struct {
	db *sqlx.DB
}

const journalSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	input_path   TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	completed_at TEXT NOT NULL DEFAULT '',
	total_rows   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS results (
	run_id      TEXT NOT NULL,
	row_key     TEXT NOT NULL,
	product     TEXT NOT NULL,
	found       INTEGER NOT NULL DEFAULT 0,
	grams       REAL NOT NULL DEFAULT 0,
	unit        TEXT NOT NULL DEFAULT '',
	method      TEXT NOT NULL DEFAULT '',
	last_ref    TEXT NOT NULL DEFAULT '',
	recorded_at TEXT NOT NULL,
	PRIMARY KEY (run_id, row_key)
);

CREATE TABLE IF NOT EXISTS review (
	run_id      TEXT NOT NULL,
	product     TEXT NOT NULL,
	note_or_url TEXT NOT NULL DEFAULT '',
	recorded_at TEXT NOT NULL
);
`

func OpenJournal(path string) (*Journal, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

func (j *Journal) BeginRun(runID, inputPath string, totalRows int) error {
	_, err := j.db.Exec(`INSERT OR REPLACE INTO runs (run_id, input_path, started_at, total_rows) VALUES (?, ?, ?, ?)`,
		runID, inputPath, nowString(), totalRows)
	return err
}

func (j *Journal) CompleteRun(runID string) error {
	_, err := j.db.Exec(`UPDATE runs SET completed_at = ? WHERE run_id = ?`, nowString(), runID)
	return err
}

func (j *Journal) RecordResult(runID string, res resolve.Result) error {
	_, err := j.db.Exec(`INSERT OR REPLACE INTO results (run_id, row_key, product, found, grams, unit, method, last_ref, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, res.RowKey, res.Name, boolToInt(res.Found), res.Grams, res.Unit, res.Method, res.LastRef, nowString())
	return err
}

func (j *Journal) RecordReview(runID string, e ReviewEntry) error {
	_, err := j.db.Exec(`INSERT INTO review (run_id, product, note_or_url, recorded_at) VALUES (?, ?, ?, ?)`,
		runID, e.Product, e.NoteOrURL, nowString())
	return err
}

// ResultsForRun loads the recorded results in row-key order, for audit and
// for resuming an interrupted run's bookkeeping.
func (j *Journal) ResultsForRun(runID string) ([]resolve.Result, error) {
	rows, err := j.db.Query(`SELECT row_key, product, found, grams, unit, method, last_ref
		FROM results WHERE run_id = ? ORDER BY CAST(row_key AS INTEGER)`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []resolve.Result
	for rows.Next() {
		var r resolve.Result
		var found int
		if err := rows.Scan(&r.RowKey, &r.Name, &found, &r.Grams, &r.Unit, &r.Method, &r.LastRef); err != nil {
			return nil, err
		}
		r.Found = found != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReviewForRun loads the manual-review entries recorded for a run.
func (j *Journal) ReviewForRun(runID string) ([]ReviewEntry, error) {
	rows, err := j.db.Query(`SELECT product, note_or_url FROM review WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReviewEntry
	for rows.Next() {
		var e ReviewEntry
		if err := rows.Scan(&e.Product, &e.NoteOrURL); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
