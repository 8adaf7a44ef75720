// SPDX-License-Identifier: Apache-2.0

// Package store records resolution outcomes so operators can see which
// canonical fields keep failing to match across submissions.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/formresolve/formresolve-mcp/internal/resolve"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = eris.New("resolution run not found")

const schema = `
create table if not exists resolution_reports (
  run_id        text primary key,
  submission_id text not null,
  form_id       text not null default '',
  parser        text not null default '',
  created_at    integer not null,
  total         integer not null,
  matched       integer not null,
  unresolved    integer not null,
  report_json   text not null
);
create index if not exists resolution_reports_created on resolution_reports (created_at);
create table if not exists resolution_results (
  run_id         text not null references resolution_reports (run_id) on delete cascade,
  position       integer not null,
  canonical_name text not null,
  match_tier     text not null,
  matched_ref    text not null default '',
  value_json     text not null,
  primary key (run_id, position)
);`

// Store persists resolution reports in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open store %s", path)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases from splitting across connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "failed to apply store schema")
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Meta describes where a resolution came from.
type Meta struct {
	SubmissionID string
	FormID       string
	Parser       string
}

// ReportRow is a stored report summary.
type ReportRow struct {
	RunID        string         `json:"run_id" yaml:"run_id"`
	SubmissionID string         `json:"submission_id" yaml:"submission_id"`
	FormID       string         `json:"form_id,omitempty" yaml:"form_id,omitempty"`
	Parser       string         `json:"parser,omitempty" yaml:"parser,omitempty"`
	CreatedAt    time.Time      `json:"created_at" yaml:"created_at"`
	Total        int            `json:"total" yaml:"total"`
	Matched      int            `json:"matched" yaml:"matched"`
	Unresolved   int            `json:"unresolved" yaml:"unresolved"`
	Report       resolve.Report `json:"report" yaml:"report"`
}

// SaveReport stores a resolution and its per-field results in one
// transaction and returns the generated run id.
func (s *Store) SaveReport(ctx context.Context, meta Meta, res resolve.Resolution) (string, error) {
	reportJSON, err := json.Marshal(res.Report)
	if err != nil {
		return "", eris.Wrap(err, "failed to encode report")
	}

	runID := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const insertReport = `
insert into resolution_reports (
  run_id, submission_id, form_id, parser, created_at,
  total, matched, unresolved, report_json
) values (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertReport,
		runID, meta.SubmissionID, meta.FormID, meta.Parser, s.now().UTC().UnixNano(),
		res.Report.Total, res.Report.Matched(), len(res.Report.Unresolved), string(reportJSON),
	); err != nil {
		return "", eris.Wrap(err, "failed to insert report")
	}

	const insertResult = `
insert into resolution_results (
  run_id, position, canonical_name, match_tier, matched_ref, value_json
) values (?, ?, ?, ?, ?, ?)`
	for i, r := range res.Results {
		valueJSON, err := json.Marshal(r.Value)
		if err != nil {
			return "", eris.Wrapf(err, "failed to encode value of %s", r.CanonicalName)
		}
		if _, err := tx.ExecContext(ctx, insertResult,
			runID, i, r.CanonicalName, string(r.MatchTier), r.MatchedRef, string(valueJSON),
		); err != nil {
			return "", eris.Wrapf(err, "failed to insert result %s", r.CanonicalName)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", eris.Wrap(err, "failed to commit report")
	}
	return runID, nil
}

// ListReports returns the most recent reports, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]ReportRow, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
select run_id, submission_id, form_id, parser, created_at,
       total, matched, unresolved, report_json
from resolution_reports
order by created_at desc, rowid desc
limit ?`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query reports")
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var (
			row        ReportRow
			createdAt  int64
			reportJSON string
		)
		if err := rows.Scan(&row.RunID, &row.SubmissionID, &row.FormID, &row.Parser, &createdAt,
			&row.Total, &row.Matched, &row.Unresolved, &reportJSON); err != nil {
			return nil, eris.Wrap(err, "failed to scan report")
		}
		row.CreatedAt = time.Unix(0, createdAt).UTC()
		if err := json.Unmarshal([]byte(reportJSON), &row.Report); err != nil {
			return nil, eris.Wrapf(err, "failed to decode report %s", row.RunID)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to iterate reports")
	}
	return out, nil
}

// Results returns the stored per-field results of a run in request order.
func (s *Store) Results(ctx context.Context, runID string) ([]resolve.Result, error) {
	const q = `
select canonical_name, match_tier, matched_ref, value_json
from resolution_results
where run_id = ?
order by position`
	rows, err := s.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query results")
	}
	defer rows.Close()

	var out []resolve.Result
	for rows.Next() {
		var (
			r         resolve.Result
			tier      string
			valueJSON string
		)
		if err := rows.Scan(&r.CanonicalName, &tier, &r.MatchedRef, &valueJSON); err != nil {
			return nil, eris.Wrap(err, "failed to scan result")
		}
		r.MatchTier = resolve.MatchTier(tier)
		if err := json.Unmarshal([]byte(valueJSON), &r.Value); err != nil {
			return nil, eris.Wrapf(err, "failed to decode value of %s", r.CanonicalName)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to iterate results")
	}
	if len(out) == 0 {
		return nil, eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return out, nil
}
