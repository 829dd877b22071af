package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/benchmark-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS benchmark_reports (
	id                 TEXT PRIMARY KEY,
	company_id         TEXT NOT NULL,
	template_id        TEXT NOT NULL,
	template_version   TEXT NOT NULL,
	fingerprint        TEXT NOT NULL UNIQUE,
	overall_confidence TEXT NOT NULL,
	eligible_metrics   INTEGER NOT NULL DEFAULT 0,
	total_metrics      INTEGER NOT NULL DEFAULT 0,
	report             TEXT NOT NULL,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_reports_company ON benchmark_reports(company_id);
CREATE INDEX IF NOT EXISTS idx_reports_template ON benchmark_reports(template_id);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON benchmark_reports(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const reportColumns = `id, company_id, template_id, template_version, fingerprint, overall_confidence, eligible_metrics, total_metrics, created_at`

func (s *SQLiteStore) SaveReport(ctx context.Context, report *model.BenchmarkReport) (*StoredReport, error) {
	rec, body, err := newRecord(uuid.New().String(), report, s.now().UTC())
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO benchmark_reports (`+reportColumns+`, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (fingerprint) DO NOTHING`,
		rec.ID, rec.CompanyID, rec.TemplateID, rec.TemplateVersion, rec.Fingerprint,
		string(rec.OverallConfidence), rec.EligibleMetrics, rec.TotalMetrics, rec.CreatedAt, string(body),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert report")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return s.getBy(ctx, "fingerprint", rec.Fingerprint)
	}
	return rec, nil
}

func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*StoredReport, error) {
	return s.getBy(ctx, "id", id)
}

// getBy loads one report by a unique column. column is never user input.
func (s *SQLiteStore) getBy(ctx context.Context, column, value string) (*StoredReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+`, report FROM benchmark_reports WHERE `+column+` = ?`,
		value,
	)

	var (
		r    StoredReport
		conf string
		body string
	)
	err := row.Scan(&r.ID, &r.CompanyID, &r.TemplateID, &r.TemplateVersion, &r.Fingerprint,
		&conf, &r.EligibleMetrics, &r.TotalMetrics, &r.CreatedAt, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get report %s", value)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan report")
	}
	r.OverallConfidence = model.Confidence(conf)

	r.Report = &model.BenchmarkReport{}
	if err := json.Unmarshal([]byte(body), r.Report); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal report")
	}
	return &r, nil
}

func (s *SQLiteStore) ListReports(ctx context.Context, filter ReportFilter) ([]StoredReport, error) {
	where, args := filterClause(filter, func(int) string { return "?" })
	query := `SELECT ` + reportColumns + ` FROM benchmark_reports` + where +
		` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, filter.limit(), filter.offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reports")
	}
	defer rows.Close() //nolint:errcheck

	var out []StoredReport
	for rows.Next() {
		var (
			r    StoredReport
			conf string
		)
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.TemplateID, &r.TemplateVersion, &r.Fingerprint,
			&conf, &r.EligibleMetrics, &r.TotalMetrics, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan report")
		}
		r.OverallConfidence = model.Confidence(conf)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate reports")
}

func (s *SQLiteStore) DeleteReport(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM benchmark_reports WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete report %s", id)
	}
	return checkRowsAffected(res, id)
}

// helpers

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "report %s", id)
	}
	return nil
}

// filterClause renders the WHERE clause for filter. placeholder returns the
// driver's bind marker for the n-th (1-based) argument.
func filterClause(filter ReportFilter, placeholder func(n int) string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.CompanyID != "" {
		args = append(args, filter.CompanyID)
		conds = append(conds, "company_id = "+placeholder(len(args)))
	}
	if filter.TemplateID != "" {
		args = append(args, filter.TemplateID)
		conds = append(conds, "template_id = "+placeholder(len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
