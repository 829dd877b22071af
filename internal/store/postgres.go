package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/benchmark-cli/internal/db"
	"github.com/sells-group/benchmark-cli/internal/model"
)

// PostgresStore implements Store using pgxpool. Metric rows are also written
// to report_metrics so variance can be queried across companies in SQL.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	now     func() time.Time
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	insertReportSQL = `INSERT INTO benchmark_reports (` + reportColumns + `, report)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (fingerprint) DO NOTHING
	RETURNING id`
	getReportByIDSQL          = `SELECT ` + reportColumns + `, report FROM benchmark_reports WHERE id = $1`
	getReportByFingerprintSQL = `SELECT ` + reportColumns + `, report FROM benchmark_reports WHERE fingerprint = $1`
	deleteReportSQL           = `DELETE FROM benchmark_reports WHERE id = $1`
)

// preparedStatements are prepared on each new connection.
var preparedStatements = map[string]string{
	"insert_report":             insertReportSQL,
	"get_report_by_id":          getReportByIDSQL,
	"get_report_by_fingerprint": getReportByFingerprintSQL,
	"delete_report":             deleteReportSQL,
}

var metricColumns = []string{
	"report_id", "company_id", "template_id", "metric_id",
	"observed", "expected_low", "expected_high", "variance", "eligible", "confidence",
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close, now: time.Now}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS benchmark_reports (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id         TEXT NOT NULL,
	template_id        TEXT NOT NULL,
	template_version   TEXT NOT NULL,
	fingerprint        TEXT NOT NULL UNIQUE,
	overall_confidence TEXT NOT NULL,
	eligible_metrics   INTEGER NOT NULL DEFAULT 0,
	total_metrics      INTEGER NOT NULL DEFAULT 0,
	report             JSONB NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reports_company ON benchmark_reports(company_id);
CREATE INDEX IF NOT EXISTS idx_reports_template ON benchmark_reports(template_id);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON benchmark_reports(created_at DESC);

CREATE TABLE IF NOT EXISTS report_metrics (
	report_id     TEXT NOT NULL REFERENCES benchmark_reports(id) ON DELETE CASCADE,
	company_id    TEXT NOT NULL,
	template_id   TEXT NOT NULL,
	metric_id     TEXT NOT NULL,
	observed      DOUBLE PRECISION,
	expected_low  DOUBLE PRECISION NOT NULL,
	expected_high DOUBLE PRECISION NOT NULL,
	variance      TEXT,
	eligible      BOOLEAN NOT NULL,
	confidence    TEXT NOT NULL,
	PRIMARY KEY (report_id, metric_id)
);

CREATE INDEX IF NOT EXISTS idx_report_metrics_metric ON report_metrics(template_id, metric_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveReport(ctx context.Context, report *model.BenchmarkReport) (*StoredReport, error) {
	rec, body, err := newRecord(uuid.New().String(), report, s.now().UTC())
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin save report")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var id string
	err = tx.QueryRow(ctx, insertReportSQL,
		rec.ID, rec.CompanyID, rec.TemplateID, rec.TemplateVersion, rec.Fingerprint,
		string(rec.OverallConfidence), rec.EligibleMetrics, rec.TotalMetrics, rec.CreatedAt, body,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Same fingerprint already stored.
		return s.getReport(ctx, getReportByFingerprintSQL, rec.Fingerprint)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert report")
	}

	if _, err := db.CopyRows(ctx, tx, pgx.Identifier{"report_metrics"}, metricColumns, metricRows(rec)); err != nil {
		return nil, eris.Wrap(err, "postgres: copy report metrics")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit save report")
	}
	return rec, nil
}

func metricRows(rec *StoredReport) [][]any {
	rows := make([][]any, 0, len(rec.Report.Metrics))
	for _, m := range rec.Report.Metrics {
		var variance *string
		if m.Variance != "" {
			v := string(m.Variance)
			variance = &v
		}
		rows = append(rows, []any{
			rec.ID, rec.CompanyID, rec.TemplateID, m.MetricID,
			m.Observed, m.ExpectedLow, m.ExpectedHigh, variance, m.Eligible, string(m.Confidence),
		})
	}
	return rows
}

func (s *PostgresStore) GetReport(ctx context.Context, id string) (*StoredReport, error) {
	return s.getReport(ctx, getReportByIDSQL, id)
}

func (s *PostgresStore) getReport(ctx context.Context, query, key string) (*StoredReport, error) {
	var (
		r    StoredReport
		conf string
		body []byte
	)
	err := s.pool.QueryRow(ctx, query, key).Scan(
		&r.ID, &r.CompanyID, &r.TemplateID, &r.TemplateVersion, &r.Fingerprint,
		&conf, &r.EligibleMetrics, &r.TotalMetrics, &r.CreatedAt, &body,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get report %s", key)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get report %s", key)
	}
	r.OverallConfidence = model.Confidence(conf)

	r.Report = &model.BenchmarkReport{}
	if err := json.Unmarshal(body, r.Report); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal report")
	}
	return &r, nil
}

func (s *PostgresStore) ListReports(ctx context.Context, filter ReportFilter) ([]StoredReport, error) {
	where, args := filterClause(filter, func(n int) string { return fmt.Sprintf("$%d", n) })
	query := fmt.Sprintf(`SELECT %s FROM benchmark_reports%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		reportColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.limit(), filter.offset())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reports")
	}
	defer rows.Close()

	var out []StoredReport
	for rows.Next() {
		var (
			r    StoredReport
			conf string
		)
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.TemplateID, &r.TemplateVersion, &r.Fingerprint,
			&conf, &r.EligibleMetrics, &r.TotalMetrics, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan report")
		}
		r.OverallConfidence = model.Confidence(conf)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate reports")
}

func (s *PostgresStore) DeleteReport(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, deleteReportSQL, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete report %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "report %s", id)
	}
	return nil
}
