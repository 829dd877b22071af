package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/benchmark-cli/internal/config"
	"github.com/sells-group/benchmark-cli/internal/model"
)

// ErrNotFound is returned when a report id does not exist.
var ErrNotFound = eris.New("store: report not found")

const defaultListLimit = 50

// ReportFilter specifies criteria for listing stored reports.
type ReportFilter struct {
	CompanyID  string `json:"company_id,omitempty"`
	TemplateID string `json:"template_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

func (f ReportFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

func (f ReportFilter) offset() int {
	if f.Offset < 0 {
		return 0
	}
	return f.Offset
}

// StoredReport is a persisted benchmark report. Report is nil on list results.
type StoredReport struct {
	ID                string                 `json:"id"`
	CompanyID         string                 `json:"company_id"`
	TemplateID        string                 `json:"template_id"`
	TemplateVersion   string                 `json:"template_version"`
	Fingerprint       string                 `json:"fingerprint"`
	OverallConfidence model.Confidence       `json:"overall_confidence"`
	EligibleMetrics   int                    `json:"eligible_metrics"`
	TotalMetrics      int                    `json:"total_metrics"`
	CreatedAt         time.Time              `json:"created_at"`
	Report            *model.BenchmarkReport `json:"report,omitempty"`
}

// Store persists benchmark reports. Saving a report whose fingerprint already
// exists returns the existing record instead of writing a duplicate.
type Store interface {
	SaveReport(ctx context.Context, report *model.BenchmarkReport) (*StoredReport, error)
	GetReport(ctx context.Context, id string) (*StoredReport, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]StoredReport, error)
	DeleteReport(ctx context.Context, id string) error

	Migrate(ctx context.Context) error
	Close() error
}

// Open builds the store selected by cfg.Driver and runs its migration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		st, err = NewSQLite(cfg.DatabaseURL)
	case "postgres":
		st, err = NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// newRecord prepares the record for a report about to be written.
func newRecord(id string, report *model.BenchmarkReport, now time.Time) (*StoredReport, []byte, error) {
	if report == nil {
		return nil, nil, eris.New("store: report is nil")
	}
	if report.CompanyID == "" {
		return nil, nil, eris.New("store: report company_id is required")
	}
	fp, err := report.Fingerprint()
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: fingerprint report")
	}
	body, err := json.Marshal(report)
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: marshal report")
	}
	return &StoredReport{
		ID:                id,
		CompanyID:         report.CompanyID,
		TemplateID:        report.TemplateID,
		TemplateVersion:   report.TemplateVersion,
		Fingerprint:       fp,
		OverallConfidence: report.OverallConfidence,
		EligibleMetrics:   report.EligibleMetricCount,
		TotalMetrics:      report.TotalMetricCount,
		CreatedAt:         now,
		Report:            report,
	}, body, nil
}
