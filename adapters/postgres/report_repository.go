package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"olynk/domain/core"
	"olynk/internal/engine"
	"olynk/internal/errors"
	"olynk/ports"
)

// Connect opens and pings a Postgres database.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// reportRepository implements ports.ReportRepository over the
// analysis_reports table; the full report is stored as JSONB.
type reportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &reportRepository{db: db}
}

type reportRow struct {
	RunID        string    `db:"run_id"`
	Dataset      string    `db:"dataset"`
	Fingerprint  string    `db:"fingerprint"`
	RowCount     int       `db:"row_count"`
	ColumnCount  int       `db:"column_count"`
	InsightCount int       `db:"insight_count"`
	CreatedAt    time.Time `db:"created_at"`
}

func (row reportRow) header() engine.ReportHeader {
	return engine.ReportHeader{
		RunID:        core.RunID(row.RunID),
		Dataset:      row.Dataset,
		Fingerprint:  core.Hash(row.Fingerprint),
		RowCount:     row.RowCount,
		ColumnCount:  row.ColumnCount,
		InsightCount: row.InsightCount,
		CreatedAt:    core.NewTimestamp(row.CreatedAt.UTC()),
	}
}

// Save upserts a report by run ID.
func (r *reportRepository) Save(ctx context.Context, report *engine.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `INSERT INTO analysis_reports (
		run_id, dataset, fingerprint, row_count, column_count, insight_count, report, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (run_id) DO UPDATE SET
		dataset = EXCLUDED.dataset,
		fingerprint = EXCLUDED.fingerprint,
		row_count = EXCLUDED.row_count,
		column_count = EXCLUDED.column_count,
		insight_count = EXCLUDED.insight_count,
		report = EXCLUDED.report`

	_, err = r.db.ExecContext(ctx, query,
		report.RunID.String(), report.Dataset, report.Fingerprint.String(), report.RowCount,
		report.ColumnCount, len(report.Insights), body, report.CreatedAt.Time(),
	)
	if err != nil {
		return errors.DatabaseError("failed to save report", err)
	}
	return nil
}

// Get loads a full report.
func (r *reportRepository) Get(ctx context.Context, id core.RunID) (*engine.Report, error) {
	var body []byte
	err := r.db.GetContext(ctx, &body, `SELECT report FROM analysis_reports WHERE run_id = $1`, id.String())
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("report", id.String())
		}
		return nil, errors.DatabaseError("failed to get report", err)
	}

	var report engine.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", id, err)
	}
	return &report, nil
}

// List returns report headers, newest first.
func (r *reportRepository) List(ctx context.Context, limit int) ([]engine.ReportHeader, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []reportRow
	err := r.db.SelectContext(ctx, &rows, `SELECT
		run_id, dataset, fingerprint, row_count, column_count, insight_count, created_at
	FROM analysis_reports
	ORDER BY created_at DESC
	LIMIT $1`, limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list reports", err)
	}

	out := make([]engine.ReportHeader, len(rows))
	for i, row := range rows {
		out[i] = row.header()
	}
	return out, nil
}
