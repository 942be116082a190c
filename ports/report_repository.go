package ports

import (
	"context"

	"olynk/domain/core"
	"olynk/internal/engine"
)

// ReportRepository stores analysis reports
type ReportRepository interface {
	Save(ctx context.Context, report *engine.Report) error
	// Get returns core.ErrReportNotFound when no report has the ID.
	Get(ctx context.Context, id core.RunID) (*engine.Report, error)
	// List returns the newest reports first.
	List(ctx context.Context, limit int) ([]engine.ReportHeader, error)
}
