package app

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"olynk/adapters/excel"
	"olynk/domain/core"
	"olynk/domain/dataset"
	"olynk/internal"
	"olynk/internal/config"
	"olynk/internal/engine"
	"olynk/internal/errors"
	"olynk/ports"
)

// AnalysisService ties ingestion, the engine and report storage together
type AnalysisService struct {
	cfg     config.Engine
	reports ports.ReportRepository
	maxRows int
	logger  *internal.Logger
}

// AnalyzeOptions override engine settings for a single run
type AnalyzeOptions struct {
	SegmentBy  string
	DateColumn string
	// Sheet selects an Excel worksheet; the first sheet is used by default.
	Sheet string
}

// NewAnalysisService creates an analysis service. reports may be nil, in
// which case reports are returned but not stored.
func NewAnalysisService(cfg config.Engine, reports ports.ReportRepository, maxRows int, logger *internal.Logger) (*AnalysisService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{cfg: cfg, reports: reports, maxRows: maxRows, logger: logger}, nil
}

// AnalyzeFile reads a .csv or .xlsx file and analyzes it
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string, opts AnalyzeOptions) (*engine.Report, error) {
	ds, err := excel.NewDataReader(path).WithSheet(opts.Sheet).WithMaxRows(s.maxRows).ReadData()
	if err != nil {
		return nil, err
	}
	return s.AnalyzeDataset(ctx, ds, opts)
}

// AnalyzeReader analyzes an upload; the format comes from name's extension
func (s *AnalysisService) AnalyzeReader(ctx context.Context, name string, r io.Reader, opts AnalyzeOptions) (*engine.Report, error) {
	format, err := excel.FormatOf(name)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	ds, err := excel.NewDataReader(name).WithLogger(s.logger).WithSheet(opts.Sheet).WithMaxRows(s.maxRows).Read(base, format, r)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeDataset(ctx, ds, opts)
}

// AnalyzeDataset runs the engine and stores the report
func (s *AnalysisService) AnalyzeDataset(ctx context.Context, ds *dataset.Dataset, opts AnalyzeOptions) (*engine.Report, error) {
	cfg := s.cfg
	if opts.SegmentBy != "" {
		cfg.SegmentBy = opts.SegmentBy
	}
	if opts.DateColumn != "" {
		cfg.DateColumn = opts.DateColumn
	}

	e, err := engine.New(cfg, s.logger)
	if err != nil {
		return nil, err
	}
	report, err := e.Run(ctx, ds)
	if err != nil {
		return nil, err
	}

	if s.reports != nil {
		if err := s.reports.Save(ctx, report); err != nil {
			return nil, errors.Wrapf(err, "store report %s", report.RunID)
		}
	}
	return report, nil
}

// Report fetches a stored report by run ID
func (s *AnalysisService) Report(ctx context.Context, id string) (*engine.Report, error) {
	runID, err := core.ParseRunID(id)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	if s.reports == nil {
		return nil, core.NewNotFoundError("report", id)
	}
	return s.reports.Get(ctx, runID)
}

// Reports lists the newest stored reports
func (s *AnalysisService) Reports(ctx context.Context, limit int) ([]engine.ReportHeader, error) {
	if s.reports == nil {
		return []engine.ReportHeader{}, nil
	}
	return s.reports.List(ctx, limit)
}
