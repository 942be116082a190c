package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"olynk/domain/core"
	"olynk/domain/dataset"
	"olynk/domain/findings"
	"olynk/domain/insight"
	"olynk/domain/profile"
	"olynk/internal"
	"olynk/internal/analysis/anomaly"
	"olynk/internal/analysis/correlation"
	insightsynth "olynk/internal/analysis/insight"
	"olynk/internal/analysis/profiler"
	"olynk/internal/analysis/stats"
	"olynk/internal/analysis/timeseries"
	"olynk/internal/analysis/trend"
	"olynk/internal/config"
	"olynk/internal/errors"
)

// Report is the complete output of one analysis run.
type Report struct {
	RunID        core.RunID                    `json:"run_id"`
	Dataset      string                        `json:"dataset"`
	Fingerprint  core.Hash                     `json:"fingerprint"`
	CreatedAt    core.Timestamp                `json:"created_at"`
	RowCount     int                           `json:"row_count"`
	ColumnCount  int                           `json:"column_count"`
	Profiles     []profile.ColumnProfile       `json:"profiles"`
	Quality      profile.DataQuality           `json:"quality"`
	Summaries    findings.Summaries            `json:"summaries"`
	Trends       []findings.TrendFinding       `json:"trends"`
	Anomalies    []findings.AnomalyFinding     `json:"anomalies"`
	Correlations []findings.CorrelationFinding `json:"correlations"`
	Insights     []insight.Insight             `json:"insights"`
	DurationMs   int64                         `json:"duration_ms"`
}

// Engine runs the analysis pipeline with a fixed configuration.
type Engine struct {
	cfg    config.Engine
	logger *internal.Logger
}

// New validates cfg and returns an engine. A nil logger uses the default.
func New(cfg config.Engine, logger *internal.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{cfg: cfg, logger: logger.With("Engine")}, nil
}

// Run analyzes ds with cfg using the default logger.
func Run(ctx context.Context, ds *dataset.Dataset, cfg config.Engine) (*Report, error) {
	e, err := New(cfg, nil)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, ds)
}

// Config returns the engine's thresholds.
func (e *Engine) Config() config.Engine { return e.cfg }

// Run profiles ds, runs statistics, trend, anomaly and correlation analysis
// concurrently over the shared frame, and synthesizes insights once all
// four have finished. Only contract violations are returned as errors.
func (e *Engine) Run(ctx context.Context, ds *dataset.Dataset) (*Report, error) {
	start := time.Now()
	if ds == nil {
		return nil, errors.ContractViolation(core.NewContractError(core.ErrInconsistentColumns, "nil dataset"))
	}
	if err := ds.Validate(); err != nil {
		return nil, errors.ContractViolation(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:        core.NewRunID(),
		Dataset:      ds.Name,
		Fingerprint:  ds.Fingerprint(),
		CreatedAt:    core.Now(),
		RowCount:     ds.Len(),
		ColumnCount:  len(ds.Columns),
		Trends:       []findings.TrendFinding{},
		Anomalies:    []findings.AnomalyFinding{},
		Correlations: []findings.CorrelationFinding{},
		Insights:     []insight.Insight{},
	}

	frame := profiler.Build(ds, e.profilerConfig())
	report.Profiles = frame.Profiles
	report.Quality = profiler.Quality(frame.Profiles)
	e.logger.Debug("profiled %d columns over %d rows in %v", len(frame.Profiles), frame.Rows, time.Since(start))

	if ds.IsEmpty() {
		e.logger.Info("dataset %q is empty, no findings", ds.Name)
		report.DurationMs = time.Since(start).Milliseconds()
		return report, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	stage := func(name string, fn func() error) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t := time.Now()
			if err := fn(); err != nil {
				return err
			}
			e.logger.Debug("%s finished in %v", name, time.Since(t))
			return nil
		})
	}

	stage("statistics", func() error {
		summaries, err := stats.Summarize(frame, e.statsConfig())
		if err != nil {
			return errors.ContractViolation(err)
		}
		report.Summaries = summaries
		return nil
	})
	stage("trend", func() error {
		if t := trend.Detect(frame, e.trendConfig()); t != nil {
			report.Trends = t
		}
		return nil
	})
	stage("anomaly", func() error {
		if a := anomaly.Detect(frame, e.anomalyConfig()); a != nil {
			report.Anomalies = a
		}
		return nil
	})
	stage("correlation", func() error {
		if c := correlation.Analyze(frame, e.correlationConfig()); c != nil {
			report.Correlations = c
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		e.logger.Warn("run on %q aborted: %v", ds.Name, err)
		return nil, err
	}

	if ins := insightsynth.Synthesize(insightsynth.Inputs{
		Profiles:     report.Profiles,
		Summaries:    report.Summaries,
		Trends:       report.Trends,
		Anomalies:    report.Anomalies,
		Correlations: report.Correlations,
	}, e.insightConfig()); ins != nil {
		report.Insights = ins
	}

	report.DurationMs = time.Since(start).Milliseconds()
	e.logger.Info("analyzed %q: %d rows, %d columns, %d trends, %d anomalies, %d correlations, %d insights in %dms",
		ds.Name, report.RowCount, report.ColumnCount, len(report.Trends), len(report.Anomalies),
		len(report.Correlations), len(report.Insights), report.DurationMs)
	return report, nil
}

func (e *Engine) profilerConfig() profiler.Config {
	return profiler.Config{
		TypeThreshold:         e.cfg.TypeThreshold,
		CategoricalRatio:      e.cfg.CategoricalRatio,
		MaxCategories:         e.cfg.MaxCategories,
		IdentifierUniqueRatio: e.cfg.IdentifierUniqueRatio,
	}
}

func (e *Engine) statsConfig() stats.Config {
	return stats.Config{
		SegmentBy:      e.cfg.SegmentBy,
		MinSegmentRows: e.cfg.MinSegmentRows,
		DateColumn:     e.cfg.DateColumn,
		Granularity:    findings.Granularity(e.cfg.Granularity),
		Aggregation:    timeseries.Aggregation(e.cfg.Aggregation),
	}
}

func (e *Engine) trendConfig() trend.Config {
	return trend.Config{
		DateColumn:           e.cfg.DateColumn,
		Granularity:          findings.Granularity(e.cfg.Granularity),
		Aggregation:          timeseries.Aggregation(e.cfg.Aggregation),
		MinBuckets:           e.cfg.MinTrendBuckets,
		NoiseFraction:        e.cfg.NoiseFraction,
		SeasonalityThreshold: e.cfg.SeasonalityThreshold,
		ForecastPeriods:      e.cfg.ForecastPeriods,
	}
}

func (e *Engine) anomalyConfig() anomaly.Config {
	return anomaly.Config{
		ZScoreThreshold:        e.cfg.ZScoreThreshold,
		IQRMultiplier:          e.cfg.IQRMultiplier,
		MultivariatePercentile: e.cfg.MultivariatePercentile,
	}
}

func (e *Engine) correlationConfig() correlation.Config {
	return correlation.Config{
		MinSamples:         e.cfg.MinCorrelationSamples,
		RecommendedSamples: e.cfg.RecommendedCorrelationSamples,
	}
}

func (e *Engine) insightConfig() insightsynth.Config {
	cfg := insightsynth.DefaultConfig()
	cfg.MinTrendConfidence = e.cfg.MinTrendConfidence
	cfg.MinAnomalyScore = e.cfg.MinAnomalyScore
	cfg.SeverityHigh = e.cfg.SeverityHigh
	cfg.SeverityMedium = e.cfg.SeverityMedium
	cfg.MaxInsights = e.cfg.MaxInsights
	return cfg
}

// ReportHeader is the listing view of a stored report.
type ReportHeader struct {
	RunID        core.RunID     `json:"run_id"`
	Dataset      string         `json:"dataset"`
	Fingerprint  core.Hash      `json:"fingerprint"`
	RowCount     int            `json:"row_count"`
	ColumnCount  int            `json:"column_count"`
	InsightCount int            `json:"insight_count"`
	CreatedAt    core.Timestamp `json:"created_at"`
}

// Header summarizes the report for listings.
func (r *Report) Header() ReportHeader {
	return ReportHeader{
		RunID:        r.RunID,
		Dataset:      r.Dataset,
		Fingerprint:  r.Fingerprint,
		RowCount:     r.RowCount,
		ColumnCount:  r.ColumnCount,
		InsightCount: len(r.Insights),
		CreatedAt:    r.CreatedAt,
	}
}
