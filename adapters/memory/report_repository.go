package memory

import (
	"context"
	"sort"
	"sync"

	"olynk/domain/core"
	"olynk/internal/engine"
	"olynk/ports"
)

// DefaultCapacity is the number of reports kept by NewReportRepository.
const DefaultCapacity = 500

// reportRepository keeps the most recently saved reports in process memory.
// It is used when no database is configured.
type reportRepository struct {
	mu       sync.RWMutex
	capacity int
	reports  map[core.RunID]engine.Report
	order    []core.RunID
}

// NewReportRepository creates an empty in-memory store holding up to
// DefaultCapacity reports.
func NewReportRepository() ports.ReportRepository {
	return NewBoundedReportRepository(DefaultCapacity)
}

// NewBoundedReportRepository creates a store that evicts the oldest saved
// report once capacity is reached. A capacity below 1 uses DefaultCapacity.
func NewBoundedReportRepository(capacity int) ports.ReportRepository {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &reportRepository{capacity: capacity, reports: make(map[core.RunID]engine.Report)}
}

func (r *reportRepository) Save(ctx context.Context, report *engine.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[report.RunID]; !ok {
		r.order = append(r.order, report.RunID)
	}
	r.reports[report.RunID] = *report
	for len(r.order) > r.capacity {
		delete(r.reports, r.order[0])
		r.order = r.order[1:]
	}
	return nil
}

func (r *reportRepository) Get(ctx context.Context, id core.RunID) (*engine.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, core.NewNotFoundError("report", id.String())
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, limit int) ([]engine.ReportHeader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]engine.ReportHeader, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		report := r.reports[r.order[i]]
		out = append(out, report.Header())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Time().After(out[j].CreatedAt.Time())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
