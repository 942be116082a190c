package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olynk/adapters/memory"
	"olynk/domain/core"
	"olynk/internal"
	"olynk/internal/config"
	"olynk/internal/errors"
)

const ordersCSV = `order_id,order_date,region,total_amount
ORD-1,2024-01-01,North,100
ORD-2,2024-01-02,South,120
ORD-3,2024-01-03,North,140
ORD-4,2024-01-04,South,160
ORD-5,2024-01-05,North,180
ORD-6,2024-01-06,South,200
`

func newService(t *testing.T) *AnalysisService {
	t.Helper()
	svc, err := NewAnalysisService(config.DefaultEngine(), memory.NewReportRepository(), 0,
		internal.NewLoggerTo(internal.LogLevelError, &bytes.Buffer{}))
	require.NoError(t, err)
	return svc
}

func TestAnalyzeReaderStoresReport(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	report, err := svc.AnalyzeReader(ctx, "orders.csv", strings.NewReader(ordersCSV), AnalyzeOptions{SegmentBy: "region"})
	require.NoError(t, err)
	assert.Equal(t, 6, report.RowCount)
	assert.Equal(t, "region", report.Summaries.SegmentBy)

	stored, err := svc.Report(ctx, report.RunID.String())
	require.NoError(t, err)
	assert.Equal(t, report.Fingerprint, stored.Fingerprint)

	list, err := svc.Reports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, report.RunID, list[0].RunID)
}

func TestAnalyzeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(ordersCSV), 0o644))

	report, err := newService(t).AnalyzeFile(context.Background(), path, AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "orders", report.Dataset)
	require.Len(t, report.Trends, 1)
	assert.Equal(t, "total_amount", report.Trends[0].Column)
}

func TestAnalyzeErrors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.AnalyzeReader(ctx, "orders.pdf", strings.NewReader(ordersCSV), AnalyzeOptions{})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.AnalyzeReader(ctx, "orders.csv", strings.NewReader(ordersCSV), AnalyzeOptions{SegmentBy: "total_amount"})
	assert.True(t, core.IsContractViolation(err))

	_, err = svc.Report(ctx, "not-a-uuid")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.Report(ctx, core.NewRunID().String())
	assert.True(t, core.IsNotFoundError(err))
}

func TestNewAnalysisServiceRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultEngine()
	cfg.SeverityHigh = 0.1
	_, err := NewAnalysisService(cfg, nil, 0, nil)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
