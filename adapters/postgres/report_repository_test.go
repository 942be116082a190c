package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olynk/adapters/postgres/migrations"
	"olynk/domain/core"
	"olynk/domain/insight"
	"olynk/internal/engine"
)

// Runs only against a live database: DATABASE_URL=postgres://... go test ./adapters/postgres/
func TestReportRepositoryRoundTrip(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, url)
	require.NoError(t, err)
	defer db.Close()

	_, err = migrations.NewMigrator(db).Up(ctx)
	require.NoError(t, err)

	repo := NewReportRepository(db)
	report := &engine.Report{
		RunID:       core.NewRunID(),
		Dataset:     "sales",
		Fingerprint: core.HashParts("sales"),
		CreatedAt:   core.NewTimestamp(time.Now().UTC().Truncate(time.Millisecond)),
		RowCount:    3,
		ColumnCount: 2,
		Insights:    []insight.Insight{{ID: "abc", Severity: insight.SeverityHigh, Statement: "Sales is rising"}},
	}
	require.NoError(t, repo.Save(ctx, report))
	require.NoError(t, repo.Save(ctx, report), "save is an upsert")

	got, err := repo.Get(ctx, report.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.Dataset, got.Dataset)
	require.Len(t, got.Insights, 1)
	assert.Equal(t, "Sales is rising", got.Insights[0].Statement)

	list, err := repo.List(ctx, 100)
	require.NoError(t, err)
	var found bool
	for _, h := range list {
		if h.RunID == report.RunID {
			found = true
			assert.Equal(t, 1, h.InsightCount)
		}
	}
	assert.True(t, found)

	_, err = repo.Get(ctx, core.NewRunID())
	assert.True(t, core.IsNotFoundError(err))
}
