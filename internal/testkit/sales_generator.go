package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"olynk/domain/dataset"
)

// SalesGeneratorConfig configures the synthetic sales ledger
type SalesGeneratorConfig struct {
	Rows      int       `json:"rows"`
	StartDate time.Time `json:"start_date"`
	// Days between consecutive orders' dates cycle over this span.
	SpanDays int      `json:"span_days"`
	Regions  []string `json:"regions"`
	// DailyGrowth is added to the expected quantity per elapsed day.
	DailyGrowth float64 `json:"daily_growth"`
	// OutlierEvery injects a 20x order every n rows; zero disables it.
	OutlierEvery int   `json:"outlier_every"`
	Seed         int64 `json:"seed"`
}

// DefaultSalesConfig returns sensible defaults for sales data generation
func DefaultSalesConfig() SalesGeneratorConfig {
	return SalesGeneratorConfig{
		Rows:        240,
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		SpanDays:    120,
		Regions:     []string{"North", "South", "East", "West"},
		DailyGrowth: 0.15,
		Seed:        42,
	}
}

// SalesColumns is the column order of generated ledgers.
var SalesColumns = []string{"order_id", "order_date", "region", "quantity", "unit_price", "total_amount", "discount"}

// SalesDataGenerator generates a realistic order ledger as raw text cells,
// the way an uploaded CSV would arrive.
type SalesDataGenerator struct {
	config SalesGeneratorConfig
	rng    *rand.Rand
}

// NewSalesDataGenerator creates a new sales data generator
func NewSalesDataGenerator(config SalesGeneratorConfig) *SalesDataGenerator {
	return &SalesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns the ledger. Equal configs give equal datasets.
func (g *SalesDataGenerator) Generate() *dataset.Dataset {
	records := make([][]string, 0, g.config.Rows)
	span := g.config.SpanDays
	if span <= 0 {
		span = 1
	}
	for i := 0; i < g.config.Rows; i++ {
		day := i * span / max(g.config.Rows, 1)
		date := g.config.StartDate.AddDate(0, 0, day)
		region := g.config.Regions[i%len(g.config.Regions)]

		quantity := math.Max(1, math.Round(10+g.config.DailyGrowth*float64(day)+g.rng.NormFloat64()*1.5))
		if g.config.OutlierEvery > 0 && i > 0 && i%g.config.OutlierEvery == 0 {
			quantity *= 20
		}
		price := 20 + g.rng.Float64()*5
		discount := 0.05 + g.rng.Float64()*0.05

		records = append(records, []string{
			fmt.Sprintf("ORD-%05d", i+1),
			date.Format("2006-01-02"),
			region,
			strconv.FormatFloat(quantity, 'f', 0, 64),
			fmt.Sprintf("$%.2f", price),
			fmt.Sprintf("%.2f", quantity*price*(1-discount)),
			fmt.Sprintf("%.1f%%", discount*100),
		})
	}
	ds, err := dataset.FromRecords("sales", SalesColumns, records)
	if err != nil {
		panic(err)
	}
	return ds
}

// Records builds a text dataset from a header and rows; it panics on a
// malformed fixture.
func Records(header []string, rows ...[]string) *dataset.Dataset {
	ds, err := dataset.FromRecords("fixture", header, rows)
	if err != nil {
		panic(err)
	}
	return ds
}

// NumericColumns builds a dataset of numeric cells from column vectors of
// equal length. NaN entries become missing.
func NumericColumns(names []string, cols ...[]float64) *dataset.Dataset {
	if len(names) != len(cols) {
		panic("testkit: names and columns differ in length")
	}
	n := 0
	if len(cols) > 0 {
		n = len(cols[0])
	}
	rows := make([]dataset.Row, n)
	for r := 0; r < n; r++ {
		row := make(dataset.Row, len(names))
		for c, name := range names {
			row[name] = dataset.Numeric(cols[c][r])
		}
		rows[r] = row
	}
	ds, err := dataset.New("fixture", names, rows)
	if err != nil {
		panic(err)
	}
	return ds
}

// WithDates prepends a date column stepping one day per row from start.
func WithDates(ds *dataset.Dataset, column string, start time.Time, stepDays int) *dataset.Dataset {
	rows := make([]dataset.Row, len(ds.Rows))
	for i, src := range ds.Rows {
		row := make(dataset.Row, len(src)+1)
		for k, v := range src {
			row[k] = v
		}
		row[column] = dataset.Date(start.AddDate(0, 0, i*stepDays))
		rows[i] = row
	}
	cols := append([]string{column}, ds.Columns...)
	out, err := dataset.New(ds.Name, cols, rows)
	if err != nil {
		panic(err)
	}
	return out
}

// Normal draws n values from N(mean, sd) with a fixed seed.
func Normal(n int, mean, sd float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + sd*rng.NormFloat64()
	}
	return out
}
