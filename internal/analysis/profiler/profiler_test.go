package profiler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olynk/domain/dataset"
	"olynk/domain/profile"
	"olynk/internal/testkit"
)

func ledger() *dataset.Dataset {
	header := []string{"order_id", "customer_id", "order_date", "region", "amount", "returned", "notes"}
	regions := []string{"North", "South", "East", "West"}
	var rows [][]string
	for i := 0; i < 20; i++ {
		amount := fmt.Sprintf("$%d.50", 100+i*10)
		if i == 3 {
			amount = "$1,200.50"
		}
		if i == 4 {
			amount = "(300)"
		}
		returned := "no"
		if i%5 == 0 {
			returned = "Yes"
		}
		rows = append(rows, []string{
			fmt.Sprintf("ORD-%04d", i),
			fmt.Sprintf("%d", 1000+i),
			fmt.Sprintf("2024-03-%02d", i+1),
			regions[i%4],
			amount,
			returned,
			fmt.Sprintf("customer said thing number %d", i),
		})
	}
	return testkit.Records(header, rows...)
}

func byName(profiles []profile.ColumnProfile) map[string]profile.ColumnProfile {
	out := make(map[string]profile.ColumnProfile, len(profiles))
	for _, p := range profiles {
		out[p.Name] = p
	}
	return out
}

func TestProfileInfersColumnTypes(t *testing.T) {
	profiles := byName(Profile(ledger(), DefaultConfig()))

	assert.Equal(t, profile.TypeIdentifier, profiles["order_id"].Type)
	assert.Equal(t, profile.TypeIdentifier, profiles["customer_id"].Type)
	assert.Equal(t, profile.TypeDate, profiles["order_date"].Type)
	assert.Equal(t, profile.TypeCategorical, profiles["region"].Type)
	assert.Equal(t, profile.TypeNumeric, profiles["amount"].Type)
	assert.Equal(t, profile.TypeBoolean, profiles["returned"].Type)
	assert.Equal(t, profile.TypeText, profiles["notes"].Type)

	amount := profiles["amount"]
	require.NotNil(t, amount.Min)
	require.NotNil(t, amount.Max)
	assert.Equal(t, -300.0, *amount.Min)
	assert.Equal(t, 1200.5, *amount.Max)

	region := profiles["region"]
	assert.Equal(t, 4, region.Cardinality)
	require.Len(t, region.TopValues, 4)
	assert.Equal(t, profile.ValueCount{Value: "East", Count: 5}, region.TopValues[0])

	date := profiles["order_date"]
	require.NotNil(t, date.Earliest)
	assert.Equal(t, "2024-03-01", date.Earliest.Format("2006-01-02"))
	assert.Equal(t, "2024-03-20", date.Latest.Format("2006-01-02"))

	returned := profiles["returned"]
	require.Len(t, returned.TopValues, 2)
	assert.Equal(t, profile.ValueCount{Value: "false", Count: 16}, returned.TopValues[0])
}

func TestProfileMissingSentinels(t *testing.T) {
	ds := testkit.Records([]string{"qty"},
		[]string{""}, []string{"   "}, []string{"NA"}, []string{"n/a"},
		[]string{"NULL"}, []string{"-"}, []string{"5"}, []string{"7"})

	p := Profile(ds, DefaultConfig())[0]
	assert.Equal(t, 6, p.MissingCount)
	assert.InDelta(t, 0.75, p.MissingRate, 1e-12)
	assert.Equal(t, profile.TypeNumeric, p.Type)
	assert.Equal(t, 2, p.NonMissing())
}

func TestProfileDegradesSoftly(t *testing.T) {
	ds := testkit.Records([]string{"mixed", "empty"},
		[]string{"12", ""}, []string{"apple", "NA"}, []string{"2024-01-01", ""}, []string{"yes", "-"})

	profiles := byName(Profile(ds, DefaultConfig()))
	assert.Equal(t, profile.TypeText, profiles["mixed"].Type)
	assert.Equal(t, profile.TypeText, profiles["empty"].Type)
	assert.Equal(t, 0, profiles["empty"].Cardinality)
	assert.Equal(t, 0.0, profiles["empty"].QualityScore)
}

func TestBuildResolvesUnparseableCellsToMissing(t *testing.T) {
	rows := make([][]string, 0, 10)
	for i := 0; i < 9; i++ {
		rows = append(rows, []string{fmt.Sprintf("%d", i)})
	}
	rows = append(rows, []string{"oops"})
	frame := Build(testkit.Records([]string{"units"}, rows...), DefaultConfig())

	require.Len(t, frame.Profiles, 1)
	assert.Equal(t, profile.TypeNumeric, frame.Profiles[0].Type)
	assert.InDelta(t, 0.9, frame.Profiles[0].ParseRatio, 1e-12)
	assert.True(t, frame.Cells[0][9].IsMissing())
	f, ok := frame.Cells[0][4].Float()
	assert.True(t, ok)
	assert.Equal(t, 4.0, f)
	assert.Len(t, frame.Present(0), 9)
}

func TestProfileDeterministic(t *testing.T) {
	ds := testkit.NewSalesDataGenerator(testkit.DefaultSalesConfig()).Generate()
	assert.Equal(t, Profile(ds, DefaultConfig()), Profile(ds, DefaultConfig()))
}

func TestProfileEmptyInputs(t *testing.T) {
	noColumns := &dataset.Dataset{}
	assert.Empty(t, Profile(noColumns, DefaultConfig()))
	assert.True(t, Build(noColumns, DefaultConfig()).IsEmpty())

	noRows := &dataset.Dataset{Columns: []string{"a", "b"}}
	profiles := Profile(noRows, DefaultConfig())
	require.Len(t, profiles, 2)
	assert.Equal(t, profile.TypeText, profiles[0].Type)
	assert.Equal(t, 0, profiles[0].RowCount)
}

func TestParseNumericFormats(t *testing.T) {
	cases := map[string]float64{
		"1,234":     1234,
		"$1,234.50": 1234.5,
		"(42)":      -42,
		"12.5%":     12.5,
		"12,5":      12.5,
		"1.234,56":  1234.56,
		"€ 99":      99,
		"-3e2":      -300,
	}
	for in, want := range cases {
		got, ok := parseNumeric(dataset.Text(in))
		if assert.True(t, ok, in) {
			assert.InDelta(t, want, got, 1e-9, in)
		}
	}
	for _, in := range []string{"abc", "12 34", "2024-01-05", ""} {
		_, ok := parseNumeric(dataset.Text(in))
		assert.False(t, ok, in)
	}
}

func TestQualityReportsIssues(t *testing.T) {
	ds := testkit.Records([]string{"a", "b"},
		[]string{"1", ""}, []string{"2", ""}, []string{"3", "x"}, []string{"4", ""}, []string{"5", ""})
	q := Quality(Profile(ds, DefaultConfig()))

	assert.InDelta(t, 0.6, q.Score, 1e-12)
	require.Len(t, q.Issues, 1)
	assert.Contains(t, q.Issues[0], `column "b" is 80% empty`)
}

func TestIdentifierNamePatterns(t *testing.T) {
	for _, name := range []string{"id", "ID", "order_id", "customer ID", "sku", "productId", "invoice_number", "uuid"} {
		assert.True(t, looksLikeIdentifier(name), name)
	}
	for _, name := range []string{"paid", "amount", "idle_minutes", "valid"} {
		assert.False(t, looksLikeIdentifier(name), name)
	}
}
