// Package trend fits linear trends and detects seasonality over
// time-bucketed numeric columns.
package trend

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"olynk/domain/findings"
	"olynk/domain/profile"
	"olynk/internal/analysis/numeric"
	"olynk/internal/analysis/timeseries"
)

// Config controls bucketing, classification and forecasting.
type Config struct {
	DateColumn  string
	Granularity findings.Granularity
	Aggregation timeseries.Aggregation
	// MinBuckets below which no trend is reported.
	MinBuckets int
	// NoiseFraction: the fitted change across the series must exceed this
	// fraction of the series standard deviation to count as trending.
	NoiseFraction        float64
	SeasonalityThreshold float64
	ForecastPeriods      int
}

// DefaultConfig returns the trend defaults.
func DefaultConfig() Config {
	return Config{
		Aggregation:          timeseries.Mean,
		MinBuckets:           4,
		NoiseFraction:        0.5,
		SeasonalityThreshold: 0.3,
		ForecastPeriods:      7,
	}
}

// candidateLags are the seasonal periods worth testing per bucket width.
var candidateLags = map[findings.Granularity][]int{
	findings.Daily:   {7, 30},
	findings.Weekly:  {4, 13, 52},
	findings.Monthly: {3, 12},
}

const forecastZ = 1.96

// Detect returns at most one finding per numeric column, in column order.
// Without a date column there is nothing to detect.
func Detect(frame *profile.Frame, cfg Config) []findings.TrendFinding {
	if frame.IsEmpty() {
		return nil
	}
	dateCol, ok := frame.DateColumn(cfg.DateColumn)
	if !ok {
		return nil
	}

	var out []findings.TrendFinding
	for _, col := range frame.NumericColumns() {
		series := timeseries.Bucketize(frame.Cells[dateCol], frame.Cells[col], cfg.Granularity, cfg.Aggregation)
		if series.Len() < cfg.MinBuckets {
			continue
		}
		f := Fit(series, cfg)
		f.Column = frame.Profiles[col].Name
		f.DateColumn = frame.Profiles[dateCol].Name
		out = append(out, f)
	}
	return out
}

// Fit runs the regression, seasonality scan and forecast over one series.
// The series must hold at least three buckets.
func Fit(series timeseries.Series, cfg Config) findings.TrendFinding {
	x := series.Indices()
	y := series.Values()
	n := len(y)

	f := findings.TrendFinding{
		Granularity: series.Granularity,
		Buckets:     n,
		Direction:   findings.Flat,
	}

	mean := numeric.Mean(y)
	sd := numeric.StdDev(y)
	if numeric.NearZero(sd, mean) {
		f.Intercept = mean
		f.Forecast = forecast(series, mean, 0, 0, cfg.ForecastPeriods)
		return f
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	f.Slope = beta
	f.Intercept = alpha
	f.Confidence = numeric.Clamp(stat.RSquared(x, y, nil, alpha, beta), 0, 1)

	span := x[n-1] - x[0]
	if math.Abs(beta)*span > cfg.NoiseFraction*sd {
		if beta > 0 {
			f.Direction = findings.Increasing
		} else {
			f.Direction = findings.Decreasing
		}
	}

	residuals := make([]float64, n)
	var sse float64
	for i := range y {
		residuals[i] = y[i] - (alpha + beta*x[i])
		sse += residuals[i] * residuals[i]
	}

	if series.Dense() {
		f.SeasonalityPeriod, f.SeasonalityStrength = seasonality(residuals, candidateLags[series.Granularity], cfg.SeasonalityThreshold)
	}

	residualSD := 0.0
	if n > 2 {
		residualSD = math.Sqrt(sse / float64(n-2))
	}
	f.Forecast = forecast(series, alpha, beta, residualSD, cfg.ForecastPeriods)
	return f
}

// seasonality returns the lag with the strongest autocorrelation above
// both the configured threshold and the 95% white-noise bound 1.96/sqrt(n).
func seasonality(residuals []float64, lags []int, threshold float64) (int, float64) {
	n := len(residuals)
	bound := math.Max(threshold, forecastZ/math.Sqrt(float64(n)))
	bestLag, bestAC := 0, 0.0
	for _, lag := range lags {
		if lag >= n/2 {
			continue
		}
		ac := numeric.Autocorrelation(residuals, lag)
		if ac > bound && ac > bestAC {
			bestLag, bestAC = lag, ac
		}
	}
	return bestLag, bestAC
}

func forecast(series timeseries.Series, alpha, beta, residualSD float64, periods int) []findings.ForecastPoint {
	if periods <= 0 || series.Len() == 0 {
		return nil
	}
	last := series.Points[series.Len()-1]
	out := make([]findings.ForecastPoint, periods)
	for k := 1; k <= periods; k++ {
		v := alpha + beta*float64(last.Index+k)
		out[k-1] = findings.ForecastPoint{
			Period: timeseries.Advance(last.Start, series.Granularity, k),
			Value:  v,
			Lower:  v - forecastZ*residualSD,
			Upper:  v + forecastZ*residualSD,
		}
	}
	return out
}
