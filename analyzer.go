// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Analyzer runs the cleaning pipeline and derives statistics from the
// cleaned series
type Analyzer struct {
	config *Config
	logger *Logger
	charts *ChartGenerator
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(config *Config, logger *Logger) *Analyzer {
	return &Analyzer{
		config: config,
		logger: logger,
		charts: NewChartGenerator(),
	}
}

// Analyze performs complete analysis on collected settlement data
func (a *Analyzer) Analyze(data *CollectedData) (*AnalysisResult, error) {
	a.logger.Info("Starting analysis")

	prices, volumes, err := CleanAndProcess(data.Records)
	if err != nil {
		return nil, err
	}
	a.logger.LogAnalysisStage("clean_and_process")

	result := &AnalysisResult{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now(),
		StartDate:   data.StartDate,
		EndDate:     data.EndDate,
		PeriodDays:  data.Days,
		Prices:      prices,
		Volumes:     volumes,
	}

	result.Quality = SummarizeQuality(prices, volumes)
	a.logger.LogAnalysisStage("quality_summary")

	result.DailyMetrics = CalculateDailyMetrics(prices, volumes)
	a.logger.LogAnalysisStage("daily_metrics")

	result.HourlyStats = CalculateHourlyStats(volumes)
	result.PeakHours = IdentifyPeakHours(volumes, result.HourlyStats)
	a.logger.LogAnalysisStage("peak_hours")

	// Charts are non-fatal; reports render without them.
	if chart, err := a.charts.GeneratePricesChart(prices); err != nil {
		a.logger.Warn("Failed to generate prices chart", "error", err)
	} else {
		result.PricesChart = chart
	}
	if chart, err := a.charts.GenerateVolumesChart(volumes); err != nil {
		a.logger.Warn("Failed to generate volumes chart", "error", err)
	} else {
		result.VolumesChart = chart
	}
	if chart, err := a.charts.GenerateHourlyVolumeChart(result.HourlyStats); err != nil {
		a.logger.Warn("Failed to generate hourly volume chart", "error", err)
	} else {
		result.HourlyVolumeChart = chart
	}

	a.logger.Info("Analysis completed",
		"periods", len(prices),
		"days", len(result.DailyMetrics),
		"anomalies", result.Quality.Prices.Anomalies,
	)

	return result, nil
}

// CalculateDailyMetrics computes imbalance costs and price statistics per
// settlement date. The imbalance cost of a period is priced at the system
// sell price when the system is long (volume >= 0) and at the system buy
// price when short. Periods with a missing price or volume contribute
// nothing to the aggregates.
func CalculateDailyMetrics(prices []PriceRow, volumes []VolumeRow) []DailyMetrics {
	type accumulator struct {
		cost   float64
		netSum float64
		absSum float64
		sell   []float64
		buy    []float64
	}

	byDate := make(map[string]*accumulator)
	var dates []string

	for i := range volumes {
		date := volumes[i].Timestamp.Format(DateFormat)
		acc, ok := byDate[date]
		if !ok {
			acc = &accumulator{}
			byDate[date] = acc
			dates = append(dates, date)
		}

		vol := volumes[i].NetImbalanceVolume
		sell := prices[i].SystemSellPrice
		buy := prices[i].SystemBuyPrice

		if vol.Valid {
			acc.netSum += vol.Float64
			acc.absSum += math.Abs(vol.Float64)

			if vol.Float64 >= 0 && sell.Valid {
				acc.cost += vol.Float64 * sell.Float64
			} else if vol.Float64 < 0 && buy.Valid {
				acc.cost += vol.Float64 * buy.Float64
			}
		}
		if sell.Valid {
			acc.sell = append(acc.sell, sell.Float64)
		}
		if buy.Valid {
			acc.buy = append(acc.buy, buy.Float64)
		}
	}

	sort.Strings(dates)

	metrics := make([]DailyMetrics, 0, len(dates))
	for _, date := range dates {
		acc := byDate[date]

		m := DailyMetrics{
			Date:               date,
			ImbalanceCost:      acc.cost,
			NetImbalanceVolume: acc.netSum,
			AbsImbalanceVolume: acc.absSum,
			SellPrice:          describeValues(acc.sell),
			BuyPrice:           describeValues(acc.buy),
		}
		if acc.absSum > 0 {
			m.UnitRate = acc.cost / acc.absSum
		}
		metrics = append(metrics, m)
	}

	return metrics
}

// CalculateHourlyStats aggregates imbalance volumes by hour of day across the
// whole period. Missing volumes are excluded from the aggregates; hours with
// no usable data are omitted.
func CalculateHourlyStats(volumes []VolumeRow) []HourlyStats {
	absByHour := make(map[int][]float64)
	netByHour := make(map[int][]float64)

	for _, row := range volumes {
		if !row.NetImbalanceVolume.Valid {
			continue
		}
		hour := row.Timestamp.Hour()
		absByHour[hour] = append(absByHour[hour], row.AbsImbalanceVolume.Float64)
		netByHour[hour] = append(netByHour[hour], row.NetImbalanceVolume.Float64)
	}

	var stats []HourlyStats
	for hour := 0; hour < 24; hour++ {
		abs, ok := absByHour[hour]
		if !ok {
			continue
		}
		net := netByHour[hour]

		absMean := calculateMean(abs)
		hs := HourlyStats{
			Hour:      hour,
			AbsMean:   absMean,
			AbsSum:    calculateSum(abs),
			AbsStdDev: calculateStdDev(abs, absMean),
			AbsMin:    calculateMin(abs),
			AbsMax:    calculateMax(abs),
			NetMean:   calculateMean(net),
			NetSum:    calculateSum(net),
		}
		stats = append(stats, hs)
	}

	return stats
}

// IdentifyPeakHours finds the hours carrying the most imbalance volume: the
// top hours overall, the hours most often in a day's top 3, the single
// highest date+hour, and the volatility extremes.
func IdentifyPeakHours(volumes []VolumeRow, hourly []HourlyStats) PeakHours {
	var peaks PeakHours

	// Total abs volume per (date, hour).
	type dateHour struct {
		date string
		hour int
	}
	byDateHour := make(map[dateHour]float64)
	for _, row := range volumes {
		if !row.NetImbalanceVolume.Valid {
			continue
		}
		key := dateHour{row.Timestamp.Format(DateFormat), row.Timestamp.Hour()}
		byDateHour[key] += row.AbsImbalanceVolume.Float64
	}

	// Top hours by total volume across the period.
	totals := make([]HourVolume, 0, len(hourly))
	for _, hs := range hourly {
		totals = append(totals, HourVolume{Hour: hs.Hour, Volume: hs.AbsSum})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Volume != totals[j].Volume {
			return totals[i].Volume > totals[j].Volume
		}
		return totals[i].Hour < totals[j].Hour
	})
	if len(totals) > 3 {
		peaks.TopHours = totals[:3]
	} else {
		peaks.TopHours = totals
	}

	// Highest single hour, and each date's top 3 hours.
	perDate := make(map[string][]HourVolume)
	for key, volume := range byDateHour {
		perDate[key.date] = append(perDate[key.date], HourVolume{Hour: key.hour, Volume: volume})
		if volume > peaks.HighestSingle.Volume {
			peaks.HighestSingle = DailyPeak{Date: key.date, Hour: key.hour, Volume: volume}
		}
	}

	frequency := make(map[int]int)
	for _, hours := range perDate {
		sort.Slice(hours, func(i, j int) bool {
			if hours[i].Volume != hours[j].Volume {
				return hours[i].Volume > hours[j].Volume
			}
			return hours[i].Hour < hours[j].Hour
		})
		top := 3
		if len(hours) < top {
			top = len(hours)
		}
		for _, hv := range hours[:top] {
			frequency[hv.Hour]++
		}
	}

	frequent := make([]HourFrequency, 0, len(frequency))
	for hour, days := range frequency {
		frequent = append(frequent, HourFrequency{Hour: hour, Days: days})
	}
	sort.Slice(frequent, func(i, j int) bool {
		if frequent[i].Days != frequent[j].Days {
			return frequent[i].Days > frequent[j].Days
		}
		return frequent[i].Hour < frequent[j].Hour
	})
	if len(frequent) > 3 {
		peaks.MostFrequent = frequent[:3]
	} else {
		peaks.MostFrequent = frequent
	}

	// Volatility and net position extremes from the hourly statistics.
	if len(hourly) > 0 {
		peaks.MostVolatileHour = hourly[0].Hour
		peaks.MostConsistentHour = hourly[0].Hour
		peaks.LargestNetShort = hourly[0].Hour
		peaks.LargestNetLong = hourly[0].Hour
		for _, hs := range hourly[1:] {
			if hs.AbsStdDev > statByHour(hourly, peaks.MostVolatileHour).AbsStdDev {
				peaks.MostVolatileHour = hs.Hour
			}
			if hs.AbsStdDev < statByHour(hourly, peaks.MostConsistentHour).AbsStdDev {
				peaks.MostConsistentHour = hs.Hour
			}
			if hs.NetMean < statByHour(hourly, peaks.LargestNetShort).NetMean {
				peaks.LargestNetShort = hs.Hour
			}
			if hs.NetMean > statByHour(hourly, peaks.LargestNetLong).NetMean {
				peaks.LargestNetLong = hs.Hour
			}
		}
	}

	return peaks
}

// statByHour looks up the stats entry for an hour; hourly is small
func statByHour(hourly []HourlyStats, hour int) HourlyStats {
	for _, hs := range hourly {
		if hs.Hour == hour {
			return hs
		}
	}
	return HourlyStats{}
}

// describeValues computes mean/min/max over a value slice
func describeValues(values []float64) PriceStats {
	if len(values) == 0 {
		return PriceStats{}
	}
	return PriceStats{
		Mean: calculateMean(values),
		Min:  calculateMin(values),
		Max:  calculateMax(values),
	}
}

// Statistical helper functions

// calculateMean calculates the mean of a slice of float64 values
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return calculateSum(values) / float64(len(values))
}

// calculateSum calculates the sum of a slice of float64 values
func calculateSum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// calculateStdDev calculates the standard deviation
func calculateStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sumSquaredDiff := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}

	variance := sumSquaredDiff / float64(len(values))
	return math.Sqrt(variance)
}

// calculateMin returns the smallest value in the slice
func calculateMin(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// calculateMax returns the largest value in the slice
func calculateMax(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
