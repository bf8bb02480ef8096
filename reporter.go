// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dustin/go-humanize"
)

// Reporter generates markdown reports from analysis results
type Reporter struct {
	logger *Logger
}

// NewReporter creates a new report generator
func NewReporter(logger *Logger) *Reporter {
	return &Reporter{
		logger: logger,
	}
}

// GenerateReport creates a markdown report from analysis results
func (r *Reporter) GenerateReport(result *AnalysisResult, outputPath string) error {
	r.logger.Info("Generating report")

	var writer io.Writer
	if outputPath == "" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	// Generate report content
	r.writeHeader(writer, result)
	r.writeDataQuality(writer, result)
	r.writePeakHours(writer, result)
	r.writeDailyReports(writer, result)
	r.writeSummary(writer, result)
	r.writeFooter(writer)

	if outputPath != "" {
		r.logger.Info("Report saved", "path", outputPath)
	}

	return nil
}

// writeHeader writes the report header
func (r *Reporter) writeHeader(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, "# BMRS Imbalance Analysis Report\n\n")
	fmt.Fprintf(w, "**Generated:** %s\n\n", result.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "**Analysis Period:** %s to %s (%d days)\n\n",
		result.StartDate,
		result.EndDate,
		result.PeriodDays,
	)
	fmt.Fprintf(w, "**bmrswatch version:** %s\n\n", GetVersion())
	fmt.Fprintf(w, "---\n\n")
}

// writeDataQuality writes the data quality section
func (r *Reporter) writeDataQuality(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, "## 🔍 Data Quality\n\n")

	fmt.Fprintf(w, "| Series | Periods | Missing | Interpolated | Anomalies |\n")
	fmt.Fprintf(w, "|--------|---------|---------|--------------|-----------|\n")
	fmt.Fprintf(w, "| Prices | %d | %d (%.2f%%) | %d (%.2f%%) | %d |\n",
		result.Quality.Prices.TotalPeriods,
		result.Quality.Prices.MissingPeriods,
		result.Quality.Prices.MissingPeriodsPct,
		result.Quality.Prices.InterpolatedPeriods,
		result.Quality.Prices.InterpolatedPeriodsPct,
		result.Quality.Prices.Anomalies,
	)
	fmt.Fprintf(w, "| Volumes | %d | %d (%.2f%%) | %d (%.2f%%) | - |\n",
		result.Quality.Volumes.TotalPeriods,
		result.Quality.Volumes.MissingPeriods,
		result.Quality.Volumes.MissingPeriodsPct,
		result.Quality.Volumes.InterpolatedPeriods,
		result.Quality.Volumes.InterpolatedPeriodsPct,
	)
	fmt.Fprintf(w, "\n")

	if result.Quality.Prices.Anomalies > 0 {
		fmt.Fprintf(w, "> ⚠️ **%d period(s)** reported a sell price above the buy price — an invalid market state.\n\n",
			result.Quality.Prices.Anomalies)
	}

	if result.Quality.Volumes.ZeroPeriods > 0 {
		fmt.Fprintf(w, "> ℹ️ **%d period(s)** (%.2f%%) settled with zero net imbalance volume.\n\n",
			result.Quality.Volumes.ZeroPeriods,
			result.Quality.Volumes.ZeroPeriodsPct)
	}
}

// writePeakHours writes the peak hours analysis section
func (r *Reporter) writePeakHours(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, "## ⚡ Peak Hours Analysis\n\n")

	peaks := result.PeakHours

	fmt.Fprintf(w, "### Top Hours by Total Volume\n\n")
	for _, hv := range peaks.TopHours {
		fmt.Fprintf(w, "- **%s**: %s MWh\n", FormatHour(hv.Hour), FormatVolume(hv.Volume))
	}
	fmt.Fprintf(w, "\n")

	if len(peaks.MostFrequent) > 0 {
		fmt.Fprintf(w, "### Most Frequent Peak Hours\n\n")
		for _, hf := range peaks.MostFrequent {
			avg := statByHour(result.HourlyStats, hf.Hour).AbsMean
			fmt.Fprintf(w, "- **%s**: %d day(s), avg volume %s MWh\n",
				FormatHour(hf.Hour), hf.Days, FormatVolume(avg))
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "### Highest Single Hour\n\n")
	fmt.Fprintf(w, "| Date | Time | Volume |\n")
	fmt.Fprintf(w, "|------|------|--------|\n")
	fmt.Fprintf(w, "| %s | %s | %s MWh |\n\n",
		peaks.HighestSingle.Date,
		FormatHour(peaks.HighestSingle.Hour),
		FormatVolume(peaks.HighestSingle.Volume),
	)

	fmt.Fprintf(w, "### Hourly Pattern\n\n")
	fmt.Fprintf(w, "- Most volatile hour: **%s**\n", FormatHour(peaks.MostVolatileHour))
	fmt.Fprintf(w, "- Most consistent hour: **%s**\n", FormatHour(peaks.MostConsistentHour))
	fmt.Fprintf(w, "- Largest average net short: **%s**\n", FormatHour(peaks.LargestNetShort))
	fmt.Fprintf(w, "- Largest average net long: **%s**\n\n", FormatHour(peaks.LargestNetLong))
}

// writeDailyReports writes a section per settlement date
func (r *Reporter) writeDailyReports(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, "## 📅 Daily Imbalance Reports\n\n")

	for _, m := range result.DailyMetrics {
		position := "LONG"
		if m.NetImbalanceVolume < 0 {
			position = "SHORT"
		}

		fmt.Fprintf(w, "### %s\n\n", m.Date)
		fmt.Fprintf(w, "**Total Daily Position:** %s\n\n", position)
		fmt.Fprintf(w, "| Metric | Value |\n")
		fmt.Fprintf(w, "|--------|-------|\n")
		fmt.Fprintf(w, "| Net Imbalance Volume | %s MWh |\n", FormatVolume(m.NetImbalanceVolume))
		fmt.Fprintf(w, "| Total Imbalance Volume | %s MWh |\n", FormatVolume(m.AbsImbalanceVolume))
		fmt.Fprintf(w, "| Total Imbalance Cost | %s |\n", FormatCurrency(math.Abs(m.ImbalanceCost)))
		fmt.Fprintf(w, "| Average Unit Rate | %s/MWh |\n", FormatCurrency(math.Abs(m.UnitRate)))
		fmt.Fprintf(w, "\n")

		fmt.Fprintf(w, "**Price Statistics (£/MWh):**\n\n")
		fmt.Fprintf(w, "| Price | Average | Min | Max |\n")
		fmt.Fprintf(w, "|-------|---------|-----|-----|\n")
		fmt.Fprintf(w, "| System Sell | %.2f | %.2f | %.2f |\n",
			m.SellPrice.Mean, m.SellPrice.Min, m.SellPrice.Max)
		fmt.Fprintf(w, "| System Buy | %.2f | %.2f | %.2f |\n",
			m.BuyPrice.Mean, m.BuyPrice.Min, m.BuyPrice.Max)
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "**Average Price Spread:** £%.2f/MWh\n\n",
			m.BuyPrice.Mean-m.SellPrice.Mean)
	}
}

// writeSummary writes the multi-day summary section
func (r *Reporter) writeSummary(w io.Writer, result *AnalysisResult) {
	if len(result.DailyMetrics) == 0 {
		return
	}

	fmt.Fprintf(w, "## 📊 Period Summary\n\n")

	totalCost := 0.0
	totalVolume := 0.0
	sellSum := 0.0
	buySum := 0.0
	for _, m := range result.DailyMetrics {
		totalCost += m.ImbalanceCost
		totalVolume += m.AbsImbalanceVolume
		sellSum += m.SellPrice.Mean
		buySum += m.BuyPrice.Mean
	}
	numDays := float64(len(result.DailyMetrics))

	avgUnitRate := 0.0
	if totalVolume > 0 {
		avgUnitRate = totalCost / totalVolume
	}

	fmt.Fprintf(w, "| Metric | Value |\n")
	fmt.Fprintf(w, "|--------|-------|\n")
	fmt.Fprintf(w, "| Total Imbalance Cost | %s |\n", FormatCurrency(math.Abs(totalCost)))
	fmt.Fprintf(w, "| Total Imbalance Volume | %s MWh |\n", FormatVolume(totalVolume))
	fmt.Fprintf(w, "| Average Daily Cost | %s |\n", FormatCurrency(math.Abs(totalCost)/numDays))
	fmt.Fprintf(w, "| Average Unit Rate | %s/MWh |\n", FormatCurrency(math.Abs(avgUnitRate)))
	fmt.Fprintf(w, "| Average Sell Price | £%.2f/MWh |\n", sellSum/numDays)
	fmt.Fprintf(w, "| Average Buy Price | £%.2f/MWh |\n", buySum/numDays)
	fmt.Fprintf(w, "| Average Daily Volume | %s MWh |\n\n", FormatVolume(totalVolume/numDays))
}

// writeFooter writes the report footer
func (r *Reporter) writeFooter(w io.Writer) {
	fmt.Fprintf(w, "---\n\n")
	fmt.Fprintf(w, "*Generated by [bmrswatch](https://github.com/matthewgall/bmrswatch) — data from Elexon Insights (BMRS)*\n")
}

// FormatCurrency formats a value as currency with thousands grouping
func FormatCurrency(value float64) string {
	return "£" + humanize.CommafWithDigits(value, 2)
}

// FormatVolume formats a MWh volume with thousands grouping
func FormatVolume(value float64) string {
	return humanize.CommafWithDigits(value, 2)
}

// FormatHour formats an hour of day as a HH:00-HH:00 range
func FormatHour(hour int) string {
	return fmt.Sprintf("%02d:00-%02d:00", hour, (hour+1)%24)
}
