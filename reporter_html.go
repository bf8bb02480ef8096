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
)

// HTMLReporter generates HTML dashboards from analysis results
type HTMLReporter struct {
	logger *Logger
}

// NewHTMLReporter creates a new HTML report generator
func NewHTMLReporter(logger *Logger) *HTMLReporter {
	return &HTMLReporter{
		logger: logger,
	}
}

// GenerateHTMLReport generates an HTML dashboard
func (r *HTMLReporter) GenerateHTMLReport(result *AnalysisResult, outputPath string) error {
	r.logger.Info("Generating HTML report")

	var writer io.Writer
	if outputPath == "" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create HTML report file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	// Generate HTML report content
	r.writeHTMLHeader(writer, result)
	r.writeHTMLSummary(writer, result)
	r.writeHTMLCharts(writer, result)
	r.writeHTMLDataQuality(writer, result)
	r.writeHTMLPeakHours(writer, result)
	r.writeHTMLDailyMetrics(writer, result)
	r.writeHTMLFooter(writer)

	if outputPath != "" {
		r.logger.Info("HTML report saved", "path", outputPath)
	}

	return nil
}

func (r *HTMLReporter) writeHTMLHeader(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>BMRS Imbalance Analysis Dashboard</title>
    <style>
        :root {
            --primary-color: #FF006E;
            --secondary-color: #00C896;
            --warning-color: #FFB800;
            --danger-color: #FF006E;
            --success-color: #00C896;
            --bg-color: #0A0F1E;
            --card-bg: #1A2332;
            --text-color: #E8EAF6;
            --text-muted: #9FA8DA;
            --border-color: #2A3550;
        }

        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            background: var(--bg-color);
            color: var(--text-color);
            line-height: 1.6;
            padding: 20px;
        }

        .container {
            max-width: 1200px;
            margin: 0 auto;
        }

        header {
            background: linear-gradient(135deg, var(--primary-color), var(--secondary-color));
            padding: 40px;
            border-radius: 16px;
            margin-bottom: 30px;
            box-shadow: 0 8px 32px rgba(255, 0, 110, 0.2);
        }

        h1 {
            font-size: 2.5em;
            margin-bottom: 10px;
            font-weight: 700;
        }

        .subtitle {
            color: rgba(255, 255, 255, 0.9);
            font-size: 1.1em;
        }

        .card {
            background: var(--card-bg);
            border-radius: 12px;
            padding: 30px;
            margin-bottom: 30px;
            border: 1px solid var(--border-color);
            box-shadow: 0 4px 16px rgba(0, 0, 0, 0.3);
        }

        h2 {
            color: var(--primary-color);
            margin-bottom: 20px;
            font-size: 1.8em;
            border-bottom: 2px solid var(--border-color);
            padding-bottom: 10px;
        }

        h3 {
            color: var(--secondary-color);
            margin: 25px 0 15px 0;
            font-size: 1.4em;
        }

        table {
            width: 100%%;
            border-collapse: collapse;
            margin: 20px 0;
        }

        th, td {
            padding: 12px;
            text-align: left;
            border-bottom: 1px solid var(--border-color);
        }

        th {
            background: rgba(255, 0, 110, 0.1);
            color: var(--primary-color);
            font-weight: 600;
        }

        tr:hover {
            background: rgba(0, 200, 150, 0.05);
        }

        .metric-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin: 20px 0;
        }

        .metric-card {
            background: rgba(255, 0, 110, 0.05);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 20px;
            text-align: center;
        }

        .metric-value {
            font-size: 2em;
            font-weight: bold;
            color: var(--secondary-color);
            margin: 10px 0;
        }

        .metric-label {
            color: var(--text-muted);
            font-size: 0.9em;
        }

        .badge {
            display: inline-block;
            padding: 6px 12px;
            border-radius: 20px;
            font-size: 0.85em;
            font-weight: 600;
            margin: 5px;
        }

        .badge-success {
            background: var(--success-color);
            color: white;
        }

        .badge-warning {
            background: var(--warning-color);
            color: #0A0F1E;
        }

        .badge-danger {
            background: var(--danger-color);
            color: white;
        }

        .badge-info {
            background: #3F51B5;
            color: white;
        }

        .chart {
            width: 100%%;
            border-radius: 8px;
            margin: 15px 0;
        }

        footer {
            text-align: center;
            padding: 30px;
            color: var(--text-muted);
            border-top: 1px solid var(--border-color);
            margin-top: 40px;
        }

        @media (max-width: 768px) {
            body {
                padding: 10px;
            }

            header {
                padding: 20px;
            }

            h1 {
                font-size: 1.8em;
            }

            .card {
                padding: 20px;
            }

            table {
                font-size: 0.9em;
            }
        }

        @media print {
            body {
                background: white;
                color: black;
            }

            .card {
                border: 1px solid #ddd;
                break-inside: avoid;
            }
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>⚡ BMRS Imbalance Analysis</h1>
            <div class="subtitle">Generated: %s</div>
            <div class="subtitle">Analysis Period: %s to %s (%d days)</div>
            <div class="subtitle" style="opacity: 0.7; font-size: 0.9em; margin-top: 10px;">bmrswatch %s</div>
        </header>
`,
		result.GeneratedAt.Format("Monday, 2 January 2006 at 15:04"),
		result.StartDate,
		result.EndDate,
		result.PeriodDays,
		GetVersion(),
	)
}

func (r *HTMLReporter) writeHTMLSummary(w io.Writer, result *AnalysisResult) {
	totalCost := 0.0
	totalVolume := 0.0
	for _, m := range result.DailyMetrics {
		totalCost += m.ImbalanceCost
		totalVolume += m.AbsImbalanceVolume
	}

	anomalyStatus := "success"
	if result.Quality.Prices.Anomalies > 0 {
		anomalyStatus = "warning"
	}

	fmt.Fprintf(w, `
        <div class="card">
            <h2>📊 Summary</h2>

            <div class="metric-grid">
                <div class="metric-card">
                    <div class="metric-label">Settlement Periods</div>
                    <div class="metric-value">%d</div>
                    <span class="badge badge-info">30-Minute Periods</span>
                </div>
                <div class="metric-card">
                    <div class="metric-label">Total Imbalance Cost</div>
                    <div class="metric-value">%s</div>
                    <span class="badge badge-info">Across Period</span>
                </div>
                <div class="metric-card">
                    <div class="metric-label">Total Imbalance Volume</div>
                    <div class="metric-value">%s MWh</div>
                    <span class="badge badge-info">Absolute</span>
                </div>
                <div class="metric-card">
                    <div class="metric-label">Price Anomalies</div>
                    <div class="metric-value">%d</div>
                    <span class="badge badge-%s">Sell &gt; Buy</span>
                </div>
            </div>
        </div>
`,
		result.Quality.Prices.TotalPeriods,
		FormatCurrency(math.Abs(totalCost)),
		FormatVolume(totalVolume),
		result.Quality.Prices.Anomalies,
		anomalyStatus,
	)
}

func (r *HTMLReporter) writeHTMLCharts(w io.Writer, result *AnalysisResult) {
	if result.PricesChart == "" && result.VolumesChart == "" && result.HourlyVolumeChart == "" {
		return
	}

	fmt.Fprintf(w, `
        <div class="card">
            <h2>📈 Charts</h2>
`)

	if result.PricesChart != "" {
		fmt.Fprintf(w, `            <h3>System Prices</h3>
            <img class="chart" src="data:image/png;base64,%s" alt="System prices over time">
`, result.PricesChart)
	}
	if result.VolumesChart != "" {
		fmt.Fprintf(w, `            <h3>Net Imbalance Volume</h3>
            <img class="chart" src="data:image/png;base64,%s" alt="Net imbalance volume over time">
`, result.VolumesChart)
	}
	if result.HourlyVolumeChart != "" {
		fmt.Fprintf(w, `            <h3>Volume by Hour of Day</h3>
            <img class="chart" src="data:image/png;base64,%s" alt="Total imbalance volume by hour">
`, result.HourlyVolumeChart)
	}

	fmt.Fprintf(w, `        </div>
`)
}

func (r *HTMLReporter) writeHTMLDataQuality(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, `
        <div class="card">
            <h2>🔍 Data Quality</h2>
            <table>
                <thead>
                    <tr>
                        <th>Series</th>
                        <th>Periods</th>
                        <th>Missing</th>
                        <th>Interpolated</th>
                        <th>Anomalies</th>
                    </tr>
                </thead>
                <tbody>
                    <tr>
                        <td>Prices</td>
                        <td>%d</td>
                        <td>%d (%.2f%%)</td>
                        <td>%d (%.2f%%)</td>
                        <td>%d</td>
                    </tr>
                    <tr>
                        <td>Volumes</td>
                        <td>%d</td>
                        <td>%d (%.2f%%)</td>
                        <td>%d (%.2f%%)</td>
                        <td>-</td>
                    </tr>
                </tbody>
            </table>
        </div>
`,
		result.Quality.Prices.TotalPeriods,
		result.Quality.Prices.MissingPeriods,
		result.Quality.Prices.MissingPeriodsPct,
		result.Quality.Prices.InterpolatedPeriods,
		result.Quality.Prices.InterpolatedPeriodsPct,
		result.Quality.Prices.Anomalies,
		result.Quality.Volumes.TotalPeriods,
		result.Quality.Volumes.MissingPeriods,
		result.Quality.Volumes.MissingPeriodsPct,
		result.Quality.Volumes.InterpolatedPeriods,
		result.Quality.Volumes.InterpolatedPeriodsPct,
	)
}

func (r *HTMLReporter) writeHTMLPeakHours(w io.Writer, result *AnalysisResult) {
	peaks := result.PeakHours

	fmt.Fprintf(w, `
        <div class="card">
            <h2>⚡ Peak Hours</h2>
            <h3>Top Hours by Total Volume</h3>
            <table>
                <thead>
                    <tr>
                        <th>Hour</th>
                        <th>Total Volume (MWh)</th>
                    </tr>
                </thead>
                <tbody>
`)
	for _, hv := range peaks.TopHours {
		fmt.Fprintf(w, `                    <tr>
                        <td>%s</td>
                        <td>%s</td>
                    </tr>
`, FormatHour(hv.Hour), FormatVolume(hv.Volume))
	}
	fmt.Fprintf(w, `                </tbody>
            </table>

            <h3>Hourly Pattern</h3>
            <table>
                <tbody>
                    <tr><td>Highest single hour</td><td>%s %s (%s MWh)</td></tr>
                    <tr><td>Most volatile hour</td><td>%s</td></tr>
                    <tr><td>Most consistent hour</td><td>%s</td></tr>
                    <tr><td>Largest average net short</td><td>%s</td></tr>
                    <tr><td>Largest average net long</td><td>%s</td></tr>
                </tbody>
            </table>
        </div>
`,
		peaks.HighestSingle.Date,
		FormatHour(peaks.HighestSingle.Hour),
		FormatVolume(peaks.HighestSingle.Volume),
		FormatHour(peaks.MostVolatileHour),
		FormatHour(peaks.MostConsistentHour),
		FormatHour(peaks.LargestNetShort),
		FormatHour(peaks.LargestNetLong),
	)
}

func (r *HTMLReporter) writeHTMLDailyMetrics(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, `
        <div class="card">
            <h2>📅 Daily Metrics</h2>
            <table>
                <thead>
                    <tr>
                        <th>Date</th>
                        <th>Position</th>
                        <th>Net Volume (MWh)</th>
                        <th>Total Volume (MWh)</th>
                        <th>Cost</th>
                        <th>Unit Rate (/MWh)</th>
                        <th>Avg Sell (£/MWh)</th>
                        <th>Avg Buy (£/MWh)</th>
                    </tr>
                </thead>
                <tbody>
`)
	for _, m := range result.DailyMetrics {
		position := "LONG"
		badge := "success"
		if m.NetImbalanceVolume < 0 {
			position = "SHORT"
			badge = "danger"
		}
		fmt.Fprintf(w, `                    <tr>
                        <td>%s</td>
                        <td><span class="badge badge-%s">%s</span></td>
                        <td>%s</td>
                        <td>%s</td>
                        <td>%s</td>
                        <td>%s</td>
                        <td>%.2f</td>
                        <td>%.2f</td>
                    </tr>
`,
			m.Date,
			badge, position,
			FormatVolume(m.NetImbalanceVolume),
			FormatVolume(m.AbsImbalanceVolume),
			FormatCurrency(math.Abs(m.ImbalanceCost)),
			FormatCurrency(math.Abs(m.UnitRate)),
			m.SellPrice.Mean,
			m.BuyPrice.Mean,
		)
	}
	fmt.Fprintf(w, `                </tbody>
            </table>
        </div>
`)
}

func (r *HTMLReporter) writeHTMLFooter(w io.Writer) {
	fmt.Fprintf(w, `
        <footer>
            <p>Generated by <a href="https://github.com/matthewgall/bmrswatch" style="color: var(--secondary-color);">bmrswatch</a> — data from Elexon Insights (BMRS)</p>
        </footer>
    </div>
</body>
</html>
`)
}
