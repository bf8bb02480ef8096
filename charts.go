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
	"encoding/base64"
	"fmt"

	charts "github.com/vicanso/go-charts/v2"
)

// ChartGenerator handles chart generation
type ChartGenerator struct {
	theme string
}

// NewChartGenerator creates a new chart generator
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{
		theme: "dark", // Match our HTML report dark theme
	}
}

// GeneratePricesChart creates a line chart of system sell and buy prices over
// the analysis period
func (cg *ChartGenerator) GeneratePricesChart(prices []PriceRow) (string, error) {
	if len(prices) == 0 {
		return "", fmt.Errorf("no price data available")
	}

	sellValues := make([]float64, len(prices))
	buyValues := make([]float64, len(prices))
	labels := make([]string, len(prices))

	for i, row := range prices {
		labels[i] = row.Timestamp.Format("Jan 2 15:04")
		// Missing periods plot as zero; the quality table calls them out.
		if row.SystemSellPrice.Valid {
			sellValues[i] = row.SystemSellPrice.Float64
		}
		if row.SystemBuyPrice.Valid {
			buyValues[i] = row.SystemBuyPrice.Float64
		}
	}

	p, err := charts.LineRender(
		[][]float64{sellValues, buyValues},
		charts.TitleTextOptionFunc("System Prices (£/MWh)"),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{"Sell Price", "Buy Price"}, charts.PositionRight),
		charts.ThemeOptionFunc(cg.getTheme()),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render prices chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to generate chart bytes: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}

// GenerateVolumesChart creates a line chart of net imbalance volume over the
// analysis period
func (cg *ChartGenerator) GenerateVolumesChart(volumes []VolumeRow) (string, error) {
	if len(volumes) == 0 {
		return "", fmt.Errorf("no volume data available")
	}

	netValues := make([]float64, len(volumes))
	labels := make([]string, len(volumes))

	for i, row := range volumes {
		labels[i] = row.Timestamp.Format("Jan 2 15:04")
		if row.NetImbalanceVolume.Valid {
			netValues[i] = row.NetImbalanceVolume.Float64
		}
	}

	p, err := charts.LineRender(
		[][]float64{netValues},
		charts.TitleTextOptionFunc("Net Imbalance Volume (MWh)"),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{"Net Imbalance Volume"}, charts.PositionRight),
		charts.ThemeOptionFunc(cg.getTheme()),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render volumes chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to generate chart bytes: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}

// GenerateHourlyVolumeChart creates a bar chart of total absolute imbalance
// volume by hour of day
func (cg *ChartGenerator) GenerateHourlyVolumeChart(hourly []HourlyStats) (string, error) {
	if len(hourly) == 0 {
		return "", fmt.Errorf("no hourly statistics available")
	}

	values := make([]float64, len(hourly))
	labels := make([]string, len(hourly))

	for i, hs := range hourly {
		labels[i] = fmt.Sprintf("%02d:00", hs.Hour)
		values[i] = hs.AbsSum
	}

	p, err := charts.BarRender(
		[][]float64{values},
		charts.TitleTextOptionFunc("Total Imbalance Volume by Hour (MWh)"),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{"Absolute Volume"}, charts.PositionRight),
		charts.ThemeOptionFunc(cg.getTheme()),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render hourly volume chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to generate chart bytes: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}

// getTheme returns the chart theme name
func (cg *ChartGenerator) getTheme() string {
	return cg.theme
}
