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

	"github.com/xuri/excelize/v2"
)

// Exporter writes analysis results to an Excel workbook
type Exporter struct {
	logger *Logger
}

// NewExporter creates a new workbook exporter
func NewExporter(logger *Logger) *Exporter {
	return &Exporter{
		logger: logger,
	}
}

// ExportWorkbook writes prices, volumes, daily metrics and quality data to an
// XLSX file at outputPath
func (e *Exporter) ExportWorkbook(result *AnalysisResult, outputPath string) error {
	e.logger.Info("Exporting workbook", "path", outputPath)

	f := excelize.NewFile()
	defer f.Close()

	if err := e.writePricesSheet(f, result); err != nil {
		return fmt.Errorf("failed to write prices sheet: %w", err)
	}
	if err := e.writeVolumesSheet(f, result); err != nil {
		return fmt.Errorf("failed to write volumes sheet: %w", err)
	}
	if err := e.writeDailyMetricsSheet(f, result); err != nil {
		return fmt.Errorf("failed to write daily metrics sheet: %w", err)
	}
	if err := e.writeQualitySheet(f, result); err != nil {
		return fmt.Errorf("failed to write quality sheet: %w", err)
	}

	// The default sheet excelize creates is replaced by our first sheet
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex("Prices"); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return &StorageError{
			Operation: "export",
			Path:      outputPath,
			Err:       err,
		}
	}

	e.logger.Info("Workbook saved", "path", outputPath)
	return nil
}

func (e *Exporter) writePricesSheet(f *excelize.File, result *AnalysisResult) error {
	const sheet = "Prices"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []interface{}{"Timestamp", "System Sell Price (£/MWh)", "System Buy Price (£/MWh)", "Price Spread (£/MWh)", "Quality"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	for i, row := range result.Prices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.Timestamp.UTC().Format("2006-01-02 15:04"),
			nullFloatCell(row.SystemSellPrice),
			nullFloatCell(row.SystemBuyPrice),
			nullFloatCell(row.PriceSpread),
			string(row.PriceQuality),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	return nil
}

func (e *Exporter) writeVolumesSheet(f *excelize.File, result *AnalysisResult) error {
	const sheet = "Volumes"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []interface{}{"Timestamp", "Net Imbalance Volume (MWh)", "Abs Imbalance Volume (MWh)", "Quality"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	for i, row := range result.Volumes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.Timestamp.UTC().Format("2006-01-02 15:04"),
			nullFloatCell(row.NetImbalanceVolume),
			nullFloatCell(row.AbsImbalanceVolume),
			string(row.VolumeQuality),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	return nil
}

func (e *Exporter) writeDailyMetricsSheet(f *excelize.File, result *AnalysisResult) error {
	const sheet = "Daily Metrics"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []interface{}{
		"Date", "Net Volume (MWh)", "Total Volume (MWh)", "Imbalance Cost (£)",
		"Unit Rate (£/MWh)", "Avg Sell (£/MWh)", "Avg Buy (£/MWh)",
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	for i, m := range result.DailyMetrics {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			m.Date,
			m.NetImbalanceVolume,
			m.AbsImbalanceVolume,
			m.ImbalanceCost,
			m.UnitRate,
			m.SellPrice.Mean,
			m.BuyPrice.Mean,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	return nil
}

func (e *Exporter) writeQualitySheet(f *excelize.File, result *AnalysisResult) error {
	const sheet = "Quality"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []interface{}{"Series", "Periods", "Missing", "Missing %", "Interpolated", "Interpolated %", "Anomalies"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	prices := []interface{}{
		"Prices",
		result.Quality.Prices.TotalPeriods,
		result.Quality.Prices.MissingPeriods,
		result.Quality.Prices.MissingPeriodsPct,
		result.Quality.Prices.InterpolatedPeriods,
		result.Quality.Prices.InterpolatedPeriodsPct,
		result.Quality.Prices.Anomalies,
	}
	if err := f.SetSheetRow(sheet, "A2", &prices); err != nil {
		return err
	}

	volumes := []interface{}{
		"Volumes",
		result.Quality.Volumes.TotalPeriods,
		result.Quality.Volumes.MissingPeriods,
		result.Quality.Volumes.MissingPeriodsPct,
		result.Quality.Volumes.InterpolatedPeriods,
		result.Quality.Volumes.InterpolatedPeriodsPct,
		nil,
	}
	return f.SetSheetRow(sheet, "A3", &volumes)
}

// nullFloatCell converts a NullFloat64 to a cell value, nil for null
func nullFloatCell(v NullFloat64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Float64
}
