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
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// NullFloat64 is a nullable float64 with lenient JSON decoding. The BMRS feed
// occasionally delivers numeric fields as strings or nulls; anything that
// cannot be parsed decodes as null rather than failing the whole response.
type NullFloat64 struct {
	Float64 float64
	Valid   bool
}

// Float returns a valid NullFloat64 wrapping v
func Float(v float64) NullFloat64 {
	return NullFloat64{Float64: v, Valid: true}
}

// NullFloat returns the null value
func NullFloat() NullFloat64 {
	return NullFloat64{}
}

// Sub subtracts other from n; the result is null if either operand is null
func (n NullFloat64) Sub(other NullFloat64) NullFloat64 {
	if !n.Valid || !other.Valid {
		return NullFloat64{}
	}
	return Float(n.Float64 - other.Float64)
}

// Abs returns the absolute value, preserving null
func (n NullFloat64) Abs() NullFloat64 {
	if !n.Valid {
		return NullFloat64{}
	}
	return Float(math.Abs(n.Float64))
}

// UnmarshalJSON accepts numbers, quoted numbers and null. Unparsable values
// become null, never an error.
func (n *NullFloat64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = NullFloat64{}
		return nil
	}

	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*n = NullFloat64{}
		return nil
	}

	*n = Float(v)
	return nil
}

// MarshalJSON encodes null as JSON null
func (n NullFloat64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// QualityFlag classifies a cleaned settlement period
type QualityFlag string

const (
	QualityGood         QualityFlag = "Good"
	QualityMissing      QualityFlag = "Missing"
	QualityInterpolated QualityFlag = "Interpolated"
	QualityAnomaly      QualityFlag = "Anomaly"
)

// RawPeriodRecord is one settlement period as delivered by the BMRS API
type RawPeriodRecord struct {
	Timestamp          time.Time   `json:"timestamp"`
	SettlementDate     string      `json:"settlementDate"`
	SettlementPeriod   int         `json:"settlementPeriod"`   // 1-48
	SystemSellPrice    NullFloat64 `json:"systemSellPrice"`    // £/MWh
	SystemBuyPrice     NullFloat64 `json:"systemBuyPrice"`     // £/MWh
	NetImbalanceVolume NullFloat64 `json:"netImbalanceVolume"` // MWh, signed
}

// PriceRow is one cleaned settlement period of price data
type PriceRow struct {
	Timestamp          time.Time   `json:"timestamp"`
	SystemSellPrice    NullFloat64 `json:"systemSellPrice"`
	SystemBuyPrice     NullFloat64 `json:"systemBuyPrice"`
	PriceSpread        NullFloat64 `json:"priceSpread"` // buy - sell
	IsInterpolatedSell bool        `json:"isInterpolatedSell"`
	IsInterpolatedBuy  bool        `json:"isInterpolatedBuy"`
	PriceQuality       QualityFlag `json:"priceQuality"`
}

// VolumeRow is one cleaned settlement period of volume data
type VolumeRow struct {
	Timestamp          time.Time   `json:"timestamp"`
	NetImbalanceVolume NullFloat64 `json:"netImbalanceVolume"`
	AbsImbalanceVolume NullFloat64 `json:"absImbalanceVolume"`
	IsInterpolated     bool        `json:"isInterpolated"`
	VolumeQuality      QualityFlag `json:"volumeQuality"`
}

// SeriesQuality summarises quality flags for one cleaned series
type SeriesQuality struct {
	TotalPeriods           int     `json:"totalPeriods"`
	MissingPeriods         int     `json:"missingPeriods"`
	MissingPeriodsPct      float64 `json:"missingPeriodsPct"`
	InterpolatedPeriods    int     `json:"interpolatedPeriods"`
	InterpolatedPeriodsPct float64 `json:"interpolatedPeriodsPct"`
	Anomalies              int     `json:"anomalies"` // prices only
	AnomaliesPct           float64 `json:"anomaliesPct"`
	ZeroPeriods            int     `json:"zeroPeriods"` // volumes only
	ZeroPeriodsPct         float64 `json:"zeroPeriodsPct"`
}

// QualitySummary holds per-series data quality metrics
type QualitySummary struct {
	Prices  SeriesQuality `json:"prices"`
	Volumes SeriesQuality `json:"volumes"`
}

// PriceStats holds descriptive statistics for a price column
type PriceStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// DailyMetrics holds imbalance cost and rate metrics for one settlement date
type DailyMetrics struct {
	Date               string     `json:"date"`               // YYYY-MM-DD
	ImbalanceCost      float64    `json:"imbalanceCost"`      // £
	NetImbalanceVolume float64    `json:"netImbalanceVolume"` // MWh
	AbsImbalanceVolume float64    `json:"absImbalanceVolume"` // MWh
	SellPrice          PriceStats `json:"sellPrice"`
	BuyPrice           PriceStats `json:"buyPrice"`
	UnitRate           float64    `json:"unitRate"` // £/MWh
}

// HourlyStats holds volume statistics for one hour of day across the period
type HourlyStats struct {
	Hour      int     `json:"hour"` // 0-23
	AbsMean   float64 `json:"absMean"`
	AbsSum    float64 `json:"absSum"`
	AbsStdDev float64 `json:"absStdDev"`
	AbsMin    float64 `json:"absMin"`
	AbsMax    float64 `json:"absMax"`
	NetMean   float64 `json:"netMean"`
	NetSum    float64 `json:"netSum"`
}

// HourVolume pairs an hour of day with a total volume
type HourVolume struct {
	Hour   int     `json:"hour"`
	Volume float64 `json:"volume"` // MWh
}

// HourFrequency counts how many days an hour appeared in that day's top 3
type HourFrequency struct {
	Hour int `json:"hour"`
	Days int `json:"days"`
}

// DailyPeak identifies the single highest-volume hour in the period
type DailyPeak struct {
	Date   string  `json:"date"`
	Hour   int     `json:"hour"`
	Volume float64 `json:"volume"`
}

// PeakHours holds the peak-hour analysis across the whole period
type PeakHours struct {
	TopHours           []HourVolume    `json:"topHours"`
	MostFrequent       []HourFrequency `json:"mostFrequent"`
	HighestSingle      DailyPeak       `json:"highestSingle"`
	MostVolatileHour   int             `json:"mostVolatileHour"`
	MostConsistentHour int             `json:"mostConsistentHour"`
	LargestNetShort    int             `json:"largestNetShortHour"`
	LargestNetLong     int             `json:"largestNetLongHour"`
}

// CollectedData holds raw settlement records fetched from the API
type CollectedData struct {
	Records   []RawPeriodRecord `json:"records"`
	StartDate string            `json:"startDate"`
	EndDate   string            `json:"endDate"`
	Days      int               `json:"days"` // days with at least one record
	FetchedAt time.Time         `json:"fetchedAt"`
}

// AnalysisResult holds the complete analysis output
type AnalysisResult struct {
	RunID       string    `json:"runId"`
	GeneratedAt time.Time `json:"generatedAt"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	PeriodDays  int       `json:"periodDays"`

	Prices  []PriceRow  `json:"prices"`
	Volumes []VolumeRow `json:"volumes"`

	Quality      QualitySummary `json:"quality"`
	DailyMetrics []DailyMetrics `json:"dailyMetrics"`
	HourlyStats  []HourlyStats  `json:"hourlyStats"`
	PeakHours    PeakHours      `json:"peakHours"`

	// Charts (base64 encoded PNG images)
	PricesChart       string `json:"pricesChart,omitempty"`
	VolumesChart      string `json:"volumesChart,omitempty"`
	HourlyVolumeChart string `json:"hourlyVolumeChart,omitempty"`
}

// SystemPricesResponse is the BMRS system prices API response
type SystemPricesResponse struct {
	Data []struct {
		SettlementDate     string      `json:"settlementDate"`
		SettlementPeriod   int         `json:"settlementPeriod"`
		StartTime          string      `json:"startTime"`
		SystemSellPrice    NullFloat64 `json:"systemSellPrice"`
		SystemBuyPrice     NullFloat64 `json:"systemBuyPrice"`
		NetImbalanceVolume NullFloat64 `json:"netImbalanceVolume"`
	} `json:"data"`
}
