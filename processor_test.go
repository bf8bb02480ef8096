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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

// periodTime returns the start of settlement period slot i on the test day
func periodTime(i int) time.Time {
	return testDay.Add(time.Duration(i) * SettlementPeriodLength)
}

// testRecord builds a raw record for slot i on the test day
func testRecord(i int, sell, buy, vol NullFloat64) RawPeriodRecord {
	return RawPeriodRecord{
		Timestamp:          periodTime(i),
		SettlementDate:     periodTime(i).Format(DateFormat),
		SettlementPeriod:   (i % PeriodsPerDay) + 1,
		SystemSellPrice:    sell,
		SystemBuyPrice:     buy,
		NetImbalanceVolume: vol,
	}
}

func TestCleanAndProcessEmptyInput(t *testing.T) {
	_, _, err := CleanAndProcess(nil)
	require.Error(t, err)

	var procErr *DataProcessingError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, "input", procErr.Stage)
}

func TestCleanAndProcessNoUsableTimestamps(t *testing.T) {
	records := []RawPeriodRecord{
		{SettlementDate: "2026-01-10", SettlementPeriod: 1},
	}

	_, _, err := CleanAndProcess(records)
	require.Error(t, err)

	var procErr *DataProcessingError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, "calendar", procErr.Stage)
}

func TestCleanAndProcessAlignment(t *testing.T) {
	// Slot 2 has no record at all; the calendar must still contain it.
	records := []RawPeriodRecord{
		testRecord(0, Float(50), Float(60), Float(100)),
		testRecord(1, Float(52), Float(62), Float(-80)),
		testRecord(3, Float(54), Float(64), Float(120)),
	}

	prices, volumes, err := CleanAndProcess(records)
	require.NoError(t, err)

	require.Len(t, prices, 4)
	require.Len(t, volumes, 4)
	for i := 0; i < 4; i++ {
		assert.True(t, prices[i].Timestamp.Equal(periodTime(i)), "price row %d timestamp", i)
		assert.True(t, volumes[i].Timestamp.Equal(periodTime(i)), "volume row %d timestamp", i)
	}
}

func TestCleanAndProcessInterpolatesShortGaps(t *testing.T) {
	// Slots 2 and 3 are absent; a two-period gap is within the fill limit.
	records := []RawPeriodRecord{
		testRecord(0, Float(50), Float(60), Float(100)),
		testRecord(1, Float(40), Float(50), Float(100)),
		testRecord(4, Float(70), Float(80), Float(400)),
		testRecord(5, Float(72), Float(82), Float(350)),
	}

	prices, volumes, err := CleanAndProcess(records)
	require.NoError(t, err)
	require.Len(t, prices, 6)

	for _, i := range []int{2, 3} {
		row := prices[i]
		require.True(t, row.SystemSellPrice.Valid, "slot %d sell filled", i)
		require.True(t, row.SystemBuyPrice.Valid, "slot %d buy filled", i)
		assert.True(t, row.IsInterpolatedSell)
		assert.True(t, row.IsInterpolatedBuy)
		assert.Equal(t, QualityInterpolated, row.PriceQuality)

		// Filled values lie strictly between the bounding values.
		assert.Greater(t, row.SystemSellPrice.Float64, 40.0)
		assert.Less(t, row.SystemSellPrice.Float64, 70.0)

		vrow := volumes[i]
		require.True(t, vrow.NetImbalanceVolume.Valid)
		assert.True(t, vrow.IsInterpolated)
		assert.Equal(t, QualityInterpolated, vrow.VolumeQuality)
		assert.Greater(t, vrow.NetImbalanceVolume.Float64, 100.0)
		assert.Less(t, vrow.NetImbalanceVolume.Float64, 400.0)
	}

	// Linear fill between 40 and 70 over a two-slot gap: 50, 60.
	assert.InDelta(t, 50.0, prices[2].SystemSellPrice.Float64, 1e-9)
	assert.InDelta(t, 60.0, prices[3].SystemSellPrice.Float64, 1e-9)
	assert.InDelta(t, 200.0, volumes[2].NetImbalanceVolume.Float64, 1e-9)
	assert.InDelta(t, 300.0, volumes[3].NetImbalanceVolume.Float64, 1e-9)

	// Abs volume follows the filled value.
	assert.InDelta(t, 200.0, volumes[2].AbsImbalanceVolume.Float64, 1e-9)
}

func TestCleanAndProcessLeavesLongGapsMissing(t *testing.T) {
	// Slots 1-3 are absent; a three-period gap exceeds the fill limit, so
	// every slot in the run stays missing.
	records := []RawPeriodRecord{
		testRecord(0, Float(50), Float(60), Float(100)),
		testRecord(4, Float(70), Float(80), Float(400)),
	}

	prices, volumes, err := CleanAndProcess(records)
	require.NoError(t, err)
	require.Len(t, prices, 5)

	for _, i := range []int{1, 2, 3} {
		assert.False(t, prices[i].SystemSellPrice.Valid, "slot %d sell stays null", i)
		assert.False(t, prices[i].SystemBuyPrice.Valid, "slot %d buy stays null", i)
		assert.Equal(t, QualityMissing, prices[i].PriceQuality, "slot %d price quality", i)

		assert.False(t, volumes[i].NetImbalanceVolume.Valid, "slot %d volume stays null", i)
		assert.Equal(t, QualityMissing, volumes[i].VolumeQuality, "slot %d volume quality", i)
	}
}

func TestCleanAndProcessLeavesEdgeGapsMissing(t *testing.T) {
	// The first and last slots carry null prices; with no bounding value on
	// one side they cannot be interpolated even though the runs are short.
	records := []RawPeriodRecord{
		testRecord(0, NullFloat(), NullFloat(), Float(100)),
		testRecord(1, Float(50), Float(60), Float(120)),
		testRecord(2, Float(52), Float(62), Float(130)),
		testRecord(3, NullFloat(), NullFloat(), Float(140)),
	}

	prices, _, err := CleanAndProcess(records)
	require.NoError(t, err)
	require.Len(t, prices, 4)

	assert.Equal(t, QualityMissing, prices[0].PriceQuality)
	assert.Equal(t, QualityMissing, prices[3].PriceQuality)
	assert.Equal(t, QualityGood, prices[1].PriceQuality)
	assert.Equal(t, QualityGood, prices[2].PriceQuality)
}

func TestCleanAndProcessFlagsAnomalies(t *testing.T) {
	// Slot 1 has sell above buy, which is an invalid market state.
	records := []RawPeriodRecord{
		testRecord(0, Float(50), Float(60), Float(100)),
		testRecord(1, Float(75), Float(65), Float(100)),
		testRecord(2, Float(52), Float(62), Float(100)),
	}

	prices, _, err := CleanAndProcess(records)
	require.NoError(t, err)

	assert.Equal(t, QualityAnomaly, prices[1].PriceQuality)
	require.True(t, prices[1].PriceSpread.Valid)
	assert.InDelta(t, -10.0, prices[1].PriceSpread.Float64, 1e-9)
	assert.Equal(t, QualityGood, prices[0].PriceQuality)
}

func TestCleanAndProcessMissingBeatsAnomaly(t *testing.T) {
	// Slot 0 is missing its buy price at the calendar edge, so it cannot be
	// filled. Missing wins over every other classification.
	records := []RawPeriodRecord{
		testRecord(0, Float(75), NullFloat(), Float(100)),
		testRecord(1, Float(50), Float(60), Float(100)),
	}

	prices, _, err := CleanAndProcess(records)
	require.NoError(t, err)

	assert.Equal(t, QualityMissing, prices[0].PriceQuality)
	assert.False(t, prices[0].PriceSpread.Valid)
}

func TestCleanAndProcessDuplicateTimestampsKeepLast(t *testing.T) {
	records := []RawPeriodRecord{
		testRecord(0, Float(10), Float(20), Float(100)),
		testRecord(0, Float(30), Float(40), Float(200)),
	}

	prices, volumes, err := CleanAndProcess(records)
	require.NoError(t, err)
	require.Len(t, prices, 1)

	assert.InDelta(t, 30.0, prices[0].SystemSellPrice.Float64, 1e-9)
	assert.InDelta(t, 200.0, volumes[0].NetImbalanceVolume.Float64, 1e-9)
}

func TestCleanAndProcessSortsUnsortedInput(t *testing.T) {
	records := []RawPeriodRecord{
		testRecord(2, Float(52), Float(62), Float(130)),
		testRecord(0, Float(50), Float(60), Float(100)),
		testRecord(1, Float(51), Float(61), Float(110)),
	}

	prices, _, err := CleanAndProcess(records)
	require.NoError(t, err)
	require.Len(t, prices, 3)

	for i := 1; i < len(prices); i++ {
		assert.True(t, prices[i-1].Timestamp.Before(prices[i].Timestamp))
	}
	assert.InDelta(t, 50.0, prices[0].SystemSellPrice.Float64, 1e-9)
	assert.InDelta(t, 52.0, prices[2].SystemSellPrice.Float64, 1e-9)
}

func TestCleanAndProcessFullDay(t *testing.T) {
	// A complete settlement day with one two-period outage.
	records := make([]RawPeriodRecord, 0, PeriodsPerDay)
	for i := 0; i < PeriodsPerDay; i++ {
		if i == 5 || i == 6 {
			records = append(records, testRecord(i, NullFloat(), NullFloat(), NullFloat()))
			continue
		}
		records = append(records, testRecord(i, Float(40+float64(i)), Float(50+float64(i)), Float(100)))
	}

	prices, volumes, err := CleanAndProcess(records)
	require.NoError(t, err)
	require.Len(t, prices, PeriodsPerDay)
	require.Len(t, volumes, PeriodsPerDay)

	summary := SummarizeQuality(prices, volumes)
	assert.Equal(t, PeriodsPerDay, summary.Prices.TotalPeriods)
	assert.Equal(t, 0, summary.Prices.MissingPeriods)
	assert.Equal(t, 2, summary.Prices.InterpolatedPeriods)
	assert.Equal(t, 2, summary.Volumes.InterpolatedPeriods)
	assert.InDelta(t, 100.0*2/48, summary.Prices.InterpolatedPeriodsPct, 1e-9)
}

func TestCleanAndProcessIsDeterministic(t *testing.T) {
	records := []RawPeriodRecord{
		testRecord(0, Float(50), Float(60), Float(100)),
		testRecord(1, NullFloat(), Float(61), Float(-80)),
		testRecord(3, Float(54), Float(64), NullFloat()),
	}

	prices1, volumes1, err := CleanAndProcess(records)
	require.NoError(t, err)
	prices2, volumes2, err := CleanAndProcess(records)
	require.NoError(t, err)

	assert.Equal(t, prices1, prices2)
	assert.Equal(t, volumes1, volumes2)
}

func TestSummarizeQuality(t *testing.T) {
	prices := []PriceRow{
		{PriceQuality: QualityGood},
		{PriceQuality: QualityMissing},
		{PriceQuality: QualityMissing},
		{PriceQuality: QualityInterpolated},
		{PriceQuality: QualityAnomaly},
	}
	volumes := []VolumeRow{
		{VolumeQuality: QualityGood, NetImbalanceVolume: Float(120)},
		{VolumeQuality: QualityMissing},
		{VolumeQuality: QualityInterpolated, NetImbalanceVolume: Float(-60)},
		{VolumeQuality: QualityGood, NetImbalanceVolume: Float(0)},
	}

	summary := SummarizeQuality(prices, volumes)

	assert.Equal(t, 5, summary.Prices.TotalPeriods)
	assert.Equal(t, 2, summary.Prices.MissingPeriods)
	assert.InDelta(t, 40.0, summary.Prices.MissingPeriodsPct, 1e-9)
	assert.Equal(t, 1, summary.Prices.InterpolatedPeriods)
	assert.Equal(t, 1, summary.Prices.Anomalies)
	assert.InDelta(t, 20.0, summary.Prices.AnomaliesPct, 1e-9)

	assert.Equal(t, 4, summary.Volumes.TotalPeriods)
	assert.Equal(t, 1, summary.Volumes.MissingPeriods)
	assert.Equal(t, 1, summary.Volumes.InterpolatedPeriods)
	assert.InDelta(t, 25.0, summary.Volumes.InterpolatedPeriodsPct, 1e-9)
	assert.Equal(t, 1, summary.Volumes.ZeroPeriods)
	assert.InDelta(t, 25.0, summary.Volumes.ZeroPeriodsPct, 1e-9)
}

func TestSummarizeQualityEmptySeries(t *testing.T) {
	summary := SummarizeQuality(nil, nil)

	assert.Equal(t, 0, summary.Prices.TotalPeriods)
	assert.Equal(t, 0.0, summary.Prices.MissingPeriodsPct)
	assert.Equal(t, 0.0, summary.Volumes.InterpolatedPeriodsPct)
}

func TestInterpolateSeries(t *testing.T) {
	tests := []struct {
		name  string
		input []NullFloat64
		want  []NullFloat64
	}{
		{
			name:  "single gap",
			input: []NullFloat64{Float(10), NullFloat(), Float(20)},
			want:  []NullFloat64{Float(10), Float(15), Float(20)},
		},
		{
			name:  "double gap",
			input: []NullFloat64{Float(10), NullFloat(), NullFloat(), Float(40)},
			want:  []NullFloat64{Float(10), Float(20), Float(30), Float(40)},
		},
		{
			name:  "triple gap stays null",
			input: []NullFloat64{Float(10), NullFloat(), NullFloat(), NullFloat(), Float(50)},
			want:  []NullFloat64{Float(10), NullFloat(), NullFloat(), NullFloat(), Float(50)},
		},
		{
			name:  "leading gap stays null",
			input: []NullFloat64{NullFloat(), Float(10), Float(20)},
			want:  []NullFloat64{NullFloat(), Float(10), Float(20)},
		},
		{
			name:  "trailing gap stays null",
			input: []NullFloat64{Float(10), Float(20), NullFloat()},
			want:  []NullFloat64{Float(10), Float(20), NullFloat()},
		},
		{
			name:  "no gaps unchanged",
			input: []NullFloat64{Float(1), Float(2), Float(3)},
			want:  []NullFloat64{Float(1), Float(2), Float(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals := make([]NullFloat64, len(tt.input))
			copy(vals, tt.input)

			interpolateSeries(vals, MaxInterpolationRun)

			require.Len(t, vals, len(tt.want))
			for i := range vals {
				assert.Equal(t, tt.want[i].Valid, vals[i].Valid, "index %d validity", i)
				if tt.want[i].Valid {
					assert.InDelta(t, tt.want[i].Float64, vals[i].Float64, 1e-9, "index %d value", i)
				}
			}
		})
	}
}
