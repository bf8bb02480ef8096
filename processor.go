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
	"sort"
	"time"
)

// CleanAndProcess cleans a raw batch of settlement records into aligned price
// and volume series annotated with per-period quality flags.
//
// Records are reindexed onto a complete half-hourly calendar spanning the
// observed timestamp range, so missing settlement periods surface as rows
// rather than disappearing. Gaps of up to MaxInterpolationRun consecutive
// periods are filled by linear interpolation; longer gaps and gaps at the
// edges of the calendar stay missing. Both output series have exactly one row
// per calendar slot, in timestamp order.
func CleanAndProcess(records []RawPeriodRecord) ([]PriceRow, []VolumeRow, error) {
	if len(records) == 0 {
		return nil, nil, &DataProcessingError{
			Stage:   "input",
			Message: "no settlement records to process",
		}
	}

	// Keep only records carrying a usable timestamp; the calendar bounds
	// come from these. Duplicate timestamps collapse to the last record.
	byTimestamp := make(map[int64]RawPeriodRecord)
	for _, rec := range records {
		if rec.Timestamp.IsZero() {
			continue
		}
		byTimestamp[rec.Timestamp.UTC().Unix()] = rec
	}

	if len(byTimestamp) == 0 {
		return nil, nil, &DataProcessingError{
			Stage:   "calendar",
			Message: "no record has a parseable timestamp",
		}
	}

	calendar := buildCalendar(byTimestamp)
	n := len(calendar)

	// Left-join reindex: slots with no matching record hold null values.
	sell := make([]NullFloat64, n)
	buy := make([]NullFloat64, n)
	volume := make([]NullFloat64, n)

	for i, ts := range calendar {
		if rec, ok := byTimestamp[ts.Unix()]; ok {
			sell[i] = rec.SystemSellPrice
			buy[i] = rec.SystemBuyPrice
			volume[i] = rec.NetImbalanceVolume
		}
	}

	// Capture which slots need filling before any interpolation happens.
	// The flags record "was missing in the raw feed" regardless of whether
	// the fill below succeeds.
	missingSell := missingMask(sell)
	missingBuy := missingMask(buy)
	missingVolume := missingMask(volume)

	interpolateSeries(sell, MaxInterpolationRun)
	interpolateSeries(buy, MaxInterpolationRun)
	interpolateSeries(volume, MaxInterpolationRun)

	prices := make([]PriceRow, n)
	volumes := make([]VolumeRow, n)

	for i, ts := range calendar {
		prices[i] = PriceRow{
			Timestamp:          ts,
			SystemSellPrice:    sell[i],
			SystemBuyPrice:     buy[i],
			PriceSpread:        buy[i].Sub(sell[i]),
			IsInterpolatedSell: missingSell[i],
			IsInterpolatedBuy:  missingBuy[i],
		}
		prices[i].PriceQuality = priceQuality(prices[i])

		volumes[i] = VolumeRow{
			Timestamp:          ts,
			NetImbalanceVolume: volume[i],
			AbsImbalanceVolume: volume[i].Abs(),
			IsInterpolated:     missingVolume[i],
		}
		volumes[i].VolumeQuality = volumeQuality(volumes[i])
	}

	return prices, volumes, nil
}

// buildCalendar returns the complete 30-minute spaced timestamp sequence from
// the earliest to the latest observed timestamp, inclusive
func buildCalendar(byTimestamp map[int64]RawPeriodRecord) []time.Time {
	keys := make([]int64, 0, len(byTimestamp))
	for ts := range byTimestamp {
		keys = append(keys, ts)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	first := time.Unix(keys[0], 0).UTC()
	last := time.Unix(keys[len(keys)-1], 0).UTC()

	var calendar []time.Time
	for ts := first; !ts.After(last); ts = ts.Add(SettlementPeriodLength) {
		calendar = append(calendar, ts)
	}
	return calendar
}

// missingMask returns a per-slot boolean: true where the value is null
func missingMask(vals []NullFloat64) []bool {
	mask := make([]bool, len(vals))
	for i, v := range vals {
		mask[i] = !v.Valid
	}
	return mask
}

// interpolateSeries fills runs of consecutive null values by linear
// interpolation between the bounding non-null values, in place. Runs longer
// than limit stay null, as do runs touching either end of the series, since
// linear interpolation needs a value on both sides.
func interpolateSeries(vals []NullFloat64, limit int) {
	i := 0
	for i < len(vals) {
		if vals[i].Valid {
			i++
			continue
		}

		// Found the start of a null run; find its end.
		start := i
		for i < len(vals) && !vals[i].Valid {
			i++
		}
		runLen := i - start

		// Edge gaps have no bounding value on one side.
		if start == 0 || i == len(vals) || runLen > limit {
			continue
		}

		left := vals[start-1].Float64
		right := vals[i].Float64
		step := (right - left) / float64(runLen+1)
		for j := 0; j < runLen; j++ {
			vals[start+j] = Float(left + step*float64(j+1))
		}
	}
}

// priceQuality classifies a price row; the first matching rule wins
func priceQuality(row PriceRow) QualityFlag {
	switch {
	case !row.SystemSellPrice.Valid || !row.SystemBuyPrice.Valid:
		return QualityMissing
	case row.IsInterpolatedSell || row.IsInterpolatedBuy:
		return QualityInterpolated
	case row.PriceSpread.Valid && row.PriceSpread.Float64 < 0:
		// Sell price above buy price is an invalid market state.
		return QualityAnomaly
	default:
		return QualityGood
	}
}

// volumeQuality classifies a volume row; the first matching rule wins
func volumeQuality(row VolumeRow) QualityFlag {
	switch {
	case !row.NetImbalanceVolume.Valid:
		return QualityMissing
	case row.IsInterpolated:
		return QualityInterpolated
	default:
		return QualityGood
	}
}

// SummarizeQuality computes per-series counts and percentages of quality flags
func SummarizeQuality(prices []PriceRow, volumes []VolumeRow) QualitySummary {
	var summary QualitySummary

	summary.Prices.TotalPeriods = len(prices)
	for _, row := range prices {
		switch row.PriceQuality {
		case QualityMissing:
			summary.Prices.MissingPeriods++
		case QualityInterpolated:
			summary.Prices.InterpolatedPeriods++
		case QualityAnomaly:
			summary.Prices.Anomalies++
		}
	}

	summary.Volumes.TotalPeriods = len(volumes)
	for _, row := range volumes {
		switch row.VolumeQuality {
		case QualityMissing:
			summary.Volumes.MissingPeriods++
		case QualityInterpolated:
			summary.Volumes.InterpolatedPeriods++
		}
		if row.NetImbalanceVolume.Valid && row.NetImbalanceVolume.Float64 == 0 {
			summary.Volumes.ZeroPeriods++
		}
	}

	summary.Prices.MissingPeriodsPct = percentage(summary.Prices.MissingPeriods, summary.Prices.TotalPeriods)
	summary.Prices.InterpolatedPeriodsPct = percentage(summary.Prices.InterpolatedPeriods, summary.Prices.TotalPeriods)
	summary.Prices.AnomaliesPct = percentage(summary.Prices.Anomalies, summary.Prices.TotalPeriods)
	summary.Volumes.MissingPeriodsPct = percentage(summary.Volumes.MissingPeriods, summary.Volumes.TotalPeriods)
	summary.Volumes.InterpolatedPeriodsPct = percentage(summary.Volumes.InterpolatedPeriods, summary.Volumes.TotalPeriods)
	summary.Volumes.ZeroPeriodsPct = percentage(summary.Volumes.ZeroPeriods, summary.Volumes.TotalPeriods)

	return summary
}

// percentage returns count/total*100, defined as 0.0 for an empty series
func percentage(count, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(count) / float64(total) * 100
}
