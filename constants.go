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

import "time"

const (
	// ElexonAPIBase is the base URL for the Elexon Insights (BMRS) API
	ElexonAPIBase = "https://data.elexon.co.uk/bmrs/api/v1"

	// SystemPricesEndpoint is the per-date system prices endpoint, relative
	// to ElexonAPIBase; the settlement date (YYYY-MM-DD) is appended
	SystemPricesEndpoint = "/balancing/settlement/system-prices"
)

const (
	// SettlementPeriodLength is the length of one settlement period
	SettlementPeriodLength = 30 * time.Minute

	// PeriodsPerDay is the number of settlement periods in a calendar day
	PeriodsPerDay = 48

	// MaxInterpolationRun is the longest run of consecutive missing periods
	// the pipeline will fill by linear interpolation (1 hour). Longer gaps
	// are left missing.
	MaxInterpolationRun = 2

	// MaxAnalysisRangeDays is the longest supported analysis date range
	MaxAnalysisRangeDays = 31
)

const (
	// DateFormat is the settlement date layout used throughout
	DateFormat = "2006-01-02"

	// settlementDayCacheTTL is how long completed settlement days are cached.
	// Settled prices do not change, so this is generous.
	settlementDayCacheTTL = 7 * 24 * time.Hour

	// currentDayCacheTTL is how long the in-progress day is cached; periods
	// are still being published for it.
	currentDayCacheTTL = 30 * time.Minute
)
