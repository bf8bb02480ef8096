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
	"sort"
	"time"
)

// Collector orchestrates settlement data collection from the BMRS API
type Collector struct {
	client  *ElexonClient
	config  *Config
	storage *Storage
	logger  *Logger
}

// NewCollector creates a new data collector
func NewCollector(client *ElexonClient, config *Config, storage *Storage, logger *Logger) *Collector {
	return &Collector{
		client:  client,
		config:  config,
		storage: storage,
		logger:  logger,
	}
}

// CollectAll fetches settlement data for every date in the configured range.
// Days that fail to fetch are logged and skipped; collecting nothing at all
// is an error.
func (c *Collector) CollectAll() (*CollectedData, error) {
	c.logger.Info("Starting data collection",
		"start", c.config.StartDate,
		"end", c.config.EndDate,
	)

	start, err := parseSettlementDate(c.config.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseSettlementDate(c.config.EndDate)
	if err != nil {
		return nil, err
	}

	data := &CollectedData{
		StartDate: c.config.StartDate,
		EndDate:   c.config.EndDate,
		FetchedAt: time.Now(),
	}

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		dateStr := date.Format(DateFormat)

		records, err := c.fetchSettlementDataCached(dateStr)
		if err != nil {
			c.logger.Warn("Failed to fetch settlement data, skipping day",
				"settlement_date", dateStr,
				"error", err,
			)
			continue
		}

		data.Records = append(data.Records, records...)
		data.Days++
	}

	if data.Days == 0 {
		return nil, &APIError{
			Endpoint: c.config.APIBaseURL,
			Message:  fmt.Sprintf("no settlement data retrieved for %s to %s", c.config.StartDate, c.config.EndDate),
		}
	}

	// Days arrive in order but periods within a response may not.
	sort.Slice(data.Records, func(i, j int) bool {
		return data.Records[i].Timestamp.Before(data.Records[j].Timestamp)
	})

	c.logger.Info("Data collection completed",
		"days", data.Days,
		"records", len(data.Records),
	)

	return data, nil
}

// fetchSettlementDataCached fetches one day of settlement data, served from
// cache when possible. Completed settlement days cache for a long TTL since
// settled prices do not change; the current day caches briefly.
func (c *Collector) fetchSettlementDataCached(settlementDate string) ([]RawPeriodRecord, error) {
	cacheKey := fmt.Sprintf("system_prices_%s", settlementDate)

	var records []RawPeriodRecord
	cached, err := c.storage.LoadCache(cacheKey, &records)
	if err != nil {
		c.logger.Warn("Failed to load settlement data from cache", "error", err)
	}
	if cached {
		c.logger.Debug("Loaded settlement data from cache",
			"settlement_date", settlementDate,
			"records", len(records),
		)
		return records, nil
	}

	records, err = c.client.FetchSettlementData(settlementDate)
	if err != nil {
		return nil, err
	}

	ttl := settlementDayCacheTTL
	if settlementDate >= time.Now().UTC().Format(DateFormat) {
		ttl = currentDayCacheTTL
	}
	if err := c.storage.SaveCache(cacheKey, records, ttl); err != nil {
		c.logger.Warn("Failed to cache settlement data", "error", err)
	}

	return records, nil
}
