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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ElexonClient handles communication with the Elexon Insights (BMRS) API.
// The system prices endpoints are public and need no authentication.
type ElexonClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *Logger
}

// NewElexonClient creates a new BMRS API client
func NewElexonClient(baseURL string, logger *Logger) *ElexonClient {
	if baseURL == "" {
		baseURL = ElexonAPIBase
	}
	return &ElexonClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// FetchSettlementData fetches system prices and net imbalance volumes for a
// single settlement date (YYYY-MM-DD), one record per published settlement
// period
func (c *ElexonClient) FetchSettlementData(settlementDate string) ([]RawPeriodRecord, error) {
	if _, err := parseSettlementDate(settlementDate); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s%s/%s?format=json", c.baseURL, SystemPricesEndpoint, settlementDate)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", GetUserAgent())
	req.Header.Set("Accept", "application/json")

	c.logger.LogAPIRequest("GET", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{
			Endpoint: url,
			Message:  fmt.Sprintf("failed to fetch system prices for %s", settlementDate),
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.LogAPIError(url, resp.StatusCode, fmt.Errorf("%s", string(bodyBytes)))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   url,
			Message:    string(bodyBytes),
		}
	}

	var pricesResp SystemPricesResponse
	if err := json.NewDecoder(resp.Body).Decode(&pricesResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(pricesResp.Data) == 0 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   url,
			Message:    fmt.Sprintf("no data returned for %s", settlementDate),
		}
	}

	// Convert to RawPeriodRecord
	records := make([]RawPeriodRecord, 0, len(pricesResp.Data))
	for _, item := range pricesResp.Data {
		if err := validateSettlementPeriod(item.SettlementPeriod); err != nil {
			c.logger.Warn("Skipping record with invalid settlement period",
				"settlement_date", item.SettlementDate,
				"settlement_period", item.SettlementPeriod,
			)
			continue
		}

		timestamp, err := time.Parse(time.RFC3339, item.StartTime)
		if err != nil {
			c.logger.Warn("Skipping record with unparseable start time",
				"settlement_date", item.SettlementDate,
				"start_time", item.StartTime,
			)
			continue
		}

		records = append(records, RawPeriodRecord{
			Timestamp:          timestamp.UTC(),
			SettlementDate:     item.SettlementDate,
			SettlementPeriod:   item.SettlementPeriod,
			SystemSellPrice:    item.SystemSellPrice,
			SystemBuyPrice:     item.SystemBuyPrice,
			NetImbalanceVolume: item.NetImbalanceVolume,
		})
	}

	c.logger.LogDataCollection(settlementDate, len(records))
	return records, nil
}
