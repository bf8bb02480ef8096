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
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var settlementDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Config holds the application configuration
type Config struct {
	// BMRS API settings
	APIBaseURL string `yaml:"api_base_url"`

	// Analysis period (settlement dates, YYYY-MM-DD, inclusive)
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`

	// Storage
	StoragePath string `yaml:"storage_path"`

	// Debugging
	Debug bool `yaml:"debug"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Set defaults: the most recent fully settled week
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	config := &Config{
		APIBaseURL:  ElexonAPIBase,
		StartDate:   yesterday.AddDate(0, 0, -6).Format(DateFormat),
		EndDate:     yesterday.Format(DateFormat),
		StoragePath: getDefaultStoragePath(),
		Debug:       false,
	}

	// If no path provided, return defaults with env var overrides
	if path == "" {
		config.applyEnvironmentVariables()
		return config, nil
	}

	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentVariables()

	return config, nil
}

// getDefaultStoragePath returns the default storage path
func getDefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bmrswatch"
	}
	return filepath.Join(home, ".config", "bmrswatch")
}

// applyEnvironmentVariables overrides config with environment variables
func (c *Config) applyEnvironmentVariables() {
	if val := os.Getenv("BMRS_API_BASE_URL"); val != "" {
		c.APIBaseURL = val
	}
	if val := os.Getenv("BMRS_START_DATE"); val != "" {
		c.StartDate = val
	}
	if val := os.Getenv("BMRS_END_DATE"); val != "" {
		c.EndDate = val
	}
	if val := os.Getenv("BMRS_STORAGE_PATH"); val != "" {
		c.StoragePath = val
	}
	if val := os.Getenv("BMRS_DEBUG"); val == "true" || val == "1" {
		c.Debug = true
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errors []string

	if c.APIBaseURL == "" {
		errors = append(errors, "api_base_url is required")
	}

	start, startErr := parseSettlementDate(c.StartDate)
	if startErr != nil {
		errors = append(errors, fmt.Sprintf("start_date: %v", startErr))
	}

	end, endErr := parseSettlementDate(c.EndDate)
	if endErr != nil {
		errors = append(errors, fmt.Sprintf("end_date: %v", endErr))
	}

	if startErr == nil && endErr == nil {
		if end.Before(start) {
			errors = append(errors, "end_date must not be before start_date")
		} else if int(end.Sub(start).Hours()/24)+1 > MaxAnalysisRangeDays {
			errors = append(errors, fmt.Sprintf("date range cannot exceed %d days", MaxAnalysisRangeDays))
		}
	}

	// Set default storage path if empty
	if c.StoragePath == "" {
		c.StoragePath = getDefaultStoragePath()
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// parseSettlementDate parses and validates a YYYY-MM-DD settlement date
func parseSettlementDate(date string) (time.Time, error) {
	if !settlementDatePattern.MatchString(date) {
		return time.Time{}, &ValidationError{
			Field:   "settlement_date",
			Value:   date,
			Message: "expected format YYYY-MM-DD",
		}
	}

	t, err := time.ParseInLocation(DateFormat, date, time.UTC)
	if err != nil {
		return time.Time{}, &ValidationError{
			Field:   "settlement_date",
			Value:   date,
			Message: "not a valid calendar date",
		}
	}

	return t, nil
}

// validateSettlementPeriod checks a settlement period index is within 1-48
func validateSettlementPeriod(period int) error {
	if period < 1 || period > PeriodsPerDay {
		return &ValidationError{
			Field:   "settlement_period",
			Value:   fmt.Sprintf("%d", period),
			Message: fmt.Sprintf("must be between 1 and %d", PeriodsPerDay),
		}
	}
	return nil
}
