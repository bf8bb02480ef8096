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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ElexonAPIBase, config.APIBaseURL)
	assert.NotEmpty(t, config.StoragePath)
	assert.False(t, config.Debug)

	// Defaults cover the most recent fully settled week.
	start, err := parseSettlementDate(config.StartDate)
	require.NoError(t, err)
	end, err := parseSettlementDate(config.EndDate)
	require.NoError(t, err)
	assert.Equal(t, 6, int(end.Sub(start).Hours()/24))

	require.NoError(t, config.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
api_base_url: https://example.test/bmrs/api/v1
start_date: "2026-01-01"
end_date: "2026-01-07"
storage_path: /tmp/bmrswatch-test
debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/bmrs/api/v1", config.APIBaseURL)
	assert.Equal(t, "2026-01-01", config.StartDate)
	assert.Equal(t, "2026-01-07", config.EndDate)
	assert.Equal(t, "/tmp/bmrswatch-test", config.StoragePath)
	assert.True(t, config.Debug)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("BMRS_API_BASE_URL", "https://env.test/api")
	t.Setenv("BMRS_START_DATE", "2026-02-01")
	t.Setenv("BMRS_END_DATE", "2026-02-03")
	t.Setenv("BMRS_STORAGE_PATH", "/tmp/env-storage")
	t.Setenv("BMRS_DEBUG", "true")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://env.test/api", config.APIBaseURL)
	assert.Equal(t, "2026-02-01", config.StartDate)
	assert.Equal(t, "2026-02-03", config.EndDate)
	assert.Equal(t, "/tmp/env-storage", config.StoragePath)
	assert.True(t, config.Debug)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIBaseURL:  ElexonAPIBase,
			StartDate:   "2026-01-01",
			EndDate:     "2026-01-07",
			StoragePath: "/tmp/bmrswatch-test",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid range",
			mutate: func(c *Config) {},
		},
		{
			name:   "single day range",
			mutate: func(c *Config) { c.EndDate = c.StartDate },
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.APIBaseURL = "" },
			wantErr: "api_base_url",
		},
		{
			name:    "bad start date format",
			mutate:  func(c *Config) { c.StartDate = "01/01/2026" },
			wantErr: "start_date",
		},
		{
			name:    "bad end date format",
			mutate:  func(c *Config) { c.EndDate = "2026-1-7" },
			wantErr: "end_date",
		},
		{
			name: "end before start",
			mutate: func(c *Config) {
				c.StartDate = "2026-01-07"
				c.EndDate = "2026-01-01"
			},
			wantErr: "end_date must not be before start_date",
		},
		{
			name: "range too long",
			mutate: func(c *Config) {
				c.StartDate = "2026-01-01"
				c.EndDate = "2026-02-15"
			},
			wantErr: "cannot exceed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfigValidateDefaultsStoragePath(t *testing.T) {
	config := &Config{
		APIBaseURL: ElexonAPIBase,
		StartDate:  "2026-01-01",
		EndDate:    "2026-01-02",
	}

	require.NoError(t, config.Validate())
	assert.NotEmpty(t, config.StoragePath)
}

func TestParseSettlementDate(t *testing.T) {
	got, err := parseSettlementDate("2026-01-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"2026-13-01", "2026-02-30", "20260110", "jan 10"} {
		_, err := parseSettlementDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateSettlementPeriod(t *testing.T) {
	assert.NoError(t, validateSettlementPeriod(1))
	assert.NoError(t, validateSettlementPeriod(48))
	assert.Error(t, validateSettlementPeriod(0))
	assert.Error(t, validateSettlementPeriod(49))
	assert.Error(t, validateSettlementPeriod(-3))
}
