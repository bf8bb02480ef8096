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
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settlementPayload(date string, periods int) string {
	var sb strings.Builder
	sb.WriteString(`{"data":[`)
	for p := 1; p <= periods; p++ {
		if p > 1 {
			sb.WriteString(",")
		}
		minutes := (p - 1) * 30
		fmt.Fprintf(&sb, `{
			"settlementDate": %q,
			"settlementPeriod": %d,
			"startTime": "%sT%02d:%02d:00Z",
			"systemSellPrice": 45.5,
			"systemBuyPrice": 52.25,
			"netImbalanceVolume": -100
		}`, date, p, date, minutes/60, minutes%60)
	}
	sb.WriteString(`]}`)
	return sb.String()
}

func newTestCollector(t *testing.T, handler http.HandlerFunc) *Collector {
	t.Helper()

	client := newTestClient(t, handler)
	logger := NewLogger(false)

	storage, err := NewStorage(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	config := &Config{
		StartDate: "2026-01-10",
		EndDate:   "2026-01-11",
	}

	return NewCollector(client, config, storage, logger)
}

func TestCollectAll(t *testing.T) {
	var requests atomic.Int32
	collector := newTestCollector(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		date := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		fmt.Fprint(w, settlementPayload(date, 48))
	})

	data, err := collector.CollectAll()
	require.NoError(t, err)

	assert.Equal(t, 2, data.Days)
	assert.Len(t, data.Records, 96)
	assert.Equal(t, int32(2), requests.Load())

	// Records come back in timestamp order.
	for i := 1; i < len(data.Records); i++ {
		assert.False(t, data.Records[i].Timestamp.Before(data.Records[i-1].Timestamp))
	}

	// A second collection for the same range is served from cache.
	data2, err := collector.CollectAll()
	require.NoError(t, err)
	assert.Len(t, data2.Records, 96)
	assert.Equal(t, int32(2), requests.Load())
}

func TestCollectAllSkipsFailedDays(t *testing.T) {
	collector := newTestCollector(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "2026-01-10") {
			http.Error(w, "no data", http.StatusNotFound)
			return
		}
		date := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		fmt.Fprint(w, settlementPayload(date, 48))
	})

	data, err := collector.CollectAll()
	require.NoError(t, err)

	assert.Equal(t, 1, data.Days)
	assert.Len(t, data.Records, 48)
	assert.Equal(t, "2026-01-11", data.Records[0].SettlementDate)
}

func TestCollectAllEveryDayFails(t *testing.T) {
	collector := newTestCollector(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	_, err := collector.CollectAll()
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Message, "no settlement data retrieved")
}

func TestCollectAllInvalidRange(t *testing.T) {
	collector := newTestCollector(t, func(w http.ResponseWriter, r *http.Request) {})
	collector.config.StartDate = "not-a-date"

	_, err := collector.CollectAll()
	require.Error(t, err)

	var valErr *ValidationError
	assert.True(t, errors.As(err, &valErr))
}
