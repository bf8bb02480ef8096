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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullFloat64UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  NullFloat64
	}{
		{name: "number", input: `123.45`, want: Float(123.45)},
		{name: "negative number", input: `-99.5`, want: Float(-99.5)},
		{name: "integer", input: `42`, want: Float(42)},
		{name: "quoted number", input: `"123.45"`, want: Float(123.45)},
		{name: "null", input: `null`, want: NullFloat()},
		{name: "empty string", input: `""`, want: NullFloat()},
		{name: "junk string", input: `"not a price"`, want: NullFloat()},
		{name: "quoted nan", input: `"NaN"`, want: NullFloat()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n NullFloat64
			require.NoError(t, n.UnmarshalJSON([]byte(tt.input)))

			assert.Equal(t, tt.want.Valid, n.Valid)
			if tt.want.Valid {
				assert.InDelta(t, tt.want.Float64, n.Float64, 1e-9)
			}
		})
	}
}

func TestNullFloat64MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Float(12.5))
	require.NoError(t, err)
	assert.Equal(t, "12.5", string(data))

	data, err = json.Marshal(NullFloat())
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestNullFloat64RoundTrip(t *testing.T) {
	original := PriceRow{
		SystemSellPrice: Float(45.67),
		SystemBuyPrice:  NullFloat(),
		PriceQuality:    QualityMissing,
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded PriceRow
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.SystemSellPrice, decoded.SystemSellPrice)
	assert.False(t, decoded.SystemBuyPrice.Valid)
	assert.Equal(t, QualityMissing, decoded.PriceQuality)
}

func TestNullFloat64Arithmetic(t *testing.T) {
	t.Run("sub", func(t *testing.T) {
		got := Float(60).Sub(Float(75))
		require.True(t, got.Valid)
		assert.InDelta(t, -15.0, got.Float64, 1e-9)
	})

	t.Run("sub with null operand", func(t *testing.T) {
		assert.False(t, Float(60).Sub(NullFloat()).Valid)
		assert.False(t, NullFloat().Sub(Float(60)).Valid)
	})

	t.Run("abs", func(t *testing.T) {
		got := Float(-120.5).Abs()
		require.True(t, got.Valid)
		assert.InDelta(t, 120.5, got.Float64, 1e-9)

		assert.False(t, NullFloat().Abs().Valid)
	})
}

func TestSystemPricesResponseDecoding(t *testing.T) {
	// Numeric fields arrive as numbers, strings or nulls depending on the
	// period's settlement state; all of them must decode.
	payload := `{
		"data": [
			{
				"settlementDate": "2026-01-10",
				"settlementPeriod": 1,
				"startTime": "2026-01-10T00:00:00Z",
				"systemSellPrice": 45.5,
				"systemBuyPrice": "52.25",
				"netImbalanceVolume": null
			}
		]
	}`

	var resp SystemPricesResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))
	require.Len(t, resp.Data, 1)

	item := resp.Data[0]
	assert.InDelta(t, 45.5, item.SystemSellPrice.Float64, 1e-9)
	assert.InDelta(t, 52.25, item.SystemBuyPrice.Float64, 1e-9)
	assert.False(t, item.NetImbalanceVolume.Valid)
}
