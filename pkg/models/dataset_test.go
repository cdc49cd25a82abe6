/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `"90s"`, want: 90 * time.Second},
		{name: "nanoseconds", input: `1500000000`, want: 1500 * time.Millisecond},
		{name: "bad string", input: `"soon"`, wantErr: true},
		{name: "wrong type", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration

			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.ErrorIs(t, err, errInvalidDuration)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Std())
		})
	}
}

func TestMatchesFilter(t *testing.T) {
	rec := DataSetInfo{DataType: "radar", Dir: "/data/radar/kftg", Hostname: "ingest1"}

	tests := []struct {
		name   string
		filter DataSetInfo
		want   bool
	}{
		{name: "exact", filter: DataSetInfo{DataType: "radar", Dir: "/data/radar/kftg", Hostname: "ingest1"}, want: true},
		{name: "all hosts", filter: DataSetInfo{DataType: "radar", Dir: "/data/radar/kftg", Hostname: Wildcard}, want: true},
		{name: "all dirs and types", filter: DataSetInfo{DataType: Wildcard, Dir: Wildcard, Hostname: "ingest1"}, want: true},
		{name: "other host", filter: DataSetInfo{DataType: Wildcard, Dir: Wildcard, Hostname: "ingest2"}, want: false},
		{name: "empty field is literal", filter: DataSetInfo{DataType: "", Dir: Wildcard, Hostname: Wildcard}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rec.MatchesFilter(&tt.filter))
		})
	}

	assert.True(t, (&DataSetInfo{DataType: Wildcard, Dir: Wildcard, Hostname: Wildcard}).IsWildcardAll())
	assert.Equal(t, "radar,/data/radar/kftg,ingest1", rec.Key())
}
