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

const (
	// Wildcard matches any value of a key field in delete filters.
	Wildcard = "all"
	// UnknownDataType is stored when no configured data type matches a directory.
	UnknownDataType = "unknown"
)

// DataSetInfo is one dataset registration, identified by (DataType, Dir, Hostname).
type DataSetInfo struct {
	Hostname string `json:"hostname"`
	IPAddr   string `json:"ipaddr"`
	DataType string `json:"datatype"`
	Dir      string `json:"dir"`
	Status   string `json:"status"`

	StartTime        int64 `json:"start_time"`
	EndTime          int64 `json:"end_time"`
	LatestTime       int64 `json:"latest_time"`
	LastRegTime      int64 `json:"last_reg_time"` // stamped by the registry on every registration
	ForecastLeadTime int64 `json:"forecast_lead_time"`
	NFiles           int64 `json:"nfiles"`
	TotalBytes       int64 `json:"total_bytes"`

	// CheckTime is only set on query results and never stored.
	CheckTime int64 `json:"check_time,omitempty"`
}

// Key returns the exact-lookup key for the registration.
func (d *DataSetInfo) Key() string {
	return DataSetKey(d.DataType, d.Dir, d.Hostname)
}

// DataSetKey builds the table key from the three identifying fields.
func DataSetKey(dataType, dir, hostname string) string {
	return dataType + "," + dir + "," + hostname
}

// MatchesFilter reports whether each key field equals the filter's field or
// the filter's field is the wildcard.
func (d *DataSetInfo) MatchesFilter(filter *DataSetInfo) bool {
	return matchField(filter.DataType, d.DataType) &&
		matchField(filter.Dir, d.Dir) &&
		matchField(filter.Hostname, d.Hostname)
}

// IsWildcardAll reports whether every key field of the filter is the wildcard.
func (d *DataSetInfo) IsWildcardAll() bool {
	return d.DataType == Wildcard && d.Dir == Wildcard && d.Hostname == Wildcard
}

func matchField(pattern, value string) bool {
	return pattern == Wildcard || pattern == value
}
