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


package cli

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// CmdConfig holds parsed command-line configuration.
type CmdConfig struct {
	Help    bool
	SubCmd  string
	Server  string
	Timeout time.Duration
	JSON    bool

	Hostname         string
	IPAddr           string
	DataType         string
	Dir              string
	Status           string
	StartTime        int64
	EndTime          int64
	LatestTime       int64
	ForecastLeadTime int64
	NFiles           int64
	TotalBytes       int64

	Relay []string
}

// logStyles defines styles for logging messages
type logStyles struct {
	info, success, warning, error lipgloss.Style
}

// tableStyles defines styles for the query result table.
type tableStyles struct {
	header, cell, stale, border lipgloss.Style
}
