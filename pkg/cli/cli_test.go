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
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/datamapper/pkg/dmap"
	"github.com/carverauto/datamapper/pkg/logger"
	"github.com/carverauto/datamapper/pkg/models"
)

func TestParseFlags(t *testing.T) {
	t.Setenv(serverEnv, "")

	tests := []struct {
		name    string
		args    []string
		wantErr error
		check   func(t *testing.T, cfg *CmdConfig)
	}{
		{
			name:    "no subcommand",
			wantErr: errSubcommandRequired,
		},
		{
			name:    "unknown subcommand",
			args:    []string{"frobnicate"},
			wantErr: errUnknownSubcommand,
		},
		{
			name: "help",
			args: []string{"-h"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.True(t, cfg.Help)
			},
		},
		{
			name: "register-latest defaults latest to now",
			args: []string{"register-latest", "-dir", "/data/radar/a", "-lead", "3600"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, defaultServer, cfg.Server)
				assert.Equal(t, defaultTimeout, cfg.Timeout)
				assert.Equal(t, "/data/radar/a", cfg.Dir)
				assert.Equal(t, int64(3600), cfg.ForecastLeadTime)
				assert.InDelta(t, time.Now().Unix(), cfg.LatestTime, 5)
			},
		},
		{
			name: "register-dataset",
			args: []string{"register-dataset", "-server", "dm1:6000", "-dir", "d", "-start", "10", "-end", "20", "-nfiles", "2", "-bytes", "99"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, "dm1:6000", cfg.Server)
				assert.Equal(t, int64(10), cfg.StartTime)
				assert.Equal(t, int64(20), cfg.EndTime)
				assert.Equal(t, int64(2), cfg.NFiles)
				assert.Equal(t, int64(99), cfg.TotalBytes)
			},
		},
		{
			name: "query with relay chain",
			args: []string{"query", "-datatype", "radar", "-relay", "dm2, dm3:6000,", "-json"},
			check: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, "radar", cfg.DataType)
				assert.Equal(t, []string{"dm2", "dm3:6000"}, cfg.Relay)
				assert.True(t, cfg.JSON)
			},
		},
		{
			name:    "delete requires full key",
			args:    []string{"delete", "-hostname", "ingest1"},
			wantErr: errDeleteKeyRequired,
		},
		{
			name:    "bad flag",
			args:    []string{"wipe", "-nope"},
			wantErr: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseFlags(tc.args)

			switch {
			case tc.wantErr != nil:
				require.ErrorIs(t, err, tc.wantErr)
			case tc.check != nil:
				require.NoError(t, err)
				tc.check(t, cfg)
			default:
				require.Error(t, err)
			}
		})
	}
}

func TestServerFromEnvironment(t *testing.T) {
	t.Setenv(serverEnv, "dm9:7000")

	cfg, err := ParseFlags([]string{"wipe"})
	require.NoError(t, err)
	assert.Equal(t, "dm9:7000", cfg.Server)
}

func startDataMapper(t *testing.T) string {
	t.Helper()

	srv, err := dmap.NewServer(&dmap.Config{
		ListenAddr: "127.0.0.1:0",
		DataTypes:  []string{"radar", "satellite"},
	}, logger.NewTestLogger())
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Stop(ctx)
	})

	return srv.Addr().String()
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfg, err := ParseFlags(args)
	require.NoError(t, err)

	var out bytes.Buffer
	err = Run(context.Background(), cfg, &out)

	return out.String(), err
}

func TestRunAgainstServer(t *testing.T) {
	addr := startDataMapper(t)

	out, err := run(t, "register-latest", "-server", addr, "-hostname", "ingest1", "-ip", "10.0.0.7",
		"-dir", "/data/radar/20240101", "-latest", "1704067200")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered /data/radar/20240101 from ingest1")

	_, err = run(t, "register-status", "-server", addr, "-hostname", "ingest1", "-dir", "/data/radar/20240101",
		"-status", "complete")
	require.NoError(t, err)

	out, err = run(t, "query", "-server", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "DATATYPE")
	assert.Contains(t, out, "radar")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "2024-01-01T00:00:00Z")

	out, err = run(t, "query", "-server", addr, "-datatype", "radar", "-json")
	require.NoError(t, err)

	var records []models.DataSetInfo
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "10.0.0.7", records[0].IPAddr)

	_, err = run(t, "delete", "-server", addr, "-hostname", "ingest1", "-dir", "all", "-datatype", "all")
	require.NoError(t, err)

	out, err = run(t, "query", "-server", addr, "-json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)

	out, err = run(t, "wipe", "-server", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "Registry wiped")
}

func TestRunQueryThroughRelay(t *testing.T) {
	origin := startDataMapper(t)
	entry := startDataMapper(t)

	_, err := run(t, "register-dataset", "-server", origin, "-hostname", "h", "-dir", "satellite/goes", "-nfiles", "4")
	require.NoError(t, err)

	out, err := run(t, "query", "-server", entry, "-relay", origin, "-json")
	require.NoError(t, err)

	var records []models.DataSetInfo
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "satellite", records[0].DataType)
}

func TestRunRequiresDir(t *testing.T) {
	_, err := run(t, "register-status", "-server", "127.0.0.1:1", "-hostname", "h")
	require.ErrorIs(t, err, errDirRequired)
}

func TestRegistrationAddress(t *testing.T) {
	info, err := registration(&CmdConfig{Hostname: "ingest1", Dir: "/data/radar"})
	require.NoError(t, err)
	assert.Equal(t, "ingest1", info.Hostname)
	assert.Empty(t, info.IPAddr)

	info, err = registration(&CmdConfig{Hostname: "ingest1", IPAddr: "10.0.0.7", Dir: "/data/radar"})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", info.IPAddr)

	info, err = registration(&CmdConfig{Dir: "/data/radar"})
	require.NoError(t, err)
	assert.NotEmpty(t, info.Hostname)
	assert.NotEmpty(t, info.IPAddr)
}

func TestRenderRecordsMarksStaleRows(t *testing.T) {
	out := renderRecords([]models.DataSetInfo{
		{DataType: "radar", Hostname: "fresh", Dir: "a", LastRegTime: 1000, CheckTime: 1060},
		{DataType: "radar", Hostname: "old", Dir: "b", LastRegTime: 1000, CheckTime: 1000 + 7200},
	})

	assert.Contains(t, out, "1m0s")
	assert.Contains(t, out, "2h0m0s")
	assert.Contains(t, out, "fresh")
	assert.Contains(t, out, "old")
}
