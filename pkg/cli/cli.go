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


// Package cli implements dmapctl, the DataMapper operator tool.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/carverauto/datamapper/pkg/dmap"
	"github.com/carverauto/datamapper/pkg/models"
)

// Dracula theme colors.
const (
	draculaForeground = "#F8F8F2"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaPurple     = "#BD93F9"
	draculaRed        = "#FF5555"
	draculaYellow     = "#F1FA8C"
	draculaComment    = "#6272A4"
)

const (
	defaultServer  = "localhost:5434"
	defaultTimeout = 10 * time.Second
	serverEnv      = "DATAMAPPER_ADDR"
	staleAfter     = time.Hour
)

func newLogStyles() logStyles {
	return logStyles{
		info: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaCyan)),
		success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaGreen)),
		warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaYellow)),
		error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaRed)).
			Bold(true),
	}
}

func newTableStyles() tableStyles {
	return tableStyles{
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaPurple)).
			Bold(true).
			Padding(0, 1),
		cell: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaForeground)).
			Padding(0, 1),
		stale: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaYellow)).
			Padding(0, 1),
		border: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaComment)),
	}
}

// SubcommandHandler defines the interface for parsing subcommand flags.
type SubcommandHandler interface {
	Parse(args []string, cfg *CmdConfig) error
}

func newFlagSet(name string, cfg *CmdConfig) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	server := os.Getenv(serverEnv)
	if server == "" {
		server = defaultServer
	}

	fs.StringVar(&cfg.Server, "server", server, "DataMapper address")
	fs.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "request timeout")

	return fs
}

func addKeyFlags(fs *flag.FlagSet, cfg *CmdConfig) {
	fs.StringVar(&cfg.Hostname, "hostname", "", "registering host")
	fs.StringVar(&cfg.IPAddr, "ip", "", "registering host address")
	fs.StringVar(&cfg.DataType, "datatype", "", "dataset type")
	fs.StringVar(&cfg.Dir, "dir", "", "dataset directory")
}

// RegisterLatestHandler handles flags for the register-latest subcommand.
type RegisterLatestHandler struct{}

// Parse processes the command-line arguments for the register-latest subcommand.
func (RegisterLatestHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet("register-latest", cfg)
	addKeyFlags(fs, cfg)
	fs.Int64Var(&cfg.LatestTime, "latest", 0, "latest data time, Unix seconds")
	fs.Int64Var(&cfg.ForecastLeadTime, "lead", 0, "forecast lead time in seconds")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing register-latest flags: %w", err)
	}

	if cfg.LatestTime == 0 {
		cfg.LatestTime = time.Now().Unix()
	}

	return nil
}

// RegisterStatusHandler handles flags for the register-status subcommand.
type RegisterStatusHandler struct{}

// Parse processes the command-line arguments for the register-status subcommand.
func (RegisterStatusHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet("register-status", cfg)
	addKeyFlags(fs, cfg)
	fs.StringVar(&cfg.Status, "status", "", "status text")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing register-status flags: %w", err)
	}

	return nil
}

// RegisterDataSetHandler handles flags for the register-dataset subcommand.
type RegisterDataSetHandler struct{}

// Parse processes the command-line arguments for the register-dataset subcommand.
func (RegisterDataSetHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet("register-dataset", cfg)
	addKeyFlags(fs, cfg)
	fs.Int64Var(&cfg.StartTime, "start", 0, "data start time, Unix seconds")
	fs.Int64Var(&cfg.EndTime, "end", 0, "data end time, Unix seconds")
	fs.Int64Var(&cfg.NFiles, "nfiles", 0, "number of files")
	fs.Int64Var(&cfg.TotalBytes, "bytes", 0, "total size in bytes")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing register-dataset flags: %w", err)
	}

	return nil
}

// QueryHandler handles flags for the query subcommand.
type QueryHandler struct{}

// Parse processes the command-line arguments for the query subcommand.
func (QueryHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet("query", cfg)
	fs.StringVar(&cfg.DataType, "datatype", "", "only this datatype")
	fs.StringVar(&cfg.Dir, "dir", "", "only this directory")
	relay := fs.String("relay", "", "comma-separated relay chain")
	fs.BoolVar(&cfg.JSON, "json", false, "print JSON")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing query flags: %w", err)
	}

	cfg.Relay = splitList(*relay)

	return nil
}

// DeleteHandler handles flags for the delete subcommand.
type DeleteHandler struct{}

// Parse processes the command-line arguments for the delete subcommand.
func (DeleteHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet("delete", cfg)
	fs.StringVar(&cfg.Hostname, "hostname", "", "host, or all")
	fs.StringVar(&cfg.Dir, "dir", "", "directory, or all")
	fs.StringVar(&cfg.DataType, "datatype", "", "datatype, or all")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing delete flags: %w", err)
	}

	if cfg.Hostname == "" || cfg.Dir == "" || cfg.DataType == "" {
		return errDeleteKeyRequired
	}

	return nil
}

// WipeHandler handles flags for the wipe subcommand.
type WipeHandler struct{}

// Parse processes the command-line arguments for the wipe subcommand.
func (WipeHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet("wipe", cfg)

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing wipe flags: %w", err)
	}

	return nil
}

func subcommands() map[string]SubcommandHandler {
	return map[string]SubcommandHandler{
		"register-latest":  RegisterLatestHandler{},
		"register-status":  RegisterStatusHandler{},
		"register-dataset": RegisterDataSetHandler{},
		"query":            QueryHandler{},
		"delete":           DeleteHandler{},
		"wipe":             WipeHandler{},
	}
}

// ParseFlags parses the subcommand and its flags from args (os.Args[1:]).
func ParseFlags(args []string) (*CmdConfig, error) {
	cfg := &CmdConfig{}

	if len(args) == 0 {
		return cfg, errSubcommandRequired
	}

	cfg.SubCmd = args[0]

	if cfg.SubCmd == "help" || cfg.SubCmd == "-help" || cfg.SubCmd == "--help" || cfg.SubCmd == "-h" {
		cfg.Help = true
		return cfg, nil
	}

	handler, exists := subcommands()[cfg.SubCmd]
	if !exists {
		return cfg, fmt.Errorf("%w: %s", errUnknownSubcommand, cfg.SubCmd)
	}

	if err := handler.Parse(args[1:], cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Run executes the parsed subcommand against the configured server and
// writes the result to out.
func Run(ctx context.Context, cfg *CmdConfig, out io.Writer) error {
	if cfg.Help {
		ShowHelp(out)
		return nil
	}

	if cfg.Server == "" {
		return errServerRequired
	}

	client := dmap.NewClient(dmap.HostPort(cfg.Server, dmap.DefaultPort), cfg.Timeout)
	styles := newLogStyles()

	switch cfg.SubCmd {
	case "register-latest", "register-status", "register-dataset":
		return runRegister(ctx, client, cfg, out, styles)
	case "query":
		return runQuery(ctx, client, cfg, out)
	case "delete":
		if err := client.Delete(ctx, cfg.DataType, cfg.Dir, cfg.Hostname); err != nil {
			return err
		}

		fmt.Fprintln(out, styles.success.Render(fmt.Sprintf("Deleted %s,%s,%s", cfg.DataType, cfg.Dir, cfg.Hostname)))

		return nil
	case "wipe":
		if err := client.Wipe(ctx); err != nil {
			return err
		}

		fmt.Fprintln(out, styles.warning.Render("Registry wiped on "+client.Addr()))

		return nil
	default:
		return fmt.Errorf("%w: %s", errUnknownSubcommand, cfg.SubCmd)
	}
}

func registration(cfg *CmdConfig) (*models.DataSetInfo, error) {
	if cfg.Dir == "" {
		return nil, errDirRequired
	}

	hostname := cfg.Hostname
	ip := cfg.IPAddr

	// The local address is only meaningful when registering for this host.
	if hostname == "" {
		var err error

		if hostname, err = localHostname(); err != nil {
			return nil, err
		}

		if ip == "" {
			ip, _ = getLocalIP()
		}
	}

	return &models.DataSetInfo{
		Hostname:         hostname,
		IPAddr:           ip,
		DataType:         cfg.DataType,
		Dir:              cfg.Dir,
		Status:           cfg.Status,
		StartTime:        cfg.StartTime,
		EndTime:          cfg.EndTime,
		LatestTime:       cfg.LatestTime,
		ForecastLeadTime: cfg.ForecastLeadTime,
		NFiles:           cfg.NFiles,
		TotalBytes:       cfg.TotalBytes,
	}, nil
}

func runRegister(ctx context.Context, client *dmap.Client, cfg *CmdConfig, out io.Writer, styles logStyles) error {
	info, err := registration(cfg)
	if err != nil {
		return err
	}

	switch cfg.SubCmd {
	case "register-latest":
		err = client.RegisterLatest(ctx, info)
	case "register-status":
		err = client.RegisterStatus(ctx, info)
	default:
		err = client.RegisterDataSet(ctx, info)
	}

	if err != nil {
		return err
	}

	fmt.Fprintln(out, styles.success.Render(fmt.Sprintf("Registered %s from %s", info.Dir, info.Hostname)))

	return nil
}

func runQuery(ctx context.Context, client *dmap.Client, cfg *CmdConfig, out io.Writer) error {
	var (
		records []models.DataSetInfo
		err     error
	)

	if cfg.DataType == "" && cfg.Dir == "" {
		records, err = client.QueryAll(ctx, cfg.Relay)
	} else {
		records, err = client.QuerySelected(ctx, cfg.DataType, cfg.Dir, cfg.Relay)
	}

	if err != nil {
		return err
	}

	if cfg.JSON {
		if records == nil {
			records = []models.DataSetInfo{}
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(records)
	}

	fmt.Fprintln(out, renderRecords(records))

	return nil
}

func renderRecords(records []models.DataSetInfo) string {
	styles := newTableStyles()
	stale := make(map[int]bool, len(records))
	rows := make([][]string, 0, len(records))

	for i := range records {
		rec := &records[i]
		age := time.Duration(rec.CheckTime-rec.LastRegTime) * time.Second
		stale[i] = rec.LastRegTime != 0 && age > staleAfter

		rows = append(rows, []string{
			rec.DataType,
			rec.Hostname,
			rec.IPAddr,
			rec.Dir,
			rec.Status,
			formatUnix(rec.LatestTime),
			strconv.FormatInt(rec.NFiles, 10),
			age.String(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.border).
		Headers("DATATYPE", "HOST", "IP", "DIR", "STATUS", "LATEST", "FILES", "AGE").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.header
			case stale[row]:
				return styles.stale
			default:
				return styles.cell
			}
		})

	return t.String()
}

func formatUnix(ts int64) string {
	if ts == 0 {
		return "-"
	}

	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
