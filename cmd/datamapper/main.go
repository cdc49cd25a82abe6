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


package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/carverauto/datamapper/pkg/config"
	"github.com/carverauto/datamapper/pkg/dmap"
	"github.com/carverauto/datamapper/pkg/lifecycle"
	"github.com/carverauto/datamapper/pkg/logger"
	"github.com/carverauto/datamapper/pkg/version"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/datamapper/datamapper.json", "Path to config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Fprintln(os.Stdout, version.GetFullVersion())
		return nil
	}

	ctx := context.Background()

	cfg := dmap.DefaultConfig()
	if err := config.NewConfig(nil).LoadAndValidate(ctx, *configPath, cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = logger.DefaultConfig()
	}

	mainLogger, err := lifecycle.CreateComponentLogger(ctx, dmap.ServiceName, logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defer func() {
		if err := lifecycle.ShutdownLogger(context.Background()); err != nil {
			log.Printf("Failed to shut down telemetry: %v", err)
		}
	}()

	_, err = logger.InitializeMetrics(ctx, logger.MetricsConfig{
		ServiceName:    dmap.ServiceName,
		ServiceVersion: version.GetVersion(),
		OTel:           cfg.Metrics,
	})
	if err != nil && !errors.Is(err, logger.ErrOTelMetricsDisabled) {
		mainLogger.Warn().Err(err).Msg("Metrics export disabled")
	}

	if _, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName:    dmap.ServiceName,
		ServiceVersion: version.GetVersion(),
		OTel:           cfg.Metrics,
	}); err != nil {
		mainLogger.Warn().Err(err).Msg("Tracing disabled")
	}

	server, err := dmap.NewServer(cfg, mainLogger)
	if err != nil {
		return fmt.Errorf("failed to create DataMapper server: %w", err)
	}

	mainLogger.Info().Str("version", version.GetFullVersion()).Msg("Starting DataMapper")

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ServiceName:      dmap.ServiceName,
		Service:          server,
		Logger:           mainLogger,
		HealthListenAddr: cfg.HealthListenAddr,
	})
}
