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

// Package lifecycle runs a service until it fails or the process is signalled.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/datamapper/pkg/grpc"
	"github.com/carverauto/datamapper/pkg/logger"
)

var (
	errServiceRequired = errors.New("service is required")
	errServiceExited   = errors.New("service exited")
)

const defaultShutdownTimeout = 10 * time.Second

// Service is a component with a non-blocking Start and a graceful Stop.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Terminator is implemented by services whose serving loop can end on its
// own. Done is closed when that happens and Err reports why.
type Terminator interface {
	Done() <-chan struct{}
	Err() error
}

// ServerOptions configures RunServer.
type ServerOptions struct {
	ServiceName string
	Service     Service
	Logger      logger.Logger

	// HealthListenAddr enables the gRPC health endpoint when set.
	HealthListenAddr string
	ShutdownTimeout  time.Duration
	Signals          []os.Signal
}

// RunServer starts the service, serves the optional health endpoint and blocks
// until ctx is cancelled, a signal arrives or the service terminates.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	if opts == nil || opts.Service == nil {
		return errServiceRequired
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	signals := opts.Signals
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	ctx, stop := signal.NotifyContext(ctx, signals...)
	defer stop()

	if err := opts.Service.Start(ctx); err != nil {
		return fmt.Errorf("failed to start %s: %w", opts.ServiceName, err)
	}

	var health *grpc.Server

	if opts.HealthListenAddr != "" {
		health = grpc.NewServer(opts.HealthListenAddr, log)

		if err := health.Listen(ctx); err != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			return errors.Join(err, opts.Service.Stop(stopCtx))
		}

		health.SetServingStatus(opts.ServiceName, true)
	}

	g, gctx := errgroup.WithContext(ctx)

	if health != nil {
		g.Go(func() error {
			return health.Start(gctx)
		})
	}

	if term, ok := opts.Service.(Terminator); ok {
		g.Go(func() error {
			select {
			case <-term.Done():
				if err := term.Err(); err != nil {
					return err
				}

				return errServiceExited
			case <-gctx.Done():
				return nil
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		log.Info().Str("service", opts.ServiceName).Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if health != nil {
			health.SetServingStatus(opts.ServiceName, false)
		}

		err := opts.Service.Stop(shutdownCtx)

		if health != nil {
			health.Stop(shutdownCtx)
		}

		if err != nil {
			return fmt.Errorf("failed to stop %s: %w", opts.ServiceName, err)
		}

		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, errServiceExited) {
		return err
	}

	return nil
}
