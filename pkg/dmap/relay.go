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


package dmap

import (
	"context"
	"time"

	"github.com/carverauto/datamapper/pkg/logger"
	"github.com/carverauto/datamapper/pkg/wire"
)

// Relay forwards queries along a chain of DataMapper hosts. The local
// registry is never consulted.
type Relay struct {
	timeout     time.Duration
	defaultPort int
	logger      logger.Logger
}

// NewRelay creates a Relay. timeout bounds each hop; hosts without a port
// get defaultPort.
func NewRelay(timeout time.Duration, defaultPort int, log logger.Logger) *Relay {
	return &Relay{
		timeout:     timeout,
		defaultPort: defaultPort,
		logger:      log,
	}
}

// Forward sends req to its first relay host with the host list advanced by
// one and returns that host's reply unchanged. Failures are not retried.
func (r *Relay) Forward(ctx context.Context, req *wire.Request) *wire.Reply {
	hop := HostPort(req.RelayHosts[0], r.defaultPort)

	next := &wire.Request{
		Op:         req.Op,
		Records:    req.Records,
		RelayHosts: req.RelayHosts[1:],
	}

	r.logger.Debug().
		Str("op", req.Op.String()).
		Str("hop", hop).
		Int("remaining", len(next.RelayHosts)).
		Msg("Relaying query")

	rep, err := NewClient(hop, r.timeout).Do(ctx, next)
	if err != nil {
		recordRelay(ctx, false)
		return wire.FailureReply(req.Op, "%v: %s: %v", ErrRelayFailed, hop, err)
	}

	if !rep.OK {
		recordRelay(ctx, false)
		return wire.FailureReply(req.Op, "%v: %s: %s", ErrRelayFailed, hop, rep.Message)
	}

	recordRelay(ctx, true)

	return rep
}
