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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/datamapper/pkg/logger"
	"github.com/carverauto/datamapper/pkg/models"
	"github.com/carverauto/datamapper/pkg/wire"
)

const (
	tracerName     = "datamapper.dmap"
	publishTimeout = 2 * time.Second
)

// Forwarder sends a query to the next DataMapper in a relay chain.
type Forwarder interface {
	Forward(ctx context.Context, req *wire.Request) *wire.Reply
}

// Handler turns decoded requests into registry calls and replies. It keeps no
// state between requests.
type Handler struct {
	store     Store
	relay     Forwarder
	publisher Publisher
	logger    logger.Logger
	tracer    trace.Tracer
}

// NewHandler creates a Handler. publisher may be nil when events are disabled.
func NewHandler(store Store, relay Forwarder, publisher Publisher, log logger.Logger) *Handler {
	return &Handler{
		store:     store,
		relay:     relay,
		publisher: publisher,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}
}

// Handle answers one request. It never returns nil.
func (h *Handler) Handle(ctx context.Context, req *wire.Request, remoteAddr string) *wire.Reply {
	start := time.Now()

	ctx, span := h.tracer.Start(ctx, "dmap."+req.Op.String(), trace.WithAttributes(
		attribute.String("dmap.op", req.Op.String()),
		attribute.Int("dmap.records", len(req.Records)),
		attribute.Int("dmap.relay_hosts", len(req.RelayHosts)),
		attribute.String("net.peer.addr", remoteAddr),
	))
	defer span.End()

	rep := h.dispatch(ctx, req, remoteAddr)
	rep.Op = req.Op

	if !rep.OK {
		span.SetStatus(codes.Error, rep.Message)
		h.logger.Warn().
			Str("op", req.Op.String()).
			Str("remote_addr", remoteAddr).
			Str("reason", rep.Message).
			Msg("Request failed")
	}

	recordRequest(ctx, req.Op.String(), rep.OK, time.Since(start))

	return rep
}

func (h *Handler) dispatch(ctx context.Context, req *wire.Request, remoteAddr string) *wire.Reply {
	if req.Op.IsQuery() && len(req.RelayHosts) > 0 {
		return h.relay.Forward(ctx, req)
	}

	switch req.Op {
	case wire.OpRegisterLatest:
		return h.register(ctx, req, remoteAddr, h.store.RegisterLatest)
	case wire.OpRegisterStatus:
		return h.register(ctx, req, remoteAddr, h.store.RegisterStatus)
	case wire.OpRegisterDataSet:
		return h.register(ctx, req, remoteAddr, h.store.RegisterDataSet)
	case wire.OpRegisterFull:
		h.store.RegisterFull(req.Records)
		h.publish(ctx, req, remoteAddr)

		return &wire.Reply{OK: true, Message: "registered"}
	case wire.OpDelete:
		if len(req.Records) == 0 {
			return wire.FailureReply(req.Op, "%v", errMissingFilter)
		}

		filter := req.Filter()
		removed := h.store.Delete(&filter)
		h.publish(ctx, req, remoteAddr)

		h.logger.Info().
			Str("datatype", filter.DataType).
			Str("dir", filter.Dir).
			Str("hostname", filter.Hostname).
			Int("removed", removed).
			Msg("Deleted registrations")

		return &wire.Reply{OK: true, Message: "deleted"}
	case wire.OpQuerySelected:
		filter := req.Filter()

		return &wire.Reply{OK: true, Records: h.store.QuerySelected(filter.DataType, filter.Dir)}
	case wire.OpQueryAll:
		return &wire.Reply{OK: true, Records: h.store.QueryAll()}
	default:
		return wire.FailureReply(req.Op, "%v: %s", errUnknownOp, req.Op)
	}
}

func (h *Handler) register(
	ctx context.Context, req *wire.Request, remoteAddr string, apply func(*models.DataSetInfo)) *wire.Reply {
	if len(req.Records) == 0 {
		return wire.FailureReply(req.Op, "%v", errEmptyRegistration)
	}

	for i := range req.Records {
		apply(&req.Records[i])
	}

	h.publish(ctx, req, remoteAddr)

	return &wire.Reply{OK: true, Message: "registered"}
}

// publish runs after the registry call has returned; failures are only logged.
func (h *Handler) publish(ctx context.Context, req *wire.Request, remoteAddr string) {
	if h.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := h.publisher.PublishRegistration(ctx, req.Op.String(), req.Records, remoteAddr); err != nil {
		h.logger.Warn().Err(err).Str("op", req.Op.String()).Msg("Failed to publish registration event")
	}
}
