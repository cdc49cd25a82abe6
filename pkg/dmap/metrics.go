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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName             = "datamapper.server"
	metricRequestsTotal   = "datamapper_requests_total"
	metricRequestDuration = "datamapper_request_duration_seconds"
	metricRelayTotal      = "datamapper_relay_total"
	metricActiveClients   = "datamapper_active_clients"
	metricRejectedClients = "datamapper_rejected_clients_total"
	outcomeOK             = "ok"
	outcomeFailure        = "failure"
)

var (
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	requestCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	requestDuration metric.Float64Histogram
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	relayCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	activeClients metric.Int64UpDownCounter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	rejectedClients metric.Int64Counter
)

func initMeter() {
	meter := otel.Meter(meterName)

	requests, err := meter.Int64Counter(
		metricRequestsTotal,
		metric.WithDescription("Protocol requests handled, by operation and outcome"),
	)
	if err != nil {
		otel.Handle(err)
	}
	requestCounter = requests

	duration, err := meter.Float64Histogram(
		metricRequestDuration,
		metric.WithDescription("Time spent handling one protocol request"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}
	requestDuration = duration

	relays, err := meter.Int64Counter(
		metricRelayTotal,
		metric.WithDescription("Queries forwarded to another DataMapper, by outcome"),
	)
	if err != nil {
		otel.Handle(err)
	}
	relayCounter = relays

	active, err := meter.Int64UpDownCounter(
		metricActiveClients,
		metric.WithDescription("Client connections currently being served"),
	)
	if err != nil {
		otel.Handle(err)
	}
	activeClients = active

	rejected, err := meter.Int64Counter(
		metricRejectedClients,
		metric.WithDescription("Connections refused because max_clients was reached"),
	)
	if err != nil {
		otel.Handle(err)
	}
	rejectedClients = rejected
}

func outcome(ok bool) string {
	if ok {
		return outcomeOK
	}

	return outcomeFailure
}

func recordRequest(ctx context.Context, op string, ok bool, elapsed time.Duration) {
	meterOnce.Do(initMeter)

	attrs := metric.WithAttributes(attribute.String("op", op), attribute.String("outcome", outcome(ok)))

	if requestCounter != nil {
		requestCounter.Add(ctx, 1, attrs)
	}

	if requestDuration != nil {
		requestDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("op", op)))
	}
}

func recordRelay(ctx context.Context, ok bool) {
	meterOnce.Do(initMeter)
	if relayCounter == nil {
		return
	}

	relayCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome(ok))))
}

func recordActiveClients(ctx context.Context, delta int64) {
	meterOnce.Do(initMeter)
	if activeClients == nil {
		return
	}

	activeClients.Add(ctx, delta)
}

func recordRejectedClient(ctx context.Context) {
	meterOnce.Do(initMeter)
	if rejectedClients == nil {
		return
	}

	rejectedClients.Add(ctx, 1)
}
