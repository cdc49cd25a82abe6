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

package registry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName                = "datamapper.registry"
	metricRegistrationsTotal = "datamapper_registrations_total"
	metricRemovedTotal       = "datamapper_records_removed_total"
	metricSnapshotTotal      = "datamapper_snapshot_total"
)

var (
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	registrationCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	removedCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	snapshotCounter metric.Int64Counter
)

func initMeter() {
	meter := otel.Meter(meterName)

	registrations, err := meter.Int64Counter(
		metricRegistrationsTotal,
		metric.WithDescription("Dataset registrations applied to the registry"),
	)
	if err != nil {
		otel.Handle(err)
	}
	registrationCounter = registrations

	removed, err := meter.Int64Counter(
		metricRemovedTotal,
		metric.WithDescription("Dataset registrations removed from the registry"),
	)
	if err != nil {
		otel.Handle(err)
	}
	removedCounter = removed

	snapshots, err := meter.Int64Counter(
		metricSnapshotTotal,
		metric.WithDescription("Registry snapshot save and load attempts"),
	)
	if err != nil {
		otel.Handle(err)
	}
	snapshotCounter = snapshots
}

func recordRegistration(ctx context.Context, op string, count int) {
	if count == 0 {
		return
	}

	meterOnce.Do(initMeter)
	if registrationCounter == nil {
		return
	}

	registrationCounter.Add(ctx, int64(count), metric.WithAttributes(attribute.String("op", op)))
}

func recordRemoval(ctx context.Context, reason string, count int) {
	if count == 0 {
		return
	}

	meterOnce.Do(initMeter)
	if removedCounter == nil {
		return
	}

	removedCounter.Add(ctx, int64(count), metric.WithAttributes(attribute.String("reason", reason)))
}

func recordSnapshot(ctx context.Context, outcome string) {
	meterOnce.Do(initMeter)
	if snapshotCounter == nil {
		return
	}

	snapshotCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
