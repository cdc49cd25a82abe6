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

package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/carverauto/datamapper/pkg/logger"
)

func TestHealthServingStatus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv := NewServer("127.0.0.1:0", logger.NewTestLogger(), WithTelemetryDisabled())
	require.NoError(t, srv.Listen(ctx))

	errCh := make(chan error, 1)

	go func() { errCh <- srv.Start(ctx) }()

	srv.SetServingStatus("datamapper", true)

	conn, err := grpc.NewClient(srv.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	defer func() { _ = conn.Close() }()

	client := healthpb.NewHealthClient(conn)

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "datamapper"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	srv.SetServingStatus("datamapper", false)

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "datamapper"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	srv.Stop(ctx)
	require.NoError(t, <-errCh)
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(logger.NewTestLogger())

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x"},
		func(context.Context, interface{}) (interface{}, error) {
			panic("boom")
		})

	require.ErrorIs(t, err, errInternalError)
}

func TestLoggingInterceptorInjectsLogger(t *testing.T) {
	interceptor := LoggingInterceptor(logger.NewTestLogger())

	resp, err := interceptor(context.Background(), "req", &grpc.UnaryServerInfo{FullMethod: "/x"},
		func(ctx context.Context, req interface{}) (interface{}, error) {
			assert.NotNil(t, FromContext(ctx))
			return req, nil
		})

	require.NoError(t, err)
	assert.Equal(t, "req", resp)
}
