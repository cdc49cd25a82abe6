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

package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/datamapper/pkg/logger"
)

var errBoom = errors.New("boom")

type fakeService struct {
	started  atomic.Bool
	stopped  atomic.Bool
	startErr error
	done     chan struct{}
	err      error
}

func (f *fakeService) Start(context.Context) error {
	f.started.Store(true)
	return f.startErr
}

func (f *fakeService) Stop(context.Context) error {
	f.stopped.Store(true)
	return nil
}

type terminatingService struct {
	fakeService
}

func (t *terminatingService) Done() <-chan struct{} { return t.done }
func (t *terminatingService) Err() error            { return t.err }

func TestRunServerStopsOnCancel(t *testing.T) {
	svc := &fakeService{}

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)

	go func() {
		errCh <- RunServer(ctx, &ServerOptions{
			ServiceName:      "datamapper",
			Service:          svc,
			Logger:           logger.NewTestLogger(),
			HealthListenAddr: "127.0.0.1:0",
		})
	}()

	require.Eventually(t, svc.started.Load, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("RunServer did not return")
	}

	assert.True(t, svc.stopped.Load())
}

func TestRunServerStartFailure(t *testing.T) {
	svc := &fakeService{startErr: errBoom}

	err := RunServer(context.Background(), &ServerOptions{ServiceName: "datamapper", Service: svc})
	require.ErrorIs(t, err, errBoom)
	assert.False(t, svc.stopped.Load())
}

func TestRunServerServiceTerminates(t *testing.T) {
	svc := &terminatingService{fakeService{done: make(chan struct{}), err: errBoom}}
	close(svc.done)

	err := RunServer(context.Background(), &ServerOptions{ServiceName: "datamapper", Service: svc})
	require.ErrorIs(t, err, errBoom)
	assert.True(t, svc.stopped.Load())
}

func TestRunServerRequiresService(t *testing.T) {
	require.ErrorIs(t, RunServer(context.Background(), &ServerOptions{}), errServiceRequired)
}

func TestCreateComponentLogger(t *testing.T) {
	log, err := CreateComponentLogger(context.Background(), "registry", &logger.Config{Level: "warn", Output: "stderr"})
	require.NoError(t, err)
	require.NotNil(t, log)

	_, err = CreateComponentLogger(context.Background(), "registry", &logger.Config{Level: "chatty"})
	require.Error(t, err)
}
