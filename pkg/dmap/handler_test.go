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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/datamapper/pkg/logger"
	"github.com/carverauto/datamapper/pkg/models"
	"github.com/carverauto/datamapper/pkg/wire"
)

var errTestFixture = errors.New("fixture error")

type stubForwarder struct {
	got   *wire.Request
	reply *wire.Reply
}

func (f *stubForwarder) Forward(_ context.Context, req *wire.Request) *wire.Reply {
	f.got = req
	return f.reply
}

func radarRecord() models.DataSetInfo {
	return models.DataSetInfo{
		Hostname:   "ingest1",
		IPAddr:     "10.0.0.7",
		Dir:        "/data/radar/20240101",
		LatestTime: 1700000000,
	}
}

func TestHandlerRegistrations(t *testing.T) {
	tests := []struct {
		name   string
		op     wire.Op
		expect func(store *MockStore, rec models.DataSetInfo)
	}{
		{
			name: "latest",
			op:   wire.OpRegisterLatest,
			expect: func(store *MockStore, rec models.DataSetInfo) {
				store.EXPECT().RegisterLatest(&rec)
			},
		},
		{
			name: "status",
			op:   wire.OpRegisterStatus,
			expect: func(store *MockStore, rec models.DataSetInfo) {
				store.EXPECT().RegisterStatus(&rec)
			},
		},
		{
			name: "dataset",
			op:   wire.OpRegisterDataSet,
			expect: func(store *MockStore, rec models.DataSetInfo) {
				store.EXPECT().RegisterDataSet(&rec)
			},
		},
		{
			name: "full",
			op:   wire.OpRegisterFull,
			expect: func(store *MockStore, rec models.DataSetInfo) {
				store.EXPECT().RegisterFull([]models.DataSetInfo{rec})
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := NewMockStore(ctrl)
			publisher := NewMockPublisher(ctrl)

			rec := radarRecord()
			tc.expect(store, rec)
			publisher.EXPECT().
				PublishRegistration(gomock.Any(), tc.op.String(), []models.DataSetInfo{rec}, "10.0.0.7:40000").
				Return(nil)

			h := NewHandler(store, &stubForwarder{}, publisher, logger.NewTestLogger())
			rep := h.Handle(context.Background(), &wire.Request{Op: tc.op, Records: []models.DataSetInfo{rec}}, "10.0.0.7:40000")

			require.True(t, rep.OK, rep.Message)
			assert.Equal(t, tc.op, rep.Op)
		})
	}
}

func TestHandlerRegisterRequiresRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewHandler(NewMockStore(ctrl), &stubForwarder{}, nil, logger.NewTestLogger())

	rep := h.Handle(context.Background(), &wire.Request{Op: wire.OpRegisterLatest}, "peer")

	assert.False(t, rep.OK)
	assert.Contains(t, rep.Message, errEmptyRegistration.Error())
}

func TestHandlerPublishFailureIsNotReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	publisher := NewMockPublisher(ctrl)

	store.EXPECT().RegisterStatus(gomock.Any())
	publisher.EXPECT().PublishRegistration(gomock.Any(), "register_status", gomock.Len(1), "peer").Return(errTestFixture)

	h := NewHandler(store, &stubForwarder{}, publisher, logger.NewTestLogger())
	rep := h.Handle(context.Background(), &wire.Request{
		Op:      wire.OpRegisterStatus,
		Records: []models.DataSetInfo{{Hostname: "ingest1", Dir: "/data/radar/x", Status: "ok"}},
	}, "peer")

	assert.True(t, rep.OK)
}

func TestHandlerDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)

	filter := models.DataSetInfo{DataType: models.Wildcard, Dir: models.Wildcard, Hostname: "ingest1"}
	store.EXPECT().Delete(&filter).Return(3)

	h := NewHandler(store, &stubForwarder{}, nil, logger.NewTestLogger())
	rep := h.Handle(context.Background(), &wire.Request{Op: wire.OpDelete, Records: []models.DataSetInfo{filter}}, "peer")
	assert.True(t, rep.OK)

	rep = h.Handle(context.Background(), &wire.Request{Op: wire.OpDelete}, "peer")
	assert.False(t, rep.OK)
	assert.Contains(t, rep.Message, errMissingFilter.Error())
}

func TestHandlerQueries(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)

	records := []models.DataSetInfo{radarRecord()}
	store.EXPECT().QuerySelected("radar", "").Return(records)
	store.EXPECT().QueryAll().Return(records)

	h := NewHandler(store, &stubForwarder{}, nil, logger.NewTestLogger())

	rep := h.Handle(context.Background(), wire.NewQuerySelected("radar", "", nil), "peer")
	require.True(t, rep.OK)
	assert.Equal(t, records, rep.Records)
	assert.Equal(t, wire.OpQuerySelected, rep.Op)

	rep = h.Handle(context.Background(), &wire.Request{Op: wire.OpQueryAll}, "peer")
	require.True(t, rep.OK)
	assert.Equal(t, records, rep.Records)
}

func TestHandlerRelaysQueriesWithHosts(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl) // no calls expected: relayed queries bypass the registry

	relayed := &wire.Reply{Op: wire.OpQueryAll, OK: true, Records: []models.DataSetInfo{radarRecord()}}
	fwd := &stubForwarder{reply: relayed}

	h := NewHandler(store, fwd, nil, logger.NewTestLogger())

	req := &wire.Request{Op: wire.OpQueryAll, RelayHosts: []string{"dm2", "dm3"}}
	rep := h.Handle(context.Background(), req, "peer")

	assert.Same(t, relayed, rep)
	assert.Same(t, req, fwd.got)
}

func TestHandlerUnknownOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewHandler(NewMockStore(ctrl), &stubForwarder{}, nil, logger.NewTestLogger())

	rep := h.Handle(context.Background(), &wire.Request{Op: wire.Op(42), RelayHosts: []string{"dm2"}}, "peer")

	assert.False(t, rep.OK)
	assert.Equal(t, wire.Op(42), rep.Op)
	assert.Contains(t, rep.Message, "unknown operation: op(42)")
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestMaintenancePurgeInterval(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	clock := &fakeClock{now: time.Unix(1700000000, 0)}

	purge := PurgeConfig{Enabled: true, MaxAge: models.Duration(time.Hour), Interval: models.Duration(time.Minute)}
	m := NewMaintenance(store, purge, PersistenceConfig{}, clock.Now, logger.NewTestLogger())

	m.OnIdle()
	m.OnAfterRequest()

	clock.Advance(time.Minute)
	store.EXPECT().Purge(time.Hour).Return(2)
	m.OnIdle()

	clock.Advance(30 * time.Second)
	m.OnIdle()

	clock.Advance(30 * time.Second)
	store.EXPECT().Purge(time.Hour).Return(0)
	m.OnIdle()
}

func TestMaintenanceSnapshotInterval(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	clock := &fakeClock{now: time.Unix(1700000000, 0)}

	persistence := PersistenceConfig{Enabled: true, Path: "/tmp/x", Interval: models.Duration(time.Minute)}
	m := NewMaintenance(store, PurgeConfig{}, persistence, clock.Now, logger.NewTestLogger())

	m.OnAfterRequest()
	m.OnIdle()

	clock.Advance(2 * time.Minute)
	store.EXPECT().SaveSnapshot().Return(errTestFixture)
	m.OnAfterRequest()

	m.OnAfterRequest()

	clock.Advance(time.Minute)
	store.EXPECT().SaveSnapshot().Return(nil)
	m.OnAfterRequest()
}
