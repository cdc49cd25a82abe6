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


package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/datamapper/pkg/logger"
	"github.com/carverauto/datamapper/pkg/models"
)

var errTestFixture = errors.New("fixture error")

func TestEnsureSubjectList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		subjects []string
		subject  string
		want     []string
	}{
		{
			name:    "adds subject when list empty",
			subject: "datamapper.registrations.>",
			want:    []string{"datamapper.registrations.>"},
		},
		{
			name:     "keeps list when greater wildcard covers it",
			subjects: []string{"datamapper.>"},
			subject:  "datamapper.registrations.>",
			want:     []string{"datamapper.>"},
		},
		{
			name:     "keeps list when identical",
			subjects: []string{"datamapper.registrations.>"},
			subject:  "datamapper.registrations.>",
			want:     []string{"datamapper.registrations.>"},
		},
		{
			name:     "appends when single token wildcard is narrower",
			subjects: []string{"datamapper.registrations.*"},
			subject:  "datamapper.registrations.>",
			want:     []string{"datamapper.registrations.*", "datamapper.registrations.>"},
		},
		{
			name:     "appends when unrelated",
			subjects: []string{"events.>"},
			subject:  "datamapper.registrations.>",
			want:     []string{"events.>", "datamapper.registrations.>"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ensureSubjectList(tc.subjects, tc.subject))
		})
	}
}

func TestMatchesSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pattern  string
		subject  string
		expected bool
	}{
		{"exact", "datamapper.registrations.delete", "datamapper.registrations.delete", true},
		{"single wildcard", "datamapper.registrations.*", "datamapper.registrations.delete", true},
		{"greater wildcard", "datamapper.>", "datamapper.registrations.delete", true},
		{"greater needs a token", "datamapper.registrations.>", "datamapper.registrations", false},
		{"no match length", "datamapper.*", "datamapper.registrations.delete", false},
		{"no match tokens", "events.*.delete", "datamapper.registrations.delete", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, matchesSubject(tc.pattern, tc.subject))
		})
	}
}

func TestIsStreamMissingErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"jetstream no stream response", jetstream.ErrNoStreamResponse, true},
		{"jetstream stream not found", jetstream.ErrStreamNotFound, true},
		{"nats no stream response", nats.ErrNoStreamResponse, true},
		{"nats stream not found", nats.ErrStreamNotFound, true},
		{"nats no responders", nats.ErrNoResponders, true},
		{"other error", errTestFixture, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, isStreamMissingErr(tc.err))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, defaultStream, cfg.Stream)
	assert.Equal(t, defaultSubjectPrefix, cfg.SubjectPrefix)
	require.NoError(t, cfg.Validate())

	cfg.Enabled = true
	require.ErrorIs(t, cfg.Validate(), errURLRequired)

	cfg.URL = "nats://127.0.0.1:4222"
	require.NoError(t, cfg.Validate())

	cfg.SubjectPrefix = "datamapper.*"
	require.ErrorIs(t, cfg.Validate(), errBadPrefix)
}

func TestPublishRegistration(t *testing.T) {
	srv := runJetStreamServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := &Config{Enabled: true, URL: srv.ClientURL(), Source: "datamapper-test"}
	cfg.ApplyDefaults()

	publisher, nc, err := ConnectWithEventPublisher(ctx, cfg, logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	consumer, err := js.CreateOrUpdateConsumer(ctx, cfg.Stream, jetstream.ConsumerConfig{
		FilterSubject: publisher.Subject("register_latest"),
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	require.NoError(t, err)

	records := []models.DataSetInfo{{
		Hostname:   "ingest1",
		DataType:   "radar",
		Dir:        "/data/radar/20240101",
		LatestTime: 1700000000,
	}}

	require.NoError(t, publisher.PublishRegistration(ctx, "register_latest", records, "10.0.0.5:40000"))

	msg, err := consumer.Next(jetstream.FetchMaxWait(5 * time.Second))
	require.NoError(t, err)
	require.NoError(t, msg.Ack())

	var event struct {
		models.CloudEvent
		Data models.RegistrationEventData `json:"data"`
	}

	require.NoError(t, json.Unmarshal(msg.Data(), &event))

	assert.Equal(t, RegistrationEventType, event.Type)
	assert.Equal(t, "datamapper.registrations.register_latest", event.Subject)
	assert.Equal(t, "datamapper-test", event.Source)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "register_latest", event.Data.Operation)
	assert.Equal(t, "10.0.0.5:40000", event.Data.RemoteAddr)
	assert.Equal(t, records, event.Data.Records)
}

func TestConnectExtendsExistingStream(t *testing.T) {
	srv := runJetStreamServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{Name: "DATAMAPPER", Subjects: []string{"legacy.events"}})
	require.NoError(t, err)

	cfg := &Config{Enabled: true, URL: srv.ClientURL()}
	cfg.ApplyDefaults()

	_, pubConn, err := ConnectWithEventPublisher(ctx, cfg, logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(pubConn.Close)

	stream, err := js.Stream(ctx, "DATAMAPPER")
	require.NoError(t, err)

	assert.Equal(t, []string{"legacy.events", "datamapper.registrations.>"}, stream.CachedInfo().Config.Subjects)
}

func runJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	srv, err := server.NewServer(opts)
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	require.Eventually(t, srv.JetStreamEnabled, 5*time.Second, 50*time.Millisecond)

	t.Cleanup(srv.Shutdown)

	return srv
}
