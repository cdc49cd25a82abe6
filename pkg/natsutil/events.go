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


// Package natsutil publishes registry events to NATS JetStream.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/datamapper/pkg/logger"
	"github.com/carverauto/datamapper/pkg/models"
)

const (
	// RegistrationEventType is the CloudEvent type of every registry mutation event.
	RegistrationEventType = "com.carverauto.datamapper.registration"

	defaultStream        = "DATAMAPPER"
	defaultSubjectPrefix = "datamapper.registrations"
	defaultSource        = "datamapper"
	defaultConnectWait   = 5 * time.Second
)

var (
	errURLRequired = errors.New("nats_url is required when events are enabled")
	errBadPrefix   = errors.New("subject_prefix must not contain wildcards or trailing dots")
)

// Config configures the JetStream connection used for registration events.
type Config struct {
	Enabled       bool              `json:"enabled"`
	URL           string            `json:"nats_url"`
	Stream        string            `json:"stream"`
	SubjectPrefix string            `json:"subject_prefix"`
	Source        string            `json:"source"`
	CredsFile     string            `json:"creds_file,omitempty"`
	TLS           *logger.TLSConfig `json:"tls,omitempty"`
}

// ApplyDefaults fills unset stream, subject prefix and source.
func (c *Config) ApplyDefaults() {
	if c.Stream == "" {
		c.Stream = defaultStream
	}

	if c.SubjectPrefix == "" {
		c.SubjectPrefix = defaultSubjectPrefix
	}

	if c.Source == "" {
		c.Source = defaultSource
	}
}

// Validate checks an enabled configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.URL == "" {
		return errURLRequired
	}

	if strings.ContainsAny(c.SubjectPrefix, "*> ") || strings.HasSuffix(c.SubjectPrefix, ".") {
		return fmt.Errorf("%w: %q", errBadPrefix, c.SubjectPrefix)
	}

	return nil
}

// EventPublisher provides methods for publishing CloudEvents to NATS JetStream.
type EventPublisher struct {
	js            jetstream.JetStream
	stream        string
	subjectPrefix string
	source        string
	logger        logger.Logger
}

// NewEventPublisher creates a new EventPublisher for the specified stream.
func NewEventPublisher(js jetstream.JetStream, streamName, subjectPrefix, source string, log logger.Logger) *EventPublisher {
	return &EventPublisher{
		js:            js,
		stream:        streamName,
		subjectPrefix: subjectPrefix,
		source:        source,
		logger:        log,
	}
}

// Subject returns the subject events for op are published on.
func (p *EventPublisher) Subject(op string) string {
	return p.subjectPrefix + "." + op
}

// PublishRegistration publishes one event describing a registry mutation.
func (p *EventPublisher) PublishRegistration(
	ctx context.Context, op string, records []models.DataSetInfo, remoteAddr string) error {
	now := time.Now().UTC()

	data := models.RegistrationEventData{
		Operation:  op,
		Source:     p.source,
		Timestamp:  now,
		Records:    records,
		RemoteAddr: remoteAddr,
	}

	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          p.source,
		Type:            RegistrationEventType,
		DataContentType: "application/json",
		Subject:         p.Subject(op),
		Time:            &now,
		Data:            data,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal registration event: %w", err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, eventBytes, jetstream.WithMsgID(event.ID))
	if err != nil {
		return fmt.Errorf("failed to publish registration event: %w", err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("seq", ack.Sequence).
		Msg("Published registration event")

	return nil
}

// ConnectWithEventPublisher creates a NATS connection with JetStream, makes
// sure the stream captures the configured subject prefix and returns an
// EventPublisher bound to it.
func ConnectWithEventPublisher(
	ctx context.Context, cfg *Config, log logger.Logger, extraOpts ...nats.Option) (*EventPublisher, *nats.Conn, error) {
	opts := append(connectionOptions(cfg, log), extraOpts...)

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if err := ensureStream(ctx, js, cfg.Stream, cfg.SubjectPrefix+".>"); err != nil {
		nc.Close()
		return nil, nil, err
	}

	return NewEventPublisher(js, cfg.Stream, cfg.SubjectPrefix, cfg.Source, log), nc, nil
}

func connectionOptions(cfg *Config, log logger.Logger) []nats.Option {
	opts := []nats.Option{
		nats.Name(cfg.Source),
		nats.Timeout(defaultConnectWait),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.ConnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	if cfg.CredsFile != "" {
		opts = append(opts, nats.UserCredentials(cfg.CredsFile))
	}

	if cfg.TLS != nil {
		if cfg.TLS.CAFile != "" {
			opts = append(opts, nats.RootCAs(cfg.TLS.CAFile))
		}

		if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
			opts = append(opts, nats.ClientCert(cfg.TLS.CertFile, cfg.TLS.KeyFile))
		}
	}

	return opts
}

func ensureStream(ctx context.Context, js jetstream.JetStream, name, subject string) error {
	stream, err := js.Stream(ctx, name)
	if err != nil {
		if !isStreamMissingErr(err) {
			return fmt.Errorf("failed to look up stream %s: %w", name, err)
		}

		_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     name,
			Subjects: []string{subject},
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}

		return nil
	}

	streamCfg := stream.CachedInfo().Config

	subjects := ensureSubjectList(streamCfg.Subjects, subject)
	if len(subjects) == len(streamCfg.Subjects) {
		return nil
	}

	streamCfg.Subjects = subjects

	if _, err := js.UpdateStream(ctx, streamCfg); err != nil {
		return fmt.Errorf("failed to add subject %s to stream %s: %w", subject, name, err)
	}

	return nil
}

// ensureSubjectList returns subjects with subject appended unless an existing
// pattern already covers it.
func ensureSubjectList(subjects []string, subject string) []string {
	for _, existing := range subjects {
		if matchesSubject(existing, subject) {
			return subjects
		}
	}

	return append(slices.Clone(subjects), subject)
}

// matchesSubject reports whether the NATS subject pattern covers subject.
// A literal pattern equal to a wildcard subject counts as a match.
func matchesSubject(pattern, subject string) bool {
	if pattern == subject {
		return true
	}

	patternTokens := strings.Split(pattern, ".")
	subjectTokens := strings.Split(subject, ".")

	for i, token := range patternTokens {
		if token == ">" {
			return i < len(subjectTokens)
		}

		if i >= len(subjectTokens) || subjectTokens[i] == ">" {
			return false
		}

		if token != "*" && token != subjectTokens[i] {
			return false
		}
	}

	return len(patternTokens) == len(subjectTokens)
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrNoResponders)
}
