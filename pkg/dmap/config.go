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
	"fmt"
	"time"

	"github.com/carverauto/datamapper/pkg/models"
)

const (
	// ServiceName identifies the service in health checks, telemetry and events.
	ServiceName = "datamapper"
	// DefaultPort is the protocol port, used for relay hosts given without one.
	DefaultPort = 5434
)

const (
	defaultListenAddr     = ":5434"
	defaultMaxClients     = 128
	defaultConnTimeout    = 30 * time.Second
	defaultIdleInterval   = time.Second
	defaultRelayTimeout   = 10 * time.Second
	defaultPurgeMaxAge    = 24 * time.Hour
	defaultPurgeInterval  = 5 * time.Minute
	defaultSnapshotPath   = "/var/lib/datamapper/datamapper.state"
	defaultSnapshotPeriod = 60 * time.Second
	maxPort               = 65535
	unlimitedClients      = -1
)

// DefaultConfig returns a Config with every documented default filled in.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()

	return cfg
}

// Validate fills unset fields with defaults and checks the result.
func (c *Config) Validate() error {
	c.setDefaults()

	if err := c.validateRequiredFields(); err != nil {
		return err
	}

	if err := c.validateDurations(); err != nil {
		return err
	}

	if err := c.validateDataTypes(); err != nil {
		return err
	}

	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events: %w", err)
	}

	return nil
}

// setDefaults assigns defaults to zero-valued fields.
func (c *Config) setDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.MaxClients == 0 {
		c.MaxClients = defaultMaxClients
	}

	setDefaultDuration(&c.ConnTimeout, defaultConnTimeout)
	setDefaultDuration(&c.IdleInterval, defaultIdleInterval)
	setDefaultDuration(&c.RelayTimeout, defaultRelayTimeout)

	if c.DefaultPort == 0 {
		c.DefaultPort = DefaultPort
	}

	setDefaultDuration(&c.Purge.MaxAge, defaultPurgeMaxAge)
	setDefaultDuration(&c.Purge.Interval, defaultPurgeInterval)

	if c.Persistence.Path == "" {
		c.Persistence.Path = defaultSnapshotPath
	}

	setDefaultDuration(&c.Persistence.Interval, defaultSnapshotPeriod)

	c.Events.ApplyDefaults()
}

func setDefaultDuration(d *models.Duration, def time.Duration) {
	if *d == 0 {
		*d = models.Duration(def)
	}
}

// validateRequiredFields checks mandatory top-level fields.
func (c *Config) validateRequiredFields() error {
	if c.MaxClients < unlimitedClients {
		return fmt.Errorf("%w: %d", errInvalidMaxClients, c.MaxClients)
	}

	if c.DefaultPort < 1 || c.DefaultPort > maxPort {
		return fmt.Errorf("%w: %d", errInvalidDefaultPort, c.DefaultPort)
	}

	if c.Persistence.Enabled && c.Persistence.Path == "" {
		return errSnapshotPathRequired
	}

	return nil
}

func (c *Config) validateDurations() error {
	durations := map[string]models.Duration{
		"conn_timeout":         c.ConnTimeout,
		"idle_interval":        c.IdleInterval,
		"relay_timeout":        c.RelayTimeout,
		"purge.max_age":        c.Purge.MaxAge,
		"purge.interval":       c.Purge.Interval,
		"persistence.interval": c.Persistence.Interval,
	}

	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("%w: %s is %s", errNegativeDuration, name, d.Std())
		}
	}

	return nil
}

func (c *Config) validateDataTypes() error {
	seen := make(map[string]struct{}, len(c.DataTypes))

	for _, name := range c.DataTypes {
		if name == "" {
			return errEmptyDataType
		}

		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q", errDuplicateDataType, name)
		}

		seen[name] = struct{}{}
	}

	return nil
}
