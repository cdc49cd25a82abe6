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
	"sync"
	"time"

	"github.com/carverauto/datamapper/pkg/logger"
)

// Maintenance runs the purge and snapshot hooks. The server substrate calls
// them between requests; each only acts once its interval has elapsed.
type Maintenance struct {
	store       Store
	purge       PurgeConfig
	persistence PersistenceConfig
	now         func() time.Time
	logger      logger.Logger

	mu        sync.Mutex
	lastPurge time.Time
	lastSave  time.Time
}

// NewMaintenance creates the hooks. Both intervals start counting at construction.
func NewMaintenance(store Store, purge PurgeConfig, persistence PersistenceConfig, now func() time.Time,
	log logger.Logger) *Maintenance {
	if now == nil {
		now = time.Now
	}

	started := now()

	return &Maintenance{
		store:       store,
		purge:       purge,
		persistence: persistence,
		now:         now,
		logger:      log,
		lastPurge:   started,
		lastSave:    started,
	}
}

// OnIdle purges stale registrations when the purge interval has elapsed.
func (m *Maintenance) OnIdle() {
	if !m.purge.Enabled || !m.due(&m.lastPurge, m.purge.Interval.Std()) {
		return
	}

	removed := m.store.Purge(m.purge.MaxAge.Std())
	if removed > 0 {
		m.logger.Info().
			Int("removed", removed).
			Dur("max_age", m.purge.MaxAge.Std()).
			Msg("Purged stale registrations")
	}
}

// OnAfterRequest saves a snapshot when the persistence interval has elapsed.
func (m *Maintenance) OnAfterRequest() {
	if !m.persistence.Enabled || !m.due(&m.lastSave, m.persistence.Interval.Std()) {
		return
	}

	if err := m.store.SaveSnapshot(); err != nil {
		m.logger.Warn().Err(err).Str("path", m.persistence.Path).Msg("Failed to save registry snapshot")
	}
}

// due reports whether interval has passed since *last and, if so, resets it.
func (m *Maintenance) due(last *time.Time, interval time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(*last) < interval {
		return false
	}

	*last = now

	return true
}
