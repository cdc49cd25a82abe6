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

// Package registry holds the in-memory table of dataset registrations.
package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carverauto/datamapper/pkg/logger"
	"github.com/carverauto/datamapper/pkg/models"
)

// Removal reasons reported to metrics.
const (
	reasonDelete = "delete"
	reasonPurge  = "purge"
	reasonClear  = "clear"
)

// Registry owns every DataSetInfo record, keyed by (datatype, dir, hostname).
// Each exported method is a single critical section. Callers only ever see
// copies.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*models.DataSetInfo

	dataTypes    []string
	snapshotPath string
	now          func() time.Time
	logger       logger.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithDataTypes sets the ordered datatype names used for inference.
func WithDataTypes(names []string) Option {
	return func(r *Registry) {
		r.dataTypes = append([]string(nil), names...)
	}
}

// WithSnapshotPath sets the file used by SaveSnapshot and LoadSnapshot.
func WithSnapshotPath(path string) Option {
	return func(r *Registry) {
		r.snapshotPath = path
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(log logger.Logger, opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*models.DataSetInfo),
		now:     time.Now,
		logger:  log,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RegisterLatest records the arrival of new data for a dataset.
func (r *Registry) RegisterLatest(info *models.DataSetInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.findOrCreate(info)
	entry.LatestTime = info.LatestTime
	entry.ForecastLeadTime = info.ForecastLeadTime
	entry.LastRegTime = r.now().Unix()

	recordRegistration(context.Background(), "register_latest", 1)
}

// RegisterStatus overwrites the free-text status of a dataset.
func (r *Registry) RegisterStatus(info *models.DataSetInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.findOrCreate(info)
	entry.Status = info.Status
	entry.LastRegTime = r.now().Unix()

	recordRegistration(context.Background(), "register_status", 1)
}

// RegisterDataSet overwrites the extent and size counters of a dataset.
func (r *Registry) RegisterDataSet(info *models.DataSetInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.findOrCreate(info)
	entry.StartTime = info.StartTime
	entry.EndTime = info.EndTime
	entry.NFiles = info.NFiles
	entry.TotalBytes = info.TotalBytes
	entry.LastRegTime = r.now().Unix()

	recordRegistration(context.Background(), "register_dataset", 1)
}

// RegisterFull replaces each supplied record wholesale. Only the datatype is
// touched, so that no record is ever stored without one.
func (r *Registry) RegisterFull(infos []models.DataSetInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range infos {
		rec := infos[i]
		rec.DataType = r.resolveDataType(rec.DataType, rec.Dir)
		rec.CheckTime = 0

		r.entries[rec.Key()] = &rec
	}

	recordRegistration(context.Background(), "register_full", len(infos))
}

// Delete removes every record matching filter and returns how many were
// removed. "all" in a field matches anything; all three "all" clears the table.
func (r *Registry) Delete(filter *models.DataSetInfo) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if filter.IsWildcardAll() {
		return r.clearLocked(reasonDelete)
	}

	// An explicit "unknown" matches records stored that way.
	f := *filter
	if f.DataType == "" {
		f.DataType = InferDataType(r.dataTypes, f.Dir)
	}

	removed := 0

	for key, entry := range r.entries {
		if entry.MatchesFilter(&f) {
			delete(r.entries, key)

			removed++
		}
	}

	if removed > 0 {
		r.logger.Debug().
			Str("datatype", f.DataType).
			Str("dir", f.Dir).
			Str("hostname", f.Hostname).
			Int("removed", removed).
			Msg("Deleted dataset registrations")
	}

	recordRemoval(context.Background(), reasonDelete, removed)

	return removed
}

// QuerySelected returns copies of every record matching dataType and dir,
// ordered by key. Empty arguments do not filter. Each copy carries
// CheckTime = now.
func (r *Registry) QuerySelected(dataType, dir string) []models.DataSetInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	checkTime := r.now().Unix()
	keys := make([]string, 0, len(r.entries))

	for key, entry := range r.entries {
		if dataType != "" && entry.DataType != dataType {
			continue
		}

		if dir != "" && entry.Dir != dir {
			continue
		}

		keys = append(keys, key)
	}

	sort.Strings(keys)

	out := make([]models.DataSetInfo, 0, len(keys))

	for _, key := range keys {
		rec := *r.entries[key]
		rec.CheckTime = checkTime
		out = append(out, rec)
	}

	return out
}

// QueryAll returns every record, ordered by key.
func (r *Registry) QueryAll() []models.DataSetInfo {
	return r.QuerySelected("", "")
}

// Purge removes records whose reference time is more than maxAge in the past.
// The reference time is last_reg_time, falling back to end_time, start_time
// and latest_time in turn when the previous one is zero.
func (r *Registry) Purge(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().Unix()
	limit := int64(maxAge / time.Second)
	removed := 0

	for key, entry := range r.entries {
		if now-referenceTime(entry) > limit {
			r.logger.Debug().
				Str("key", key).
				Int64("age_seconds", now-referenceTime(entry)).
				Msg("Purging stale dataset registration")

			delete(r.entries, key)

			removed++
		}
	}

	if removed > 0 {
		r.logger.Info().
			Int("removed", removed).
			Int("remaining", len(r.entries)).
			Dur("max_age", maxAge).
			Msg("Purged stale dataset registrations")
	}

	recordRemoval(context.Background(), reasonPurge, removed)

	return removed
}

// Clear drops every record.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.clearLocked(reasonClear)
}

// Len returns the number of stored records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

func (r *Registry) clearLocked(reason string) int {
	removed := len(r.entries)
	r.entries = make(map[string]*models.DataSetInfo)

	r.logger.Info().Int("removed", removed).Str("reason", reason).Msg("Cleared dataset registry")
	recordRemoval(context.Background(), reason, removed)

	return removed
}

// findOrCreate returns the stored record for info's key, inserting a zeroed
// record carrying only the identifying fields when absent. ipaddr is refreshed
// whenever the caller supplies one.
func (r *Registry) findOrCreate(info *models.DataSetInfo) *models.DataSetInfo {
	dataType := r.resolveDataType(info.DataType, info.Dir)
	key := models.DataSetKey(dataType, info.Dir, info.Hostname)

	entry, ok := r.entries[key]
	if !ok {
		entry = &models.DataSetInfo{
			Hostname: info.Hostname,
			IPAddr:   info.IPAddr,
			DataType: dataType,
			Dir:      info.Dir,
		}
		r.entries[key] = entry

		return entry
	}

	if info.IPAddr != "" {
		entry.IPAddr = info.IPAddr
	}

	return entry
}

func referenceTime(info *models.DataSetInfo) int64 {
	switch {
	case info.LastRegTime != 0:
		return info.LastRegTime
	case info.EndTime != 0:
		return info.EndTime
	case info.StartTime != 0:
		return info.StartTime
	default:
		return info.LatestTime
	}
}
