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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/carverauto/datamapper/pkg/models"
	"github.com/carverauto/datamapper/pkg/wire"
)

const (
	snapshotOutcomeSaved   = "saved"
	snapshotOutcomeFailed  = "failed"
	snapshotOutcomeLoaded  = "loaded"
	snapshotOutcomeCorrupt = "corrupt"

	snapshotFileMode = 0o600
)

// SaveSnapshot writes every record to the snapshot path as a flat sequence of
// wire records. The file is replaced atomically: a temporary file in the same
// directory is written, synced and renamed over the target.
func (r *Registry) SaveSnapshot() error {
	if r.snapshotPath == "" {
		return ErrSnapshotPathNotSet
	}

	buf, count := r.encodeSnapshot()

	if err := writeFileAtomic(r.snapshotPath, buf); err != nil {
		recordSnapshot(context.Background(), snapshotOutcomeFailed)

		return fmt.Errorf("save snapshot %s: %w", r.snapshotPath, err)
	}

	recordSnapshot(context.Background(), snapshotOutcomeSaved)

	r.logger.Debug().
		Str("path", r.snapshotPath).
		Int("records", count).
		Msg("Saved registry snapshot")

	return nil
}

// LoadSnapshot replaces the table with the contents of the snapshot file.
// A missing file leaves the registry empty and is not an error. A file whose
// size is not a whole number of records, or holding an undecodable record,
// leaves the registry empty and returns ErrCorruptSnapshot.
func (r *Registry) LoadSnapshot() error {
	if r.snapshotPath == "" {
		return ErrSnapshotPathNotSet
	}

	buf, err := os.ReadFile(r.snapshotPath)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Info().Str("path", r.snapshotPath).Msg("No registry snapshot found, starting empty")

		return nil
	}

	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", r.snapshotPath, err)
	}

	records, err := wire.DecodeRecords(buf)
	if err != nil {
		recordSnapshot(context.Background(), snapshotOutcomeCorrupt)

		r.mu.Lock()
		r.entries = make(map[string]*models.DataSetInfo)
		r.mu.Unlock()

		return fmt.Errorf("%w: %s (%d bytes): %w", ErrCorruptSnapshot, r.snapshotPath, len(buf), err)
	}

	entries := make(map[string]*models.DataSetInfo, len(records))

	for i := range records {
		rec := records[i]
		rec.CheckTime = 0

		if rec.DataType == "" {
			rec.DataType = InferDataType(r.dataTypes, rec.Dir)
		}

		entries[rec.Key()] = &rec
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()

	recordSnapshot(context.Background(), snapshotOutcomeLoaded)

	r.logger.Info().
		Str("path", r.snapshotPath).
		Int("records", len(entries)).
		Msg("Loaded registry snapshot")

	return nil
}

// encodeSnapshot serializes the table in key order.
func (r *Registry) encodeSnapshot() ([]byte, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	buf := make([]byte, 0, len(keys)*wire.RecordSize)
	for _, key := range keys {
		buf = wire.AppendRecord(buf, r.entries[key])
	}

	return buf, len(keys)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}

	if err := tmp.Chmod(snapshotFileMode); err != nil {
		cleanup()
		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return nil
}
