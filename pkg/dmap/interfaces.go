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


//go:generate mockgen -destination=mock_dmap.go -package=dmap github.com/carverauto/datamapper/pkg/dmap Store,Publisher

// Package dmap serves the DataMapper registration protocol over TCP.
package dmap

import (
	"context"
	"time"

	"github.com/carverauto/datamapper/pkg/models"
)

// Store is the registration table the handler and the maintenance hooks operate on.
type Store interface {
	RegisterLatest(info *models.DataSetInfo)
	RegisterStatus(info *models.DataSetInfo)
	RegisterDataSet(info *models.DataSetInfo)
	// RegisterFull replaces each record wholesale.
	RegisterFull(infos []models.DataSetInfo)
	// Delete removes every record matching filter and returns how many were removed.
	Delete(filter *models.DataSetInfo) int
	QuerySelected(dataType, dir string) []models.DataSetInfo
	QueryAll() []models.DataSetInfo
	Purge(maxAge time.Duration) int
	SaveSnapshot() error
	LoadSnapshot() error
}

// Publisher fans out accepted mutations.
type Publisher interface {
	PublishRegistration(ctx context.Context, op string, records []models.DataSetInfo, remoteAddr string) error
}
