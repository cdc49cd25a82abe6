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
	"github.com/carverauto/datamapper/pkg/logger"
	"github.com/carverauto/datamapper/pkg/models"
	"github.com/carverauto/datamapper/pkg/natsutil"
)

// Config holds the configuration for the DataMapper service.
type Config struct {
	ListenAddr   string          `json:"listen_addr"`
	MaxClients   int             `json:"max_clients"` // -1 means unlimited
	NoThreads    bool            `json:"no_threads"`  // handle connections on the accept goroutine
	ConnTimeout  models.Duration `json:"conn_timeout"`
	IdleInterval models.Duration `json:"idle_interval"`
	RelayTimeout models.Duration `json:"relay_timeout"`
	DefaultPort  int             `json:"default_port"`

	// DataTypes are tried in order when a registration arrives without a datatype.
	DataTypes []string `json:"data_types"`

	Purge       PurgeConfig       `json:"purge"`
	Persistence PersistenceConfig `json:"persistence"`
	Events      natsutil.Config   `json:"events"`

	HealthListenAddr string             `json:"health_listen_addr,omitempty"`
	Logging          *logger.Config     `json:"logging,omitempty"`
	Metrics          *logger.OTelConfig `json:"metrics,omitempty"`
}

// PurgeConfig controls eviction of registrations that stopped refreshing.
type PurgeConfig struct {
	Enabled  bool            `json:"enabled"`
	MaxAge   models.Duration `json:"max_age"`
	Interval models.Duration `json:"interval"`
}

// PersistenceConfig controls registry snapshots.
type PersistenceConfig struct {
	Enabled  bool            `json:"enabled"`
	Path     string          `json:"path"`
	Interval models.Duration `json:"interval"`
}
