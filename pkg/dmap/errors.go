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
	"errors"
)

var (
	// ErrRequestFailed is returned by the client when the server answers with a failure status.
	ErrRequestFailed = errors.New("request failed")
	// ErrRelayFailed marks a failure reply produced while forwarding a query.
	ErrRelayFailed = errors.New("relay failed")

	errTooManyClients        = errors.New("service denied: too many clients")
	errTooManyAcceptFailures = errors.New("too many consecutive accept failures")
	errServerAlreadyStarted  = errors.New("server already started")
	errInvalidMaxClients     = errors.New("max_clients must be -1 or positive")
	errInvalidDefaultPort    = errors.New("default_port must be between 1 and 65535")
	errNegativeDuration      = errors.New("durations must not be negative")
	errSnapshotPathRequired  = errors.New("persistence.path is required when persistence is enabled")
	errEmptyDataType         = errors.New("data_types entries must not be empty")
	errDuplicateDataType     = errors.New("data_types entries must be unique")
	errUnknownOp             = errors.New("unknown operation")
	errMissingFilter         = errors.New("operation requires a filter record")
	errEmptyRegistration     = errors.New("registration carries no records")
	errUnexpectedReplyOp     = errors.New("reply operation does not match request")
)
