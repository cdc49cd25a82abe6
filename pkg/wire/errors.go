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

package wire

import "errors"

var (
	ErrMalformed          = errors.New("malformed message")
	ErrBadMagic           = errors.New("bad message magic")
	ErrUnsupportedVersion = errors.New("unsupported protocol version")
	ErrFrameTooLarge      = errors.New("frame exceeds maximum size")
	ErrRecordVersion      = errors.New("unsupported record layout version")
	ErrRecordSize         = errors.New("record buffer has wrong size")
	ErrTooManyRelayHosts  = errors.New("too many relay hosts")
	ErrRelayHostTooLong   = errors.New("relay host name too long")
	ErrTooManyRecords     = errors.New("too many records in message")
)
