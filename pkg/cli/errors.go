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


package cli

import (
	"errors"
	"fmt"
)

// ErrUsage marks errors caused by how the tool was invoked.
var ErrUsage = errors.New("invalid usage")

var (
	errServerRequired     = errors.New("-server is required")
	errDirRequired        = errors.New("-dir is required")
	errHostnameRequired   = errors.New("-hostname is required (and os.Hostname failed)")
	errDeleteKeyRequired  = fmt.Errorf("%w: delete requires -hostname, -dir and -datatype (use \"all\" as a wildcard)", ErrUsage)
	errUnknownSubcommand  = fmt.Errorf("%w: unknown subcommand", ErrUsage)
	errSubcommandRequired = fmt.Errorf("%w: a subcommand is required", ErrUsage)
)
