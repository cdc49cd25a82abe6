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
	"fmt"
	"io"
)

// ShowHelp writes the usage message to w.
func ShowHelp(w io.Writer) {
	fmt.Fprint(w, `dmapctl: DataMapper command-line tool
Usage:
  dmapctl <command> [options]

Commands:
  register-latest   announce newly arrived data for a dataset
  register-status   set the status string of a dataset
  register-dataset  set the time extent and size of a dataset
  query             list registrations, optionally filtered or relayed
  delete            remove registrations matching hostname, dir and datatype
  wipe              remove every registration

Common options:
  -server string    DataMapper address (default "localhost:5434", $DATAMAPPER_ADDR)
  -timeout duration request timeout (default 10s)

Options for register-*:
  -hostname string  registering host (defaults to this host)
  -ip string        registering host address (defaults to the first non-loopback IPv4)
  -datatype string  dataset type (inferred by the server when empty)
  -dir string       dataset directory
  -status string    status text (register-status)
  -latest int       latest data time, Unix seconds (register-latest, default now)
  -lead int         forecast lead time in seconds (register-latest)
  -start, -end int  data extent, Unix seconds (register-dataset)
  -nfiles, -bytes   file count and total size (register-dataset)

Options for query:
  -datatype string  only this datatype
  -dir string       only this directory
  -relay string     comma-separated relay chain, queried in order
  -json             print JSON instead of a table

Options for delete:
  -hostname, -dir, -datatype  each may be "all"

Examples:
  dmapctl register-latest -dir /data/radar/20240101 -latest 1704067200
  dmapctl query -datatype radar
  dmapctl query -relay dm-east,dm-west:6000
  dmapctl delete -hostname ingest1 -dir all -datatype all
  dmapctl wipe
`)
}
