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

import "fmt"

// Op is a request operation code.
type Op uint16

const (
	OpRegisterLatest  Op = 1
	OpRegisterStatus  Op = 2
	OpRegisterDataSet Op = 3
	OpRegisterFull    Op = 4
	OpDelete          Op = 5
	OpQuerySelected   Op = 6
	OpQueryAll        Op = 7
)

var opNames = map[Op]string{
	OpRegisterLatest:  "register_latest",
	OpRegisterStatus:  "register_status",
	OpRegisterDataSet: "register_dataset",
	OpRegisterFull:    "register_full",
	OpDelete:          "delete",
	OpQuerySelected:   "query_selected",
	OpQueryAll:        "query_all",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}

	return fmt.Sprintf("op(%d)", uint16(o))
}

// Valid reports whether o is a known operation.
func (o Op) Valid() bool {
	_, ok := opNames[o]
	return ok
}

// IsQuery reports whether o reads the registry without mutating it.
func (o Op) IsQuery() bool {
	return o == OpQuerySelected || o == OpQueryAll
}
