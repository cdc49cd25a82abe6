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
	"strings"

	"github.com/carverauto/datamapper/pkg/models"
)

// InferDataType picks the first name in dataTypes that appears as a path
// component of dir, either as "/name/" anywhere or as a leading "name/".
// It returns models.UnknownDataType when nothing matches.
func InferDataType(dataTypes []string, dir string) string {
	for _, name := range dataTypes {
		if name == "" {
			continue
		}

		if strings.Contains(dir, "/"+name+"/") || strings.HasPrefix(dir, name+"/") {
			return name
		}
	}

	return models.UnknownDataType
}

// resolveDataType keeps an explicit datatype and infers one otherwise.
func (r *Registry) resolveDataType(dataType, dir string) string {
	if dataType != "" && dataType != models.UnknownDataType {
		return dataType
	}

	return InferDataType(r.dataTypes, dir)
}
