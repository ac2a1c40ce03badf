// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package services holds the application services behind the API and the
// CLI: recap persistence, selections, sharing and player sessions. This file
// collects the BigQuery statements used by BigQueryRecapStore. Table names
// are substituted with fmt.Sprintf; values are always bound as parameters.
package services

const (
	// QryFindRecapById loads one recap.
	QryFindRecapById = "SELECT * FROM `%s` WHERE id = @id LIMIT 1"

	// QryListRecaps loads the newest recaps first.
	QryListRecaps = "SELECT * FROM `%s` ORDER BY create_date DESC LIMIT @limit"
)
