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

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stats is the body of GET /stats.
type Stats struct {
	Selections   int `json:"selections"`
	OpenSessions int `json:"open_sessions"`
	RecentRecaps int `json:"recent_recaps"`
}

// Dashboard sets up the statistics route.
func (a *API) Dashboard(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("", func(c *gin.Context) {
			recent, err := a.Recaps.List(c.Request.Context(), 100)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, Stats{
				Selections:   a.Selections.Len(),
				OpenSessions: a.Playback.Len(),
				RecentRecaps: len(recent),
			})
		})
	}
}
