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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/core/services"
	"github.com/jaycherian/lumi/internal/imageutil"
	"github.com/jaycherian/lumi/internal/player"
)

var statusByError = []struct {
	err    error
	status int
}{
	{model.ErrEmptySelection, http.StatusBadRequest},
	{model.ErrSelectionTooLarge, http.StatusBadRequest},
	{model.ErrSlideNotAllowed, http.StatusBadRequest},
	{imageutil.ErrNotImage, http.StatusBadRequest},
	{services.ErrUnknownAction, http.StatusBadRequest},
	{model.ErrPermissionDenied, http.StatusForbidden},
	{model.ErrRecapNotFound, http.StatusNotFound},
	{model.ErrSelectionNotFound, http.StatusNotFound},
	{model.ErrSessionNotFound, http.StatusNotFound},
	{model.ErrAnalysisInFlight, http.StatusConflict},
	{player.ErrInvalidTransition, http.StatusConflict},
	{player.ErrClosed, http.StatusConflict},
	{model.ErrEmptyRecap, http.StatusConflict},
	{model.ErrSessionLimit, http.StatusTooManyRequests},
	{model.ErrShareFailure, http.StatusBadGateway},
	{model.ErrAnalysisFailure, http.StatusBadGateway},
}

// StatusFor maps an error to the HTTP status returned for it.
func StatusFor(err error) int {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": ...} with the mapped status. Server-side
// failures are logged; client errors are not.
func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
