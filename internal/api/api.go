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

// Package api exposes selections, recaps and player sessions over HTTP.
//
// Routes are grouped by resource the same way the server registers them:
//   - SelectionRouter: /selections, building the photo set for a recap.
//   - RecapRouter: /recaps, generating and reading recaps.
//   - SessionRouter: /sessions, driving server-side players, including a
//     websocket stream of frames.
//   - Dashboard: /stats.
package api

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/core/services"
	"github.com/jaycherian/lumi/internal/photosource"
)

// API holds the services behind the routes.
type API struct {
	Selections   *services.SelectionService
	Recaps       *services.RecapService
	Playback     *services.PlaybackService
	Library      photosource.Source       // Source behind /selections/:id/library; nil disables it.
	UploadWriter photosource.ObjectWriter // Destination of multipart uploads.
	UploadBucket string
	UploadPrefix string
	SlideBuckets []string // Buckets, besides UploadBucket, that client-supplied slides may point into.
}

// Register adds every route to r.
func (a *API) Register(r *gin.RouterGroup) {
	a.SelectionRouter(r)
	a.RecapRouter(r)
	a.SessionRouter(r)
	a.Dashboard(r)
}

type createSelectionRequest struct {
	Slides []model.Slide `json:"slides"`
}

type createRecapRequest struct {
	SelectionId string        `json:"selection_id"`
	Slides      []model.Slide `json:"slides"`
	Caption     string        `json:"caption"`
}

type commandRequest struct {
	Action services.Action `json:"action" binding:"required"`
}

// checkSlides accepts only gs:// slides in the upload bucket or one of
// SlideBuckets. Anything else could make the server read its own files or
// fetch arbitrary URLs on the client's behalf.
func (a *API) checkSlides(slides []model.Slide) error {
	for _, s := range slides {
		if !strings.HasPrefix(s.URI, cloud.GCSScheme) {
			return fmt.Errorf("%w: %q", model.ErrSlideNotAllowed, s.URI)
		}
		obj, err := cloud.ParseGCSURI(s.URI)
		if err != nil {
			return fmt.Errorf("%w: %w", model.ErrSlideNotAllowed, err)
		}
		if obj.Bucket != a.UploadBucket && !slices.Contains(a.SlideBuckets, obj.Bucket) {
			return fmt.Errorf("%w: bucket %q", model.ErrSlideNotAllowed, obj.Bucket)
		}
	}
	return nil
}

// SelectionRouter sets up the routes that build selections.
func (a *API) SelectionRouter(r *gin.RouterGroup) {
	selections := r.Group("/selections")
	{
		selections.POST("", func(c *gin.Context) {
			slides := make([]model.Slide, 0)
			switch {
			case isMultipart(c):
				staged, err := a.stageUploads(c)
				if err != nil {
					respondError(c, err)
					return
				}
				slides = staged
			case c.Request.ContentLength > 0:
				body := &createSelectionRequest{}
				if err := c.ShouldBindJSON(body); err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				if err := a.checkSlides(body.Slides); err != nil {
					respondError(c, err)
					return
				}
				slides = append(slides, body.Slides...)
			}
			c.JSON(http.StatusCreated, a.Selections.Create(slides...))
		})

		selections.GET("/:id", func(c *gin.Context) {
			sel, err := a.Selections.Get(c.Param("id"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, sel)
		})

		selections.DELETE("/:id", func(c *gin.Context) {
			if err := a.Selections.Delete(c.Param("id")); err != nil {
				respondError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		})

		selections.POST("/:id/photos", func(c *gin.Context) {
			id := c.Param("id")
			if _, err := a.Selections.Get(id); err != nil {
				respondError(c, err)
				return
			}
			slides, err := a.stageUploads(c)
			if err != nil {
				respondError(c, err)
				return
			}
			sel, err := a.Selections.Append(id, slides...)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, sel)
		})

		selections.POST("/:id/library", func(c *gin.Context) {
			if a.Library == nil {
				c.JSON(http.StatusNotImplemented, gin.H{"error": "no photo library configured"})
				return
			}
			sel, err := a.Selections.AppendFrom(c.Request.Context(), c.Param("id"), a.Library)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, sel)
		})
	}
}

// RecapRouter sets up the routes that generate and read recaps.
func (a *API) RecapRouter(r *gin.RouterGroup) {
	recaps := r.Group("/recaps")
	{
		recaps.POST("", func(c *gin.Context) {
			body := &createRecapRequest{}
			if err := c.ShouldBindJSON(body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := a.checkSlides(body.Slides); err != nil {
				respondError(c, err)
				return
			}
			var recap *model.RecapSet
			var err error
			if body.SelectionId != "" {
				recap, err = a.Recaps.Generate(c.Request.Context(), body.SelectionId, body.Caption)
			} else {
				recap, err = a.Recaps.GenerateFromSlides(c.Request.Context(), body.Slides, body.Caption)
			}
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, recap)
		})

		recaps.GET("", func(c *gin.Context) {
			limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
			if err != nil {
				limit = 20
			}
			out, err := a.Recaps.List(c.Request.Context(), limit)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		recaps.GET("/:id", func(c *gin.Context) {
			recap, err := a.Recaps.Get(c.Request.Context(), c.Param("id"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, recap)
		})

		recaps.POST("/:id/sessions", func(c *gin.Context) {
			sess, err := a.Playback.Open(c.Request.Context(), c.Param("id"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{"session_id": sess.Id, "frame": sess.Player.Snapshot()})
		})
	}
}

// SessionRouter sets up the routes that drive a player session.
func (a *API) SessionRouter(r *gin.RouterGroup) {
	sessions := r.Group("/sessions")
	{
		sessions.GET("/:id", func(c *gin.Context) {
			sess, err := a.Playback.Get(c.Param("id"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, sess.Player.Snapshot())
		})

		sessions.POST("/:id/commands", func(c *gin.Context) {
			body := &commandRequest{}
			if err := c.ShouldBindJSON(body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			frame, err := a.Playback.Command(c.Request.Context(), c.Param("id"), body.Action)
			if err != nil {
				c.JSON(StatusFor(err), gin.H{"error": err.Error(), "frame": frame})
				return
			}
			c.JSON(http.StatusOK, frame)
		})

		sessions.POST("/:id/share", func(c *gin.Context) {
			link, err := a.Playback.Share(c.Request.Context(), c.Param("id"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": link})
		})

		sessions.GET("/:id/stream", a.stream)

		sessions.DELETE("/:id", func(c *gin.Context) {
			if err := a.Playback.Close(c.Request.Context(), c.Param("id")); err != nil {
				respondError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		})
	}
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// stageUploads writes the request's "files" to the upload bucket and
// returns them as slides in upload order.
func (a *API) stageUploads(c *gin.Context) ([]model.Slide, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrEmptySelection, err)
	}
	files := form.File["files"]
	if len(files) == 0 {
		return nil, model.ErrEmptySelection
	}
	source := photosource.NewUploadSource(a.UploadWriter, a.UploadBucket, a.UploadPrefix, files)
	return source.Pick(c.Request.Context())
}
