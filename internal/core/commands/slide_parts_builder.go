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

// This file defines the command that turns the selected slides into genai
// parts for the analysis request.
//
// Logic Flow:
//  1. The *model.RecapRequest is read from the context.
//  2. A worker pool loads every slide concurrently. Cloud Storage objects are
//     referenced by URI; local files are scaled down and sent inline.
//  3. The parts are reassembled in selection order, each one preceded by a
//     "Photo <index>" label so the model can answer with positions.
package commands

import (
	goctx "context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/cor"
	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/imageutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

// SlidePartLoader produces the request part for one slide.
type SlidePartLoader func(ctx goctx.Context, slide model.Slide) (*genai.Part, error)

// LoadSlidePart references gs:// and storage HTTPS objects by URI and inlines
// local files after scaling them down.
func LoadSlidePart(_ goctx.Context, slide model.Slide) (*genai.Part, error) {
	if cloud.IsGCSURI(slide.URI) {
		obj, err := cloud.ParseGCSURI(slide.URI)
		if err != nil {
			return nil, err
		}
		return cloud.NewFileData(obj.URI(), obj.MIMEType), nil
	}
	if strings.HasPrefix(slide.URI, "https://") || strings.HasPrefix(slide.URI, "http://") {
		return cloud.NewFileData(slide.URI, cloud.ImageMIMEType(slide.URI)), nil
	}

	data, mimeType, err := imageutil.PrepareFile(strings.TrimPrefix(slide.URI, "file://"))
	if err != nil {
		return nil, err
	}
	return cloud.NewInlineData(data, mimeType), nil
}

// SlidePartsBuilder loads the parts of every slide with a pool of workers.
type SlidePartsBuilder struct {
	cor.BaseCommand
	numberOfWorkers int
	load            SlidePartLoader
}

// NewSlidePartsBuilder creates the command. A nil loader means LoadSlidePart.
func NewSlidePartsBuilder(name string, numberOfWorkers int, load SlidePartLoader) *SlidePartsBuilder {
	if numberOfWorkers <= 0 {
		numberOfWorkers = 1
	}
	if load == nil {
		load = LoadSlidePart
	}
	out := &SlidePartsBuilder{BaseCommand: *cor.NewBaseCommand(name), numberOfWorkers: numberOfWorkers, load: load}
	out.InputParamName = ParamRecapRequest
	return out
}

type slideJob struct {
	index int
	slide model.Slide
}

type slideResult struct {
	index int
	part  *genai.Part
	err   error
}

func (c *SlidePartsBuilder) Execute(context cor.Context) {
	req := context.Get(c.GetInputParam()).(*model.RecapRequest)
	ctx := context.GetContext()

	jobs := make(chan slideJob, len(req.Slides))
	results := make(chan slideResult, len(req.Slides))

	var wg sync.WaitGroup
	for w := 0; w < min(c.numberOfWorkers, len(req.Slides)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- c.loadOne(ctx, job)
			}
		}()
	}
	for i, s := range req.Slides {
		jobs <- slideJob{index: i, slide: s}
	}
	close(jobs)
	wg.Wait()
	close(results)

	loaded := make([]*genai.Part, len(req.Slides))
	var errs []error
	for r := range results {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("photo %d: %w", r.index, r.err))
			continue
		}
		loaded[r.index] = r.part
	}
	if len(errs) > 0 {
		c.RecordError(context, errors.Join(errs...))
		return
	}

	parts := make([]*genai.Part, 0, 2*len(loaded))
	for i, p := range loaded {
		parts = append(parts, cloud.NewTextPart(fmt.Sprintf("Photo %d:", i)), p)
	}

	c.RecordSuccess(context)
	context.Add(ParamSlideParts, parts)
	context.Add(c.GetOutputParam(), parts)
}

func (c *SlidePartsBuilder) loadOne(ctx goctx.Context, job slideJob) slideResult {
	spanCtx, span := c.Tracer.Start(ctx, fmt.Sprintf("%s_slide_%d", c.GetName(), job.index))
	defer span.End()
	span.SetAttributes(attribute.Int("index", job.index))

	part, err := c.load(spanCtx, job.slide)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return slideResult{index: job.index, err: err}
	}
	span.SetStatus(codes.Ok, "loaded")
	return slideResult{index: job.index, part: part}
}
