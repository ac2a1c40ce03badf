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

// This file defines the command that turns the model's JSON answer into a
// *model.AnalysisResult the rest of the workflow can trust.
//
// Logic Flow:
//  1. The JSON string is parsed into model.RecapAnalysis.
//  2. Free text is stripped of any markup.
//  3. The returned order, positions into the selection, is applied to the
//     slides. Invalid and repeated positions are dropped and slides the model
//     left out are appended in selection order. An empty order, or one with
//     no usable position, leaves OrderedSlides nil.
//  4. Highlights outside the slide range are dropped.
//  5. The vibe key is normalized to a known key or "default".
package commands

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/jaycherian/lumi/internal/core/cor"
	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/microcosm-cc/bluemonday"
)

// RecapJsonToStruct parses and cleans the analysis answer.
type RecapJsonToStruct struct {
	cor.BaseCommand
	policy *bluemonday.Policy
}

func NewRecapJsonToStruct(name string) *RecapJsonToStruct {
	out := &RecapJsonToStruct{BaseCommand: *cor.NewBaseCommand(name), policy: bluemonday.StrictPolicy()}
	out.InputParamName = ParamAnalysisJSON
	out.OutputParamName = ParamAnalysis
	return out
}

// IsExecutable also requires the original request.
func (c *RecapJsonToStruct) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) && context.Get(ParamRecapRequest) != nil
}

func (c *RecapJsonToStruct) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)
	req := context.Get(ParamRecapRequest).(*model.RecapRequest)

	doc := &model.RecapAnalysis{}
	if err := json.Unmarshal([]byte(in), doc); err != nil {
		c.RecordError(context, fmt.Errorf("%w: failed to unmarshal recap analysis: %w", model.ErrAnalysisFailure, err))
		return
	}

	resolved := ResolveOrder(len(req.Slides), doc.Order)
	highlights := FilterHighlights(doc.Highlights, len(req.Slides))
	if resolved != nil {
		highlights = MapHighlights(doc.Highlights, doc.Order, resolved)
	}

	out := &model.AnalysisResult{
		OrderedSlides: pickSlides(req.Slides, resolved),
		Title:         c.clean(doc.Title),
		VibeKey:       model.NormalizeVibeKey(doc.VibeKey),
		VibeLabel:     c.clean(doc.VibeLabel),
		Emotion:       strings.ToLower(c.clean(doc.Emotion)),
		Description:   c.clean(doc.Description),
		Highlights:    highlights,
	}
	if out.Emotion == "" {
		out.Emotion = model.DefaultEmotion
	}

	c.RecordSuccess(context)
	context.Add(c.GetOutputParam(), out)
	context.Add(cor.CtxOut, out)
}

func (c *RecapJsonToStruct) clean(in string) string {
	return strings.TrimSpace(html.UnescapeString(c.policy.Sanitize(in)))
}

// ApplyOrder arranges slides by order, a list of positions into slides.
// It returns nil when order contains no valid position.
func ApplyOrder(slides []model.Slide, order []int) []model.Slide {
	return pickSlides(slides, ResolveOrder(len(slides), order))
}

// ResolveOrder turns order into the final arrangement of the positions
// [0, count): invalid and repeated entries are dropped and positions the
// order left out follow in their original order. It returns nil when order
// contains no valid position.
func ResolveOrder(count int, order []int) []int {
	seen := make(map[int]bool, count)
	out := make([]int, 0, count)
	for _, idx := range order {
		if idx < 0 || idx >= count || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	if len(out) == 0 {
		return nil
	}
	for i := 0; i < count; i++ {
		if !seen[i] {
			out = append(out, i)
		}
	}
	return out
}

// MapHighlights converts highlights, given as positions in the model's
// order, into positions in resolved. Highlights whose order entry is
// missing or invalid are dropped.
func MapHighlights(highlights []int, order []int, resolved []int) []int {
	position := make(map[int]int, len(resolved))
	for pos, idx := range resolved {
		position[idx] = pos
	}
	mapped := make([]int, 0, len(highlights))
	for _, h := range highlights {
		if h < 0 || h >= len(order) {
			continue
		}
		if pos, ok := position[order[h]]; ok {
			mapped = append(mapped, pos)
		}
	}
	return FilterHighlights(mapped, len(resolved))
}

func pickSlides(slides []model.Slide, resolved []int) []model.Slide {
	if resolved == nil {
		return nil
	}
	out := make([]model.Slide, 0, len(resolved))
	for _, idx := range resolved {
		out = append(out, slides[idx])
	}
	return out
}

// FilterHighlights keeps the first occurrence of every position in [0, count).
func FilterHighlights(highlights []int, count int) []int {
	seen := make(map[int]bool, len(highlights))
	out := make([]int, 0, len(highlights))
	for _, h := range highlights {
		if h < 0 || h >= count || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
