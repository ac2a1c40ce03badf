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

package commands

import (
	"fmt"

	"github.com/jaycherian/lumi/internal/core/cor"
	"github.com/jaycherian/lumi/internal/core/model"
)

// SelectionValidator rejects requests that cannot produce a recap: an empty
// selection, or one larger than maxSlides when maxSlides is positive.
type SelectionValidator struct {
	cor.BaseCommand
	maxSlides int
}

func NewSelectionValidator(name string, maxSlides int) *SelectionValidator {
	return &SelectionValidator{BaseCommand: *cor.NewBaseCommand(name), maxSlides: maxSlides}
}

func (c *SelectionValidator) Execute(context cor.Context) {
	req, ok := context.Get(c.GetInputParam()).(*model.RecapRequest)
	if !ok {
		c.RecordError(context, fmt.Errorf("expected *model.RecapRequest, got %T", context.Get(c.GetInputParam())))
		return
	}

	if len(req.Slides) == 0 {
		c.RecordError(context, model.ErrEmptySelection)
		return
	}
	if c.maxSlides > 0 && len(req.Slides) > c.maxSlides {
		c.RecordError(context, fmt.Errorf("%w: %d photos, at most %d", model.ErrSelectionTooLarge, len(req.Slides), c.maxSlides))
		return
	}
	for i, s := range req.Slides {
		if s.URI == "" {
			c.RecordError(context, fmt.Errorf("photo %d has no location", i))
			return
		}
	}

	c.RecordSuccess(context)
	context.Add(ParamRecapRequest, req)
	context.Add(c.GetOutputParam(), req)
}
