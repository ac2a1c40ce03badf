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
	"encoding/json"
	"fmt"

	"github.com/jaycherian/lumi/internal/core/cor"
	"github.com/jaycherian/lumi/internal/core/model"
)

// RecapRequestReader parses a JSON recap request, as published on the recap
// request topic, into a *model.RecapRequest.
type RecapRequestReader struct {
	cor.BaseCommand
}

func NewRecapRequestReader(name string) *RecapRequestReader {
	return &RecapRequestReader{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *RecapRequestReader) Execute(context cor.Context) {
	in, ok := context.Get(c.GetInputParam()).(string)
	if !ok {
		c.RecordError(context, fmt.Errorf("expected a JSON string, got %T", context.Get(c.GetInputParam())))
		return
	}

	out := &model.RecapRequest{}
	if err := json.Unmarshal([]byte(in), out); err != nil {
		c.RecordError(context, fmt.Errorf("failed to unmarshal recap request: %w", err))
		return
	}

	c.RecordSuccess(context)
	context.Add(ParamRecapRequest, out)
	context.Add(c.GetOutputParam(), out)
}
