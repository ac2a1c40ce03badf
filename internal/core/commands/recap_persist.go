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
	goctx "context"
	"fmt"
	"log/slog"

	"github.com/jaycherian/lumi/internal/core/cor"
	"github.com/jaycherian/lumi/internal/core/model"
)

// RecapWriter stores a finished recap.
type RecapWriter interface {
	Save(ctx goctx.Context, recap *model.RecapSet) error
}

// RecapPersist writes the assembled recap to the configured store.
type RecapPersist struct {
	cor.BaseCommand
	store RecapWriter
}

func NewRecapPersist(name string, store RecapWriter) *RecapPersist {
	out := &RecapPersist{BaseCommand: *cor.NewBaseCommand(name), store: store}
	out.InputParamName = ParamRecap
	out.OutputParamName = ParamRecap
	return out
}

func (c *RecapPersist) Execute(context cor.Context) {
	recap := context.Get(c.GetInputParam()).(*model.RecapSet)

	if err := c.store.Save(context.GetContext(), recap); err != nil {
		c.RecordError(context, fmt.Errorf("failed to persist recap %s: %w", recap.Id, err))
		return
	}

	slog.InfoContext(context.GetContext(), "recap persisted", "recap_id", recap.Id, "slides", recap.Len(), "notice", recap.Notice.Code)
	c.RecordSuccess(context)
	context.Add(cor.CtxOut, recap)
}
