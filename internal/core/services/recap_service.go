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

package services

import (
	"context"
	"log/slog"

	"github.com/jaycherian/lumi/internal/core/model"
)

// RecapRunner produces a stored recap from a request; workflow.RecapWorkflow
// is the production implementation.
type RecapRunner interface {
	Run(ctx context.Context, req *model.RecapRequest) (*model.RecapSet, error)
}

// RecapService generates recaps from selections and reads them back.
type RecapService struct {
	Selections *SelectionService
	Runner     RecapRunner
	Store      RecapStore
}

// Generate runs the recap workflow over the selection's current slides.
// While it runs, a second call for the same selection fails with
// model.ErrAnalysisInFlight.
func (s *RecapService) Generate(ctx context.Context, selectionId string, caption string) (*model.RecapSet, error) {
	sel, release, err := s.Selections.BeginAnalysis(selectionId)
	if err != nil {
		return nil, err
	}
	defer release()

	slog.InfoContext(ctx, "generating recap", "selection_id", selectionId, "slides", len(sel.Slides))
	return s.Runner.Run(ctx, &model.RecapRequest{
		SelectionId: selectionId,
		Slides:      sel.Slides,
		Caption:     caption,
	})
}

// GenerateFromSlides runs the recap workflow without a stored selection.
func (s *RecapService) GenerateFromSlides(ctx context.Context, slides []model.Slide, caption string) (*model.RecapSet, error) {
	return s.Runner.Run(ctx, &model.RecapRequest{Slides: slides, Caption: caption})
}

func (s *RecapService) Get(ctx context.Context, id string) (*model.RecapSet, error) {
	return s.Store.Get(ctx, id)
}

// List returns up to limit recaps, newest first.
func (s *RecapService) List(ctx context.Context, limit int) ([]*model.RecapSet, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.Store.List(ctx, limit)
}
