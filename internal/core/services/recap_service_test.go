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

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassesSelectionAndCaption(t *testing.T) {
	runner := &echoRunner{}
	selections := services.NewSelectionService()
	svc := &services.RecapService{Selections: selections, Runner: runner, Store: newStore(t)}

	sel := selections.Create(slides(3)...)
	recap, err := svc.Generate(context.Background(), sel.Id, "Road trip")
	require.NoError(t, err)
	assert.Equal(t, "Road trip", recap.Caption)
	require.Len(t, runner.requests, 1)
	assert.Equal(t, sel.Id, runner.requests[0].SelectionId)
	assert.Equal(t, sel.Slides, runner.requests[0].Slides)

	_, err = svc.Generate(context.Background(), sel.Id, "again")
	assert.NoError(t, err)
}

func TestGenerateRejectsSecondSubmissionWhileInFlight(t *testing.T) {
	runner := &blockingRunner{started: make(chan *model.RecapRequest, 1), release: make(chan struct{})}
	selections := services.NewSelectionService()
	svc := &services.RecapService{Selections: selections, Runner: runner, Store: newStore(t)}
	sel := selections.Create(slides(2)...)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(context.Background(), sel.Id, "")
		done <- err
	}()

	select {
	case <-runner.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first generation never started")
	}

	_, err := svc.Generate(context.Background(), sel.Id, "")
	assert.ErrorIs(t, err, model.ErrAnalysisInFlight)

	close(runner.release)
	require.NoError(t, <-done)

	_, err = svc.Generate(context.Background(), sel.Id, "")
	assert.NoError(t, err)
}

func TestGenerateUnknownSelection(t *testing.T) {
	svc := &services.RecapService{Selections: services.NewSelectionService(), Runner: &echoRunner{}, Store: newStore(t)}
	_, err := svc.Generate(context.Background(), "missing", "")
	assert.ErrorIs(t, err, model.ErrSelectionNotFound)
}

func TestGenerateFromSlidesAndRead(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := &services.RecapService{Selections: services.NewSelectionService(), Runner: &echoRunner{}, Store: store}

	_, err := svc.GenerateFromSlides(ctx, nil, "")
	assert.ErrorIs(t, err, model.ErrEmptySelection)

	recap := model.NewRecapSet(slides(2), "saved")
	require.NoError(t, store.Save(ctx, recap))
	got, err := svc.Get(ctx, recap.Id)
	require.NoError(t, err)
	assert.Equal(t, "saved", got.Caption)

	list, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
