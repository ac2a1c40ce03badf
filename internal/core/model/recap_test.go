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

// Package model_test contains unit tests for the recap data model: the
// constructor defaults, the vibe catalogue and the small display helpers.
package model_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRecapSet verifies the id, timestamp, neutral defaults and that the
// recap owns its own copy of the slides.
func TestNewRecapSet(t *testing.T) {
	slides := model.NewSlides("gs://b/1.jpg", "gs://b/2.jpg")
	recap := model.NewRecapSet(slides, "finals week")

	_, err := uuid.Parse(recap.Id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), recap.CreateDate, time.Second)
	assert.Equal(t, "finals week", recap.Caption)
	assert.Equal(t, model.DefaultVibeKey, recap.VibeKey)
	assert.Equal(t, model.DefaultEmotion, recap.Emotion)
	assert.Empty(t, recap.Highlights)
	assert.NotNil(t, recap.Highlights)
	assert.Equal(t, model.NoticeNone, recap.Notice.Code)

	slides[0].URI = "mutated"
	assert.Equal(t, "gs://b/1.jpg", recap.Slides[0].URI)
}

// TestAccentForIsTotal checks every catalogue key and that anything else,
// including the empty key, falls back to purple.
func TestAccentForIsTotal(t *testing.T) {
	expected := map[string]model.Accent{
		"hype":    model.AccentOrange,
		"cozy":    model.AccentAmber,
		"travel":  model.AccentGreen,
		"friends": model.AccentPink,
		"chill":   model.AccentSkyBlue,
		"default": model.AccentPurple,
		"":        model.AccentPurple,
		"HYPE":    model.AccentPurple,
		"spooky":  model.AccentPurple,
	}
	for key, accent := range expected {
		assert.Equal(t, accent, model.AccentFor(key), "key %q", key)
	}
	for _, key := range model.KnownVibeKeys() {
		assert.NotEqual(t, model.AccentPurple, model.AccentFor(key))
	}
}

func TestNormalizeVibeKey(t *testing.T) {
	assert.Equal(t, "hype", model.NormalizeVibeKey(" Hype "))
	assert.Equal(t, "chill", model.NormalizeVibeKey("chill"))
	assert.Equal(t, model.DefaultVibeKey, model.NormalizeVibeKey("party"))
	assert.Equal(t, model.DefaultVibeKey, model.NormalizeVibeKey(""))
}

func TestDisplayHelpers(t *testing.T) {
	recap := model.NewRecapSet(model.NewSlides("a", "b", "c"), "")
	assert.Equal(t, model.DefaultVibeKey, recap.DisplayVibe())
	assert.Equal(t, "", recap.PrettyEmotion())

	recap.VibeLabel = "Cozy nights"
	recap.Emotion = "nostalgic"
	recap.Highlights = []int{2}
	assert.Equal(t, "Cozy nights", recap.DisplayVibe())
	assert.Equal(t, "Nostalgic", recap.PrettyEmotion())
	assert.True(t, recap.IsHighlight(2))
	assert.False(t, recap.IsHighlight(0))
}

func TestApplyDefaults(t *testing.T) {
	recap := &model.RecapSet{}
	recap.ApplyDefaults()
	assert.Equal(t, model.DefaultVibeKey, recap.VibeKey)
	assert.Equal(t, model.DefaultEmotion, recap.Emotion)
	assert.NotNil(t, recap.Highlights)
	assert.NotNil(t, recap.Slides)
	assert.Equal(t, 0, recap.Len())
	assert.Equal(t, model.NoticeNone, recap.Notice.Code)
}

func TestNoticeIsFallback(t *testing.T) {
	assert.False(t, model.Notice{Code: model.NoticeNone}.IsFallback())
	assert.True(t, model.Notice{Code: model.NoticeAnalysisFailed}.IsFallback())
	assert.True(t, model.Notice{Code: model.NoticeOrderingUnavailable}.IsFallback())
}
