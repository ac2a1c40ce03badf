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

package player_test

import (
	"math"
	"testing"

	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/player"
	"github.com/zeebo/assert"
)

func TestSceneType(t *testing.T) {
	cases := []struct {
		index, count int
		want         string
	}{
		{0, 1, player.SceneOpening},
		{0, 2, player.SceneOpening},
		{1, 2, player.SceneClosing},
		{1, 3, player.SceneMain},
		{2, 3, player.SceneClosing},
		{2, 5, player.SceneMain},
		{1, 5, player.SceneDefault},
		{3, 5, player.SceneDefault},
		{4, 5, player.SceneClosing},
		{3, 6, player.SceneMain},
		{2, 6, player.SceneDefault},
	}
	for _, c := range cases {
		assert.Equal(t, player.SceneType(c.index, c.count), c.want)
	}
}

func TestSceneLabelAndProgress(t *testing.T) {
	assert.Equal(t, "Scene 1 of 3", player.SceneLabel(0, 3))
	assert.Equal(t, "Scene 3 of 3", player.SceneLabel(2, 3))
	assert.That(t, math.Abs(player.Progress(0, 3)-1.0/3.0) < 1e-9)
	assert.Equal(t, 1.0, player.Progress(2, 3))
	assert.Equal(t, 0.0, player.Progress(0, 0))
}

func TestCards(t *testing.T) {
	recap := recapOf(2)
	intro := player.IntroCard(recap)
	assert.Equal(t, player.IntroLabel, intro.Label)
	assert.Equal(t, player.DefaultIntroSubtitle, intro.Subtitle)

	recap.Caption = "Our weekend"
	assert.Equal(t, "Our weekend", player.IntroCard(recap).Subtitle)

	assert.Equal(t, "Your mini-movie just finished. Watch it again or share your favorite frame.", player.OutroCard(recap).Subtitle)
	recap.Title = "Windy City"
	assert.Equal(t, "“Windy City” just wrapped. Watch it again or share your favorite frame.", player.OutroCard(recap).Subtitle)
	assert.Equal(t, player.OutroTitle, player.OutroCard(recap).Title)
}

func TestFrameCarriesRecapPresentation(t *testing.T) {
	recap := recapOf(3)
	recap.VibeKey = "hype"
	recap.VibeLabel = "Big energy"
	recap.Emotion = "joyful"
	recap.Highlights = []int{1}
	recap.Notice = model.Notice{Code: model.NoticeAnalysisFailed, Message: "fallback"}

	p, clock, rec := newPlayerFor(recap)
	intro := p.Snapshot()
	assert.Equal(t, player.DefaultTitle, intro.Title)
	assert.Equal(t, player.DefaultDescription, intro.Description)
	assert.Equal(t, "Big energy", intro.Vibe)
	assert.Equal(t, model.AccentOrange, intro.Accent)
	assert.Equal(t, "Joyful", intro.Emotion)
	assert.NotNil(t, intro.Intro)
	assert.NotNil(t, intro.Notice)
	assert.Equal(t, model.NoticeAnalysisFailed, intro.Notice.Code)

	assert.NoError(t, p.Start())
	first := rec.last()
	assert.False(t, first.Highlight)
	assert.Equal(t, player.SceneOpening, first.SceneType)
	assert.Nil(t, first.Intro)
	assert.Equal(t, "gs://b/0.jpg", first.Slide.URI)

	clock.Advance(interval)
	second := rec.last()
	assert.True(t, second.Highlight)
	assert.Equal(t, player.SceneMain, second.SceneType)
	assert.Equal(t, "Scene 2 of 3", second.SceneLabel)
}

func TestPlayerDoesNotMutateRecap(t *testing.T) {
	recap := recapOf(3)
	before := append([]model.Slide(nil), recap.Slides...)
	p, clock, _ := newPlayerFor(recap)
	assert.NoError(t, p.Start())
	clock.Advance(5 * interval)
	assert.NoError(t, p.Replay())
	assert.NoError(t, p.Next())
	assert.Equal(t, before, recap.Slides)
	assert.Equal(t, len(recap.Highlights), 0)
}

func newPlayerFor(recap *model.RecapSet) (*player.Player, *fakeClock, *recorder) {
	clock := &fakeClock{}
	rec := &recorder{}
	p := player.New(recap, player.WithClock(clock), player.WithInterval(interval), player.WithListener(rec.listen))
	return p, clock, rec
}
