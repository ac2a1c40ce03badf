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

package player

import (
	"fmt"

	"github.com/jaycherian/lumi/internal/core/model"
)

// Phase is the player's position in the intro, playback, outro sequence.
type Phase string

const (
	PhaseEmpty   Phase = "empty"
	PhaseIntro   Phase = "intro"
	PhasePlaying Phase = "playing"
	PhasePaused  Phase = "paused"
	PhaseOutro   Phase = "outro"
)

// Display text shown around the slides.
const (
	DefaultTitle       = "Your Life, As a Movie"
	DefaultDescription = "Turn your fun life moments into a mini-movie."
	EmptyMessage       = "No slides to show. Go back and add photos."

	IntroLabel           = "Lumi · Mini-Movie"
	IntroTitle           = "We cut your moments into a short movie."
	DefaultIntroSubtitle = "We ordered your best scenes and built a quick recap you can watch like a movie."
	IntroHint            = "Auto-advances through your scenes. Tap to move between moments."

	OutroLabel = "Credits"
	OutroTitle = "Directed by you. Cut by Lumi."
	OutroHint  = "Watch it again or share your favorite frame."

	SceneOpening = "Opening scene"
	SceneClosing = "Closing scene"
	SceneMain    = "Main energy"
	SceneDefault = "Scene"
)

// Card is a full-screen overlay shown before or after the slides.
type Card struct {
	Label    string `json:"label"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Hint     string `json:"hint,omitempty"`
}

// Frame is everything needed to render the player at one instant.
type Frame struct {
	RecapId     string        `json:"recap_id"`
	Phase       Phase         `json:"phase"`
	Playing     bool          `json:"playing"`
	Slide       *model.Slide  `json:"slide,omitempty"`
	Index       int           `json:"index"`
	Count       int           `json:"count"`
	Progress    float64       `json:"progress"`
	Highlight   bool          `json:"highlight"`
	SceneType   string        `json:"scene_type,omitempty"`
	SceneLabel  string        `json:"scene_label,omitempty"`
	Title       string        `json:"title"`
	Vibe        string        `json:"vibe"`
	Accent      model.Accent  `json:"accent"`
	Emotion     string        `json:"emotion,omitempty"`
	Description string        `json:"description"`
	Button      string        `json:"button,omitempty"`
	Intro       *Card         `json:"intro,omitempty"`
	Outro       *Card         `json:"outro,omitempty"`
	Notice      *model.Notice `json:"notice,omitempty"`
	Message     string        `json:"message,omitempty"`
}

// SceneType names the role of position index in a recap of count slides.
// The checks run in order, so a one-slide recap is an opening scene and in
// a two-slide recap the middle position is the closing scene.
func SceneType(index int, count int) string {
	switch {
	case index == 0:
		return SceneOpening
	case index == count-1:
		return SceneClosing
	case index == count/2:
		return SceneMain
	default:
		return SceneDefault
	}
}

// SceneLabel renders the one-based position, e.g. "Scene 2 of 5".
func SceneLabel(index int, count int) string {
	return fmt.Sprintf("Scene %d of %d", index+1, count)
}

// Progress is (index+1)/count, or 0 for an empty recap.
func Progress(index int, count int) float64 {
	if count <= 0 {
		return 0
	}
	return float64(index+1) / float64(count)
}

// IntroCard builds the card shown before playback.
func IntroCard(recap *model.RecapSet) Card {
	subtitle := DefaultIntroSubtitle
	if recap.Caption != "" {
		subtitle = recap.Caption
	}
	return Card{Label: IntroLabel, Title: IntroTitle, Subtitle: subtitle, Hint: IntroHint}
}

// OutroCard builds the credits shown after the last slide.
func OutroCard(recap *model.RecapSet) Card {
	subtitle := "Your mini-movie just finished."
	if recap.Title != "" {
		subtitle = fmt.Sprintf("“%s” just wrapped.", recap.Title)
	}
	return Card{Label: OutroLabel, Title: OutroTitle, Subtitle: subtitle + " " + OutroHint}
}

// ButtonLabel is the caption of the single play control in phase.
func ButtonLabel(phase Phase) string {
	switch phase {
	case PhaseIntro:
		return "Start"
	case PhaseOutro:
		return "Replay"
	case PhasePlaying:
		return "Pause"
	case PhasePaused:
		return "Play"
	default:
		return ""
	}
}

func newFrame(recap *model.RecapSet, phase Phase, index int) Frame {
	f := Frame{
		RecapId: recap.Id,
		Phase:   phase,
		Playing: phase == PhasePlaying,
		Count:   recap.Len(),
		Title:   recap.Title,
		Vibe:    recap.DisplayVibe(),
		Accent:  recap.Accent(),
		Emotion: recap.PrettyEmotion(),
		Button:  ButtonLabel(phase),
	}
	if f.Title == "" {
		f.Title = DefaultTitle
	}
	f.Description = recap.Description
	if f.Description == "" {
		f.Description = DefaultDescription
	}
	if recap.Notice.IsFallback() {
		n := recap.Notice
		f.Notice = &n
	}

	if phase == PhaseEmpty {
		f.Message = EmptyMessage
		return f
	}

	slide := recap.Slides[index]
	f.Slide = &slide
	f.Index = index
	f.Progress = Progress(index, f.Count)
	f.Highlight = recap.IsHighlight(index)
	f.SceneType = SceneType(index, f.Count)
	f.SceneLabel = SceneLabel(index, f.Count)

	switch phase {
	case PhaseIntro:
		c := IntroCard(recap)
		f.Intro = &c
	case PhaseOutro:
		c := OutroCard(recap)
		f.Outro = &c
	}
	return f
}
