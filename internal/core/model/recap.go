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

// Package model defines the core data structures shared by the recap
// workflow, the stores and the player. A RecapSet is the unit that flows
// from the analysis workflow to the player; it is created once and treated
// as read-only afterwards.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Neutral values used whenever the analysis service leaves a field empty.
const (
	DefaultVibeKey = "default"
	DefaultEmotion = "default"
)

// Slide is one image reference displayed as one frame of a recap.
type Slide struct {
	URI string `json:"uri" yaml:"uri" bigquery:"uri"` // gs://bucket/object, file:///path or a local path.
}

// NewSlides wraps a list of URIs as slides, preserving order.
func NewSlides(uris ...string) []Slide {
	out := make([]Slide, 0, len(uris))
	for _, u := range uris {
		out = append(out, Slide{URI: u})
	}
	return out
}

// RecapSet is an ordered sequence of slides plus the narrative metadata
// produced for it.
type RecapSet struct {
	Id          string    `json:"id" yaml:"id" bigquery:"id"`
	CreateDate  time.Time `json:"create_date" yaml:"create_date" bigquery:"create_date"`
	Slides      []Slide   `json:"slides" yaml:"slides" bigquery:"slides"`
	Caption     string    `json:"caption,omitempty" yaml:"caption,omitempty" bigquery:"caption"`
	Title       string    `json:"title,omitempty" yaml:"title,omitempty" bigquery:"title"`
	VibeKey     string    `json:"vibe_key" yaml:"vibe_key" bigquery:"vibe_key"`
	VibeLabel   string    `json:"vibe_label,omitempty" yaml:"vibe_label,omitempty" bigquery:"vibe_label"`
	Emotion     string    `json:"emotion,omitempty" yaml:"emotion,omitempty" bigquery:"emotion"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty" bigquery:"description"`
	Highlights  []int     `json:"highlights" yaml:"highlights" bigquery:"highlights"`
	Notice      Notice    `json:"notice" yaml:"notice" bigquery:"notice"`
}

// NewRecapSet creates a recap with a fresh id, the neutral metadata
// defaults and a private copy of the given slides.
func NewRecapSet(slides []Slide, caption string) *RecapSet {
	cp := make([]Slide, len(slides))
	copy(cp, slides)
	return &RecapSet{
		Id:         uuid.NewString(),
		CreateDate: time.Now(),
		Slides:     cp,
		Caption:    caption,
		VibeKey:    DefaultVibeKey,
		Emotion:    DefaultEmotion,
		Highlights: make([]int, 0),
		Notice:     Notice{Code: NoticeNone},
	}
}

// Len returns the number of slides.
func (r *RecapSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Slides)
}

// IsHighlight reports whether the slide at index is flagged as significant.
func (r *RecapSet) IsHighlight(index int) bool {
	for _, h := range r.Highlights {
		if h == index {
			return true
		}
	}
	return false
}

// Accent returns the presentation accent for the recap's vibe key.
func (r *RecapSet) Accent() Accent {
	return AccentFor(r.VibeKey)
}

// DisplayVibe is the text for the vibe pill: the label, else the key.
func (r *RecapSet) DisplayVibe() string {
	if r.VibeLabel != "" {
		return r.VibeLabel
	}
	return r.VibeKey
}

// PrettyEmotion capitalizes the emotion label; the neutral value renders empty.
func (r *RecapSet) PrettyEmotion() string {
	if r.Emotion == "" || r.Emotion == DefaultEmotion {
		return ""
	}
	runes := []rune(r.Emotion)
	if runes[0] >= 'a' && runes[0] <= 'z' {
		runes[0] -= 'a' - 'A'
	}
	return string(runes)
}

// ApplyDefaults fills every absent optional field with its neutral value.
func (r *RecapSet) ApplyDefaults() {
	if r.VibeKey == "" {
		r.VibeKey = DefaultVibeKey
	}
	if r.Emotion == "" {
		r.Emotion = DefaultEmotion
	}
	if r.Highlights == nil {
		r.Highlights = make([]int, 0)
	}
	if r.Slides == nil {
		r.Slides = make([]Slide, 0)
	}
	if r.Notice.Code == "" {
		r.Notice.Code = NoticeNone
	}
}
