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

// Package model holds the data structures of the recap domain.
// This file contains the transient structures: values that only live for
// the duration of one recap request and are never persisted on their own.
//
// Structs:
//   - RecapRequest: The input to the recap workflow (slides plus caption).
//   - RecapAnalysis: The structured response expected from the analysis model.
//   - AnalysisResult: The analysis mapped back onto concrete slides.
//   - Notice: A user-visible, non-blocking message attached to a recap.
package model

// RecapRequest is what the caller hands to the recap workflow, either from
// the HTTP API or from a Pub/Sub message.
type RecapRequest struct {
	SelectionId string  `json:"selection_id,omitempty"` // Optional id of the selection the slides came from.
	Slides      []Slide `json:"slides"`                 // Slides in the order the user picked them.
	Caption     string  `json:"caption"`                // Free text describing the recap; may be empty.
}

// RecapAnalysis is the JSON document the analysis model is asked to
// produce. Order and Highlights are indices: Order into the input slides,
// Highlights into Order. AnalysisResult carries them as positions in the
// final arrangement.
type RecapAnalysis struct {
	Order       []int  `json:"order"`                 // Story order as positions into the input slides.
	Title       string `json:"title"`                 // Short movie-style title.
	VibeKey     string `json:"vibe_key"`              // One of the known vibe keys, or "default".
	VibeLabel   string `json:"vibe_label"`            // Display text for the vibe pill.
	Emotion     string `json:"emotion,omitempty"`     // Single-word mood.
	Description string `json:"description,omitempty"` // One or two sentences of narration.
	Highlights  []int  `json:"highlights,omitempty"`  // Narratively significant positions in Order.
}

// AnalysisResult is the validated analysis: the ordering has been resolved
// to slides and every index has been range-checked.
type AnalysisResult struct {
	OrderedSlides []Slide
	Title         string
	VibeKey       string
	VibeLabel     string
	Emotion       string
	Description   string
	Highlights    []int
}

// NoticeCode classifies the notice attached to a recap.
type NoticeCode string

const (
	// NoticeNone means the recap carries the analysis service's ordering and metadata.
	NoticeNone NoticeCode = "none"
	// NoticeAnalysisFailed means the service call failed: original order, default metadata.
	NoticeAnalysisFailed NoticeCode = "analysis_failed"
	// NoticeOrderingUnavailable means the service answered without an ordering:
	// original order, service metadata.
	NoticeOrderingUnavailable NoticeCode = "ordering_unavailable"
)

// Notice is a user-visible message that never blocks playback.
type Notice struct {
	Code    NoticeCode `json:"code" yaml:"code" bigquery:"code"`
	Message string     `json:"message,omitempty" yaml:"message,omitempty" bigquery:"message"`
}

// IsFallback reports whether the recap kept the user's original order.
func (n Notice) IsFallback() bool {
	return n.Code == NoticeAnalysisFailed || n.Code == NoticeOrderingUnavailable
}
