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

package model

import "errors"

// Error taxonomy. None of these is fatal to the process; callers recover
// where the error occurs and surface it as transient feedback.
var (
	// ErrPermissionDenied means access to the photo library was refused.
	ErrPermissionDenied = errors.New("photo access denied")
	// ErrEmptySelection means a recap was requested with zero slides.
	ErrEmptySelection = errors.New("at least one photo is required to create a recap")
	// ErrAnalysisFailure means the analysis service call failed.
	ErrAnalysisFailure = errors.New("recap analysis failed")
	// ErrEmptyRecap means a player was opened on a recap with no slides.
	ErrEmptyRecap = errors.New("recap has no slides")
	// ErrShareFailure means the share action could not complete.
	ErrShareFailure = errors.New("share failed")

	// ErrSelectionTooLarge means a selection holds more slides than one recap accepts.
	ErrSelectionTooLarge = errors.New("too many photos for one recap")
	// ErrSlideNotAllowed means a client sent a photo outside the accepted buckets.
	ErrSlideNotAllowed = errors.New("photo location not allowed")

	ErrRecapNotFound     = errors.New("recap not found")
	ErrSelectionNotFound = errors.New("selection not found")
	ErrSessionNotFound   = errors.New("player session not found")
	ErrAnalysisInFlight  = errors.New("a recap is already being generated for this selection")
	ErrSessionLimit      = errors.New("too many open player sessions")
)
