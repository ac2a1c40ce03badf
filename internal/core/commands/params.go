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

// Package commands holds the steps of the recap workflow. Each step embeds
// cor.BaseCommand, reads its input from the shared cor.Context and writes its
// result back under a well-known key and under cor.CtxOut.
package commands

// Context keys shared by the recap commands.
const (
	ParamRecapRequest  = "__recap_request__"  // *model.RecapRequest
	ParamSlideParts    = "__slide_parts__"    // []*genai.Part
	ParamAnalysisJSON  = "__analysis_json__"  // string returned by the model
	ParamAnalysis      = "__analysis__"       // *model.AnalysisResult
	ParamAnalysisError = "__analysis_error__" // error raised inside the analysis stage
	ParamRecap         = "__recap__"          // *model.RecapSet
)
