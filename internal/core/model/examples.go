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

// GetExampleAnalysis returns a complete, well-formed analysis document. It is
// marshalled into the prompt as a few-shot example so the model answers with
// the same shape.
func GetExampleAnalysis() *RecapAnalysis {
	return &RecapAnalysis{
		Order:       []int{2, 0, 3, 1, 4},
		Title:       "Three Days in Chicago",
		VibeKey:     "travel",
		VibeLabel:   "City escape",
		Emotion:     "excited",
		Description: "A skyline at dawn, deep dish at midnight and a lakefront walk that nobody wanted to end.",
		Highlights:  []int{0, 2},
	}
}
