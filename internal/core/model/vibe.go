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

import "strings"

// Accent is the theme color selected by a vibe key.
type Accent struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

var (
	AccentOrange  = Accent{Name: "orange", Hex: "#F97316"}
	AccentAmber   = Accent{Name: "amber", Hex: "#FBBF24"}
	AccentGreen   = Accent{Name: "green", Hex: "#22C55E"}
	AccentPink    = Accent{Name: "pink", Hex: "#EC4899"}
	AccentSkyBlue = Accent{Name: "sky-blue", Hex: "#38BDF8"}
	AccentPurple  = Accent{Name: "purple", Hex: "#A855F7"}
)

// vibeAccents is the closed vibe catalogue. Keys missing here use AccentPurple.
var vibeAccents = map[string]Accent{
	"hype":    AccentOrange,
	"cozy":    AccentAmber,
	"travel":  AccentGreen,
	"friends": AccentPink,
	"chill":   AccentSkyBlue,
}

// AccentFor maps any vibe key to exactly one accent.
func AccentFor(vibeKey string) Accent {
	if a, ok := vibeAccents[vibeKey]; ok {
		return a
	}
	return AccentPurple
}

// KnownVibeKeys lists the vibe keys with a dedicated accent, in catalogue order.
func KnownVibeKeys() []string {
	return []string{"hype", "cozy", "travel", "friends", "chill"}
}

// NormalizeVibeKey lower-cases and trims a key returned by the analysis
// service; unknown or empty keys become DefaultVibeKey.
func NormalizeVibeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if _, ok := vibeAccents[k]; ok {
		return k
	}
	return DefaultVibeKey
}
