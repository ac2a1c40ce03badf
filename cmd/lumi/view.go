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

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/player"
)

const progressWidth = 24

var (
	colorDim    = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#64748b"}
	colorBright = lipgloss.AdaptiveColor{Light: "#0f172a", Dark: "#f1f5f9"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"}
)

var (
	metaStyle   = lipgloss.NewStyle().Foreground(colorDim)
	textStyle   = lipgloss.NewStyle().Foreground(colorBright)
	noticeStyle = lipgloss.NewStyle().Foreground(colorWarn).Italic(true)
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

func titleStyle(accent model.Accent) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(accent.Hex)).Bold(true)
}

func displayTitle(recap *model.RecapSet) string {
	if recap.Title != "" {
		return recap.Title
	}
	return player.DefaultTitle
}

// progressBar draws progress in [0,1] as a fixed-width bar.
func progressBar(progress float64, accent model.Accent) string {
	filled := int(progress*progressWidth + 0.5)
	if filled > progressWidth {
		filled = progressWidth
	}
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(accent.Hex)).Render(strings.Repeat("█", filled))
	return bar + metaStyle.Render(strings.Repeat("░", progressWidth-filled))
}

func renderCard(card *player.Card, accent model.Accent) string {
	lines := []string{
		metaStyle.Render(card.Label),
		titleStyle(accent).Render(card.Title),
		textStyle.Render(card.Subtitle),
	}
	if card.Hint != "" {
		lines = append(lines, metaStyle.Render(card.Hint))
	}
	return cardStyle.BorderForeground(lipgloss.Color(accent.Hex)).Render(strings.Join(lines, "\n"))
}

// renderFrame draws one player frame.
func renderFrame(f player.Frame) string {
	var b strings.Builder
	switch f.Phase {
	case player.PhaseEmpty:
		b.WriteString(noticeStyle.Render(f.Message))
		return b.String()
	case player.PhaseIntro:
		b.WriteString(renderCard(f.Intro, f.Accent))
	case player.PhaseOutro:
		b.WriteString(renderCard(f.Outro, f.Accent))
	default:
		header := titleStyle(f.Accent).Render(f.Title)
		if f.Vibe != "" {
			header += " " + metaStyle.Render("["+f.Vibe+"]")
		}
		if f.Emotion != "" {
			header += " " + metaStyle.Render(f.Emotion)
		}
		b.WriteString(header + "\n")

		scene := f.SceneLabel + " · " + f.SceneType
		if f.Highlight {
			scene += " ★"
		}
		b.WriteString(textStyle.Render(scene) + "\n")
		b.WriteString(f.Slide.URI + "\n")
		b.WriteString(progressBar(f.Progress, f.Accent))
		b.WriteString(metaStyle.Render(fmt.Sprintf(" %d/%d", f.Index+1, f.Count)))
	}
	if f.Notice != nil {
		b.WriteString("\n" + noticeStyle.Render(f.Notice.Message))
	}
	if f.Button != "" {
		b.WriteString("\n" + metaStyle.Render(controlsHint(f.Button)))
	}
	return b.String()
}

func controlsHint(button string) string {
	return fmt.Sprintf("[enter] %s  [n] next  [p] prev  [s] share  [q] quit", strings.ToLower(button))
}
