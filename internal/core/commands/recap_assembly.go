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

// This file defines the command that builds the final *model.RecapSet from
// the request and whatever the analysis stage produced.
//
// Outcomes:
//   - Analysis failed: selection order, neutral metadata, NoticeAnalysisFailed.
//   - Analysis answered without an order: selection order, the service's
//     metadata, NoticeOrderingUnavailable.
//   - Otherwise: the service's order and metadata, NoticeNone.
package commands

import (
	"log/slog"

	"github.com/jaycherian/lumi/internal/core/cor"
	"github.com/jaycherian/lumi/internal/core/model"
)

const (
	AnalysisFailedMessage      = "We couldn't analyze your photos, so they play in the order you picked them."
	OrderingUnavailableMessage = "We couldn't find a story order, so your photos play in the order you picked them."
)

// RecapAssembly combines the request with the analysis outcome.
type RecapAssembly struct {
	cor.BaseCommand
}

func NewRecapAssembly(name string) *RecapAssembly {
	out := &RecapAssembly{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = ParamRecapRequest
	out.OutputParamName = ParamRecap
	return out
}

func (c *RecapAssembly) Execute(context cor.Context) {
	req := context.Get(c.GetInputParam()).(*model.RecapRequest)
	analysis, _ := context.Get(ParamAnalysis).(*model.AnalysisResult)
	analysisErr, _ := context.Get(ParamAnalysisError).(error)

	recap := AssembleRecap(req, analysis, analysisErr)
	if recap.Notice.Code == model.NoticeAnalysisFailed {
		slog.WarnContext(context.GetContext(), "recap analysis failed, using selection order",
			"recap_id", recap.Id, "slides", recap.Len(), "error", analysisErr)
	}

	c.RecordSuccess(context)
	context.Add(c.GetOutputParam(), recap)
	context.Add(cor.CtxOut, recap)
}

// AssembleRecap applies the outcome rules above.
func AssembleRecap(req *model.RecapRequest, analysis *model.AnalysisResult, analysisErr error) *model.RecapSet {
	if analysisErr != nil || analysis == nil {
		recap := model.NewRecapSet(req.Slides, req.Caption)
		recap.Notice = model.Notice{Code: model.NoticeAnalysisFailed, Message: AnalysisFailedMessage}
		return recap
	}

	slides := analysis.OrderedSlides
	notice := model.Notice{Code: model.NoticeNone}
	if len(slides) == 0 {
		slides = req.Slides
		notice = model.Notice{Code: model.NoticeOrderingUnavailable, Message: OrderingUnavailableMessage}
	}

	recap := model.NewRecapSet(slides, req.Caption)
	recap.Title = analysis.Title
	recap.VibeKey = analysis.VibeKey
	recap.VibeLabel = analysis.VibeLabel
	recap.Emotion = analysis.Emotion
	recap.Description = analysis.Description
	recap.Highlights = FilterHighlights(analysis.Highlights, len(slides))
	recap.Notice = notice
	recap.ApplyDefaults()
	return recap
}
