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

// This file defines the command that asks the generative model to order and
// narrate a photo selection.
//
// Logic Flow:
//  1. The slide parts built by SlidePartsBuilder and the original request are
//     read from the context.
//  2. The prompt template is rendered with the caption, the slide count, the
//     catalogue of vibes and a complete example answer (few-shot prompting).
//  3. The prompt and the slide parts are sent in one multi-modal request
//     through cloud.GenerateMultiModalResponse, which retries and records
//     token usage.
//  4. The raw JSON answer is placed in the context for RecapJsonToStruct.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/cor"
	"github.com/jaycherian/lumi/internal/core/model"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

// RecapAnalyzer calls the analysis model.
type RecapAnalyzer struct {
	cor.BaseCommand
	generativeAIModel        cloud.ContentGenerator
	template                 *template.Template
	geminiInputTokenCounter  metric.Int64Counter
	geminiOutputTokenCounter metric.Int64Counter
	geminiRetryCounter       metric.Int64Counter
}

// NewRecapAnalyzer creates the command.
//
// Inputs:
//   - name: The command name.
//   - generativeAIModel: The model, normally a rate-limited QuotaAwareGenerativeAIModel.
//   - template: The parsed recap prompt.
//
// Outputs:
//   - *RecapAnalyzer: The command, with its token and retry counters.
func NewRecapAnalyzer(name string, generativeAIModel cloud.ContentGenerator, template *template.Template) *RecapAnalyzer {
	out := &RecapAnalyzer{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: generativeAIModel,
		template:          template,
	}
	out.InputParamName = ParamSlideParts

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.retry", out.GetName()))
	return out
}

// IsExecutable also requires the original request.
func (c *RecapAnalyzer) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) && context.Get(ParamRecapRequest) != nil
}

// GenerateParams builds the template vocabulary for req.
func (c *RecapAnalyzer) GenerateParams(req *model.RecapRequest) map[string]interface{} {
	params := make(map[string]interface{})

	caption := strings.TrimSpace(req.Caption)
	if caption == "" {
		caption = "(no caption)"
	}
	params["CAPTION"] = caption
	params["SLIDE_COUNT"] = len(req.Slides)
	params["LAST_INDEX"] = len(req.Slides) - 1

	var vibes strings.Builder
	for _, key := range model.KnownVibeKeys() {
		fmt.Fprintf(&vibes, "%s; ", key)
	}
	vibes.WriteString(model.DefaultVibeKey)
	params["VIBES"] = vibes.String()

	example, _ := json.Marshal(model.GetExampleAnalysis())
	params["EXAMPLE_JSON"] = string(example)
	return params
}

func (c *RecapAnalyzer) Execute(context cor.Context) {
	slideParts := context.Get(c.GetInputParam()).([]*genai.Part)
	req := context.Get(ParamRecapRequest).(*model.RecapRequest)

	var buffer bytes.Buffer
	if err := c.template.Execute(&buffer, c.GenerateParams(req)); err != nil {
		c.RecordError(context, fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}

	parts := make([]*genai.Part, 0, len(slideParts)+1)
	parts = append(parts, cloud.NewTextPart(buffer.String()))
	parts = append(parts, slideParts...)
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	out, err := cloud.GenerateMultiModalResponse(
		context.GetContext(),
		c.geminiInputTokenCounter,
		c.geminiOutputTokenCounter,
		c.geminiRetryCounter,
		0,
		c.generativeAIModel,
		contents)
	if err != nil {
		c.RecordError(context, fmt.Errorf("%w: %w", model.ErrAnalysisFailure, err))
		return
	}

	c.RecordSuccess(context)
	context.Add(ParamAnalysisJSON, out)
	context.Add(c.GetOutputParam(), out)
}
