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

// Package workflow assembles commands into the recap pipelines.
package workflow

import (
	goctx "context"
	"fmt"
	"text/template"

	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/commands"
	"github.com/jaycherian/lumi/internal/core/cor"
	"github.com/jaycherian/lumi/internal/core/model"
)

// RecapWorkflow turns a *model.RecapRequest into a persisted *model.RecapSet.
//
// The analysis steps run inside a cor.ForkedChain: a failed model call or an
// unusable answer never fails the workflow, it only makes the assembly step
// fall back to the selection order. Only an invalid selection or a failed
// write stops the workflow with an error.
type RecapWorkflow struct {
	cor.BaseCommand
	config          *cloud.Config
	generator       cloud.ContentGenerator
	store           commands.RecapWriter
	loader          commands.SlidePartLoader
	numberOfWorkers int
	recapTemplate   *template.Template
	chain           cor.Chain
}

func (w *RecapWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// IsExecutable requires the request as input.
func (w *RecapWorkflow) IsExecutable(context cor.Context) bool {
	return w.chain.IsExecutable(context) && context.Get(w.GetInputParam()) != nil
}

func (w *RecapWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Reject empty or oversized selections.
	out.AddCommand(commands.NewSelectionValidator("validate-selection", w.config.Application.MaxSlides))

	// Step 2: Order and narrate the selection; failures stay inside the fork.
	analysis := cor.NewForkedChain("recap-analysis", commands.ParamAnalysisError, commands.ParamAnalysis)
	analysis.AddCommand(commands.NewSlidePartsBuilder("build-slide-parts", w.numberOfWorkers, w.loader))
	analysis.AddCommand(commands.NewRecapAnalyzer("generate-recap-analysis", w.generator, w.recapTemplate))
	analysis.AddCommand(commands.NewRecapJsonToStruct("convert-recap-analysis"))
	out.AddCommand(analysis)

	// Step 3: Build the recap, falling back to the selection order when needed.
	out.AddCommand(commands.NewRecapAssembly("assemble-recap"))

	// Step 4: Store it.
	out.AddCommand(commands.NewRecapPersist("persist-recap", w.store))

	w.chain = out
}

// NewRecapWorkflow creates the workflow.
//
// Inputs:
//   - config: Supplies the prompt template, worker count and slide limit.
//   - generator: The analysis model.
//   - store: Where finished recaps are written.
//   - loader: Builds request parts for slides; nil means commands.LoadSlidePart.
//
// Outputs:
//   - *RecapWorkflow: The workflow.
//   - error: The prompt template did not parse.
func NewRecapWorkflow(
	config *cloud.Config,
	generator cloud.ContentGenerator,
	store commands.RecapWriter,
	loader commands.SlidePartLoader) (*RecapWorkflow, error) {

	recapTemplate, err := template.New("recap-template").Parse(config.PromptTemplates.RecapPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recap prompt: %w", err)
	}

	w := &RecapWorkflow{
		BaseCommand:     *cor.NewBaseCommand("recap-workflow"),
		config:          config,
		generator:       generator,
		store:           store,
		loader:          loader,
		numberOfWorkers: config.Application.ThreadPoolSize,
		recapTemplate:   recapTemplate,
	}
	w.initializeChain()
	return w, nil
}

// Run executes the workflow for one request and returns the stored recap.
// The returned error is the workflow's joined error; errors.Is works against
// the model sentinels.
func (w *RecapWorkflow) Run(ctx goctx.Context, req *model.RecapRequest) (*model.RecapSet, error) {
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(ctx)
	chCtx.Add(cor.CtxIn, req)

	w.Execute(chCtx)
	if err := chCtx.Err(); err != nil {
		return nil, err
	}
	recap, ok := chCtx.Get(commands.ParamRecap).(*model.RecapSet)
	if !ok {
		return nil, fmt.Errorf("recap workflow produced no recap")
	}
	return recap, nil
}

// NewRecapRequestWorkflow wraps recap so it can be driven by raw JSON
// messages, as delivered by a cloud.PubSubListener.
func NewRecapRequestWorkflow(recap *RecapWorkflow) cor.Chain {
	out := cor.NewBaseChain("recap-request-workflow")
	out.AddCommand(commands.NewRecapRequestReader("recap-request-reader"))
	out.AddCommand(recap)
	return out
}
