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
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/core/workflow"
	"github.com/jaycherian/lumi/internal/photosource"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

// errAnalysisDisabled is what the offline generator answers with.
var errAnalysisDisabled = errors.New("analysis disabled with --offline")

type offlineGenerator struct{}

func (offlineGenerator) GenerateContent(context.Context, []*genai.Content) (*genai.GenerateContentResponse, error) {
	return nil, errAnalysisDisabled
}

func newRecapCmd(opts *rootOptions) *cobra.Command {
	var caption string
	var limit int
	var offline bool

	cmd := &cobra.Command{
		Use:   "recap <dir>",
		Short: "Build a recap from the photos in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(opts.config)
			if err != nil {
				return err
			}
			defer store.Close()

			generator, err := newGenerator(ctx, opts.config, offline)
			if err != nil {
				return err
			}
			recapWorkflow, err := workflow.NewRecapWorkflow(opts.config, generator, store, nil)
			if err != nil {
				return err
			}

			slides, err := photosource.NewLocalSource(args[0], 0).Pick(ctx)
			if err != nil {
				return err
			}
			slides = limitSlides(cmd.ErrOrStderr(), slides, limit)
			recap, err := recapWorkflow.Run(ctx, &model.RecapRequest{Slides: slides, Caption: caption})
			if err != nil {
				return err
			}
			printRecap(cmd.OutOrStdout(), recap)
			return nil
		},
	}
	cmd.Flags().StringVar(&caption, "caption", "", "What the photos are about")
	cmd.Flags().IntVar(&limit, "limit", 0, "Use only the first N photos (0 uses all; more than the configured maximum is rejected)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip analysis and keep the directory order")
	return cmd
}

// limitSlides keeps the first limit slides and says so when any are dropped.
func limitSlides(w io.Writer, slides []model.Slide, limit int) []model.Slide {
	if limit <= 0 || len(slides) <= limit {
		return slides
	}
	fmt.Fprintln(w, noticeStyle.Render(fmt.Sprintf("using the first %d of %d photos", limit, len(slides))))
	return slides[:limit]
}

// newGenerator builds the configured analysis model on Vertex AI.
func newGenerator(ctx context.Context, config *cloud.Config, offline bool) (cloud.ContentGenerator, error) {
	if offline {
		return offlineGenerator{}, nil
	}
	values, ok := config.AgentModels[config.Application.AnalysisModel]
	if !ok {
		return nil, fmt.Errorf("analysis model %q is not configured", config.Application.AnalysisModel)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return cloud.NewQuotaAwareModel(cloud.NewGenerateContentConfig(values), values.Model, client.Models, values.RateLimit), nil
}

func printRecap(w io.Writer, recap *model.RecapSet) {
	fmt.Fprintln(w, titleStyle(recap.Accent()).Render(displayTitle(recap)))
	if recap.Description != "" {
		fmt.Fprintln(w, recap.Description)
	}
	if recap.Notice.IsFallback() {
		fmt.Fprintln(w, noticeStyle.Render(recap.Notice.Message))
	}
	for i, s := range recap.Slides {
		marker := " "
		if recap.IsHighlight(i) {
			marker = "★"
		}
		fmt.Fprintf(w, "%s %2d. %s\n", marker, i+1, s.URI)
	}
	fmt.Fprintln(w, metaStyle.Render("recap "+recap.Id))
}
