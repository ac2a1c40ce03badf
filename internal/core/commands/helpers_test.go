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

package commands_test

import (
	"context"
	"errors"
	"sync"

	"github.com/jaycherian/lumi/internal/core/cor"
	"github.com/jaycherian/lumi/internal/core/model"
	"google.golang.org/genai"
)

// fakeGenerator replays canned answers and records every request.
type fakeGenerator struct {
	mu       sync.Mutex
	answers  []string
	failures int
	calls    int
	requests [][]*genai.Content
}

func (f *fakeGenerator) GenerateContent(_ context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requests = append(f.requests, content)
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("unavailable")
	}
	text := ""
	if len(f.answers) > 0 {
		text = f.answers[0]
		f.answers = f.answers[1:]
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
		},
	}, nil
}

// memStore is an in-memory RecapWriter.
type memStore struct {
	mu     sync.Mutex
	saved  []*model.RecapSet
	failed error
}

func (m *memStore) Save(_ context.Context, recap *model.RecapSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed != nil {
		return m.failed
	}
	m.saved = append(m.saved, recap)
	return nil
}

func newChainContext(in interface{}) cor.Context {
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())
	chCtx.Add(cor.CtxIn, in)
	return chCtx
}

func request(caption string, uris ...string) *model.RecapRequest {
	return &model.RecapRequest{Slides: model.NewSlides(uris...), Caption: caption}
}
