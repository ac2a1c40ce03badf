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

// Package cloud provides components for interacting with Google Cloud services.
// This file implements a decorator around the genai Models handle that adds
// client-side rate limiting, so bursts of recap requests stay inside the
// Vertex AI quota.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: The model name, its generation config and a limiter.
//
// Interfaces:
//   - ContentGenerator: What the recap commands need from a model.
package cloud

import (
	"context"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ContentGenerator is the single call the recap workflow makes against a model.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error)
}

// QuotaAwareGenerativeAIModel bundles a model name, its generation config
// and a token bucket limiter.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // Settings applied to every request.
	ModelName               string                       // Model name sent to the API.
	ModelHandle             *genai.Models                // The client's Models service.
	RateLimit               *rate.Limiter                // Request limiter.
}

// NewQuotaAwareModel creates the decorator.
//
// Inputs:
//   - wrapped: The generation config for every request.
//   - name: The model name.
//   - modelHandle: The genai Models service.
//   - requestsPerSecond: Bucket size; the bucket refills one token per second.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: The wrapper.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, modelHandle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             modelHandle,
		RateLimit:               rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
	}
}

// GenerateContent waits for a limiter token, bounded by ctx, and then calls
// the model once. Retries are the caller's business; see
// GenerateMultiModalResponse.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
}
