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
// This file contains general-purpose helpers: hierarchical configuration
// loading and the retrying, instrumented call into the generative model.
//
// Functions:
//   - LoadConfig: Reads ".env.toml" and then overlays ".env.<runtime>.toml".
//   - GenerateMultiModalResponse: Calls the model with retries and token metrics.
//   - NewTextPart, NewFileData, NewInlineData: Small genai part factories.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

const (
	ConfigFileBaseName  = ".env"              // Base name of configuration files.
	ConfigFileExtension = ".toml"             // Extension of configuration files.
	ConfigSeparator     = "."                 // Separator between base name and runtime.
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX" // Directory holding the configuration files.
	EnvConfigRuntime    = "GCP_RUNTIME"       // Runtime overlay to apply, e.g. "local", "test", "prod".
	MaxRetries          = 3                   // Attempts after the first failed model call.
)

// ErrEmptyModelResponse is returned when the model answers without any text.
var ErrEmptyModelResponse = errors.New("model returned no content")

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// ConfigFiles returns the base and runtime overlay paths derived from the
// environment. The runtime defaults to "test".
func ConfigFiles() (base string, overlay string) {
	prefix := os.Getenv(EnvConfigFilePrefix)
	if len(prefix) > 0 && !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix = prefix + string(os.PathSeparator)
	}
	runtime := os.Getenv(EnvConfigRuntime)
	if runtime == "" {
		runtime = "test"
	}
	base = prefix + ConfigFileBaseName + ConfigFileExtension
	overlay = prefix + ConfigFileBaseName + ConfigSeparator + runtime + ConfigFileExtension
	return base, overlay
}

// LoadConfig decodes the base configuration file into baseConfig and then
// decodes the runtime overlay on top of it, so overlay values win. Missing
// files are skipped.
//
// Inputs:
//   - baseConfig: A pointer to the struct to populate.
//
// Outputs:
//   - error: A decode error, naming the offending file.
func LoadConfig(baseConfig interface{}) error {
	base, overlay := ConfigFiles()
	slog.Debug("loading configuration", "base", base, "overlay", overlay)

	for _, file := range []string{base, overlay} {
		if !fileExists(file) {
			continue
		}
		if _, err := toml.DecodeFile(file, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", file, err)
		}
	}
	return nil
}

// GenerateMultiModalResponse sends content to the model and returns the
// concatenated text of all candidates with any Markdown JSON fence removed.
// Failed calls are retried up to MaxRetries times; each retry and the token
// usage of the successful call are recorded on the given counters.
//
// Inputs:
//   - ctx: Request context; cancellation stops further retries.
//   - inputTokenCounter, outputTokenCounter, retryCounter: OpenTelemetry counters.
//   - tryCount: The current attempt, 0 on the first call.
//   - model: The generator to call, normally a QuotaAwareGenerativeAIModel.
//   - content: The prompt.
//
// Outputs:
//   - string: The model's text.
//   - error: The last error once retries are exhausted.
func GenerateMultiModalResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	retryCounter metric.Int64Counter,
	tryCount int,
	model ContentGenerator,
	content []*genai.Content) (value string, err error) {
	resp, err := model.GenerateContent(ctx, content)
	if err != nil {
		if tryCount < MaxRetries && ctx.Err() == nil {
			if retryCounter != nil {
				retryCounter.Add(ctx, 1)
			}
			slog.WarnContext(ctx, "model call failed, retrying", "attempt", tryCount+1, "error", err)
			return GenerateMultiModalResponse(ctx, inputTokenCounter, outputTokenCounter, retryCounter, tryCount+1, model, content)
		}
		return "", err
	}

	if resp.UsageMetadata != nil {
		if inputTokenCounter != nil {
			inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		}
		if outputTokenCounter != nil {
			outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
		}
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	value = CleanJSONBlock(sb.String())
	if value == "" {
		return "", ErrEmptyModelResponse
	}
	return value, nil
}

// CleanJSONBlock strips surrounding whitespace and a Markdown code fence.
func CleanJSONBlock(in string) string {
	out := strings.TrimSpace(in)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

// NewTextPart creates a text part.
func NewTextPart(in string) *genai.Part {
	return &genai.Part{Text: in}
}

// NewFileData creates a part referencing a file by URI, e.g. a gs:// object.
func NewFileData(in string, mimeType string) *genai.Part {
	return &genai.Part{FileData: &genai.FileData{FileURI: in, MIMEType: mimeType}}
}

// NewInlineData creates a part carrying the bytes of a file.
func NewInlineData(data []byte, mimeType string) *genai.Part {
	return &genai.Part{InlineData: &genai.Blob{Data: data, MIMEType: mimeType}}
}
