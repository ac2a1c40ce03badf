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

// Package cloud defines the application configuration, loaded from TOML
// files, and the clients used to talk to Google Cloud services.
//
// This file centralizes the configuration structs.
//
// Structs:
//   - BigQueryDataSource: Dataset and table holding persisted recaps.
//   - PromptTemplates: Text templates for prompts sent to the analysis model.
//   - VertexAiLLMModel: Settings for one generative model.
//   - TopicSubscription: One Pub/Sub subscription.
//   - Storage: Buckets for uploads and the photo library.
//   - RecapStore: Which store persists recaps.
//   - Player: Playback settings.
//   - Share: Signed URL settings.
//   - Config: The root of all of the above.
package cloud

import (
	"time"

	"google.golang.org/genai"
)

// DefaultSafetySettings leaves every harm category unblocked. Photos come
// from the user's own library and the output is narration about them.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// Recap store kinds.
const (
	StoreBigQuery = "bigquery"
	StoreSQLite   = "sqlite"
)

// DefaultSlideDuration is the auto-advance interval when none is configured.
const DefaultSlideDuration = 2500 * time.Millisecond

// BigQueryDataSource locates the recap table.
type BigQueryDataSource struct {
	DatasetName string `toml:"dataset"`     // The BigQuery dataset.
	RecapTable  string `toml:"recap_table"` // The table holding one row per recap.
}

// PromptTemplates holds the prompt templates.
type PromptTemplates struct {
	RecapPrompt string `toml:"recap"` // Template for ordering and narrating a photo set.
}

// VertexAiLLMModel configures one generative model.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // Model name, e.g. "gemini-2.0-flash".
	SystemInstructions string  `toml:"system_instructions"` // System instructions sent with every request.
	Temperature        float32 `toml:"temperature"`         // Sampling temperature.
	TopP               float32 `toml:"top_p"`               // Nucleus sampling.
	TopK               float32 `toml:"top_k"`               // Top-k sampling.
	MaxTokens          int32   `toml:"max_tokens"`          // Output token limit.
	OutputFormat       string  `toml:"output_format"`       // Response MIME type, "application/json" for recaps.
	RateLimit          int     `toml:"rate_limit"`          // Burst of requests allowed per second.
}

// TopicSubscription configures one Pub/Sub subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // Subscription id.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // Dead-letter topic, informational.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Processing budget per message.
}

// Storage configures the buckets.
type Storage struct {
	UploadBucket  string `toml:"upload_bucket"`  // Bucket receiving multipart uploads.
	UploadPrefix  string `toml:"upload_prefix"`  // Object prefix for uploads.
	LibraryBucket string `toml:"library_bucket"` // Bucket acting as the user's photo library.
	LibraryPrefix string `toml:"library_prefix"` // Prefix inside the library bucket.
}

// RecapStore selects and configures the recap persistence.
type RecapStore struct {
	Kind       string `toml:"kind"`        // StoreBigQuery or StoreSQLite.
	SQLitePath string `toml:"sqlite_path"` // Database file for StoreSQLite.
}

// Player configures playback sessions.
type Player struct {
	SlideDurationMs   int `toml:"slide_duration_ms"`    // Auto-advance interval.
	MaxSessions       int `toml:"max_sessions"`         // Open sessions allowed at once; 0 means unlimited.
	IdleTimeoutInMins int `toml:"idle_timeout_in_mins"` // Sessions untouched for longer are closed; 0 disables.
}

// SlideDuration returns the configured interval or DefaultSlideDuration.
func (p Player) SlideDuration() time.Duration {
	if p.SlideDurationMs <= 0 {
		return DefaultSlideDuration
	}
	return time.Duration(p.SlideDurationMs) * time.Millisecond
}

// Share configures the share action.
type Share struct {
	SignedURLTTLInMins int `toml:"signed_url_ttl_in_mins"` // Lifetime of shared links.
}

// TTL returns the signed URL lifetime, 15 minutes when unset.
func (s Share) TTL() time.Duration {
	if s.SignedURLTTLInMins <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(s.SignedURLTTLInMins) * time.Minute
}

// Config is the root configuration.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`                         // Service name for telemetry.
		GoogleProjectId           string `toml:"google_project_id"`            // Google Cloud project.
		GoogleLocation            string `toml:"location"`                     // Vertex AI location.
		Port                      int    `toml:"port"`                         // HTTP port.
		ThreadPoolSize            int    `toml:"thread_pool_size"`             // Workers used to prepare slide parts.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // Service account signing share URLs.
		AnalysisModel             string `toml:"analysis_model"`               // Key into AgentModels used for recaps.
		MaxSlides                 int    `toml:"max_slides"`                   // Upper bound on slides sent for analysis.
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`
	RecapStore         RecapStore                   `toml:"recap_store"`
	Player             Player                       `toml:"player"`
	Share              Share                        `toml:"share"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"` // Keyed by logical name, e.g. "RecapRequestTopic".
	AgentModels        map[string]VertexAiLLMModel  `toml:"agent_models"`        // Keyed by logical name, e.g. "recap-flash".
}

// NewConfig returns a Config with its maps initialized so the TOML decoder
// can populate them.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		AgentModels:        make(map[string]VertexAiLLMModel),
	}
}
