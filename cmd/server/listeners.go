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

// Package main contains the setup of the Pub/Sub listeners.
package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/workflow"
)

// RecapRequestTopic is the logical name of the recap request subscription.
const RecapRequestTopic = "RecapRequestTopic"

// SetupListeners attaches the recap workflow to the recap request
// subscription and starts it. Messages carry model.RecapRequest JSON.
func SetupListeners(config *cloud.Config, cloudClients *cloud.ServiceClients, recap *workflow.RecapWorkflow, ctx context.Context) {
	listener, ok := cloudClients.PubSubListeners[RecapRequestTopic]
	if !ok {
		slog.Info("no recap request subscription configured")
		return
	}
	listener.SetCommand(workflow.NewRecapRequestWorkflow(recap))
	if sub := config.TopicSubscriptions[RecapRequestTopic]; sub.TimeoutInSeconds > 0 {
		listener.SetTimeout(time.Duration(sub.TimeoutInSeconds) * time.Second)
	}
	listener.Listen(ctx)
}
