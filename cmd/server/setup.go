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

// Package main contains the setup of the application state: configuration,
// cloud clients, the recap store and the services the API is built on.
//
// Functions:
//   - SetupOS: Points the configuration loader at the configs directory.
//   - GetConfig: Loads the configuration once.
//   - NewRecapStore: Opens the recap store selected by recap_store.kind.
//   - InitState: Creates every client and service and starts the listeners.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jaycherian/lumi/internal/api"
	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/services"
	"github.com/jaycherian/lumi/internal/core/workflow"
	"github.com/jaycherian/lumi/internal/photosource"
)

// StateManager holds the shared dependencies of the server.
type StateManager struct {
	config     *cloud.Config
	cloud      *cloud.ServiceClients
	store      services.RecapStore
	closeStore func()
	playback   *services.PlaybackService
	api        *api.API
}

var state = &StateManager{}

// SetupOS sets the configuration directory and, unless already set, the
// runtime overlay ("local").
func SetupOS() (err error) {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig loads the configuration on first use and caches it.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load configuration: %v\n", err)
		}
		state.config = config
	}
	return state.config
}

// NewRecapStore opens the store named by config.RecapStore.Kind. The
// returned function releases it.
func NewRecapStore(config *cloud.Config, clients *cloud.ServiceClients) (services.RecapStore, func(), error) {
	switch config.RecapStore.Kind {
	case cloud.StoreBigQuery:
		return &services.BigQueryRecapStore{
			BigqueryClient: clients.BiqQueryClient,
			DatasetName:    config.BigQueryDataSource.DatasetName,
			RecapTable:     config.BigQueryDataSource.RecapTable,
		}, func() {}, nil
	case cloud.StoreSQLite, "":
		store, err := services.NewSQLiteRecapStore(config.RecapStore.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown recap store kind %q", config.RecapStore.Kind)
	}
}

// InitState creates the clients, the store, the services and the recap
// workflow, and starts the Pub/Sub listeners.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	store, closeStore, err := NewRecapStore(config, cloudClients)
	if err != nil {
		panic(err)
	}
	state.store = store
	state.closeStore = closeStore

	generator, ok := cloudClients.AgentModels[config.Application.AnalysisModel]
	if !ok {
		panic(fmt.Sprintf("analysis model %q is not configured", config.Application.AnalysisModel))
	}
	recapWorkflow, err := workflow.NewRecapWorkflow(config, generator, store, nil)
	if err != nil {
		panic(err)
	}

	sharer := &services.SignedURLSharer{
		StorageClient: cloudClients.StorageClient,
		IAMClient:     cloudClients.IAMClient,
		SignerEmail:   config.Application.SignerServiceAccountEmail,
		TTL:           config.Share.TTL(),
	}
	state.playback = services.NewPlaybackService(store, sharer, config.Player)

	selections := services.NewSelectionService()
	state.api = &api.API{
		Selections:   selections,
		Recaps:       &services.RecapService{Selections: selections, Runner: recapWorkflow, Store: store},
		Playback:     state.playback,
		UploadWriter: &photosource.GCSObjectWriter{Client: cloudClients.StorageClient},
		UploadBucket: config.Storage.UploadBucket,
		UploadPrefix: config.Storage.UploadPrefix,
	}
	if config.Storage.LibraryBucket != "" {
		state.api.Library = photosource.NewGCSSource(cloudClients.StorageClient,
			config.Storage.LibraryBucket, config.Storage.LibraryPrefix, config.Application.MaxSlides)
		state.api.SlideBuckets = []string{config.Storage.LibraryBucket}
	}

	slog.Info("recap store ready", "kind", config.RecapStore.Kind)
	SetupListeners(config, cloudClients, recapWorkflow, ctx)
}

// Close releases the state in reverse order of creation.
func (s *StateManager) Close(ctx context.Context) {
	if s.playback != nil {
		s.playback.CloseAll(ctx)
	}
	if s.closeStore != nil {
		s.closeStore()
	}
	if s.cloud != nil {
		s.cloud.Close()
	}
}
