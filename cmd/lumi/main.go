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

// Command lumi builds recaps from a local photo directory and plays them
// in the terminal.
//
//	lumi recap ./photos --caption "Weekend in Chicago"
//	lumi play <recap-id>
//	lumi export <recap-id> --format yaml
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/services"
	"github.com/jaycherian/lumi/internal/telemetry"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel string
	dbPath   string
	config   *cloud.Config
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "lumi",
		Short:         "Turn a folder of photos into a mini-movie recap",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setupLogging(opts.logLevel); err != nil {
				return err
			}
			config, err := loadConfig()
			if err != nil {
				return err
			}
			if opts.dbPath != "" {
				config.RecapStore.SQLitePath = opts.dbPath
			}
			opts.config = config
			return nil
		},
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.PersistentFlags().StringVar(&opts.logLevel, "log", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database holding recaps (default from config)")

	root.AddCommand(newRecapCmd(opts), newPlayCmd(opts), newExportCmd(opts), newListCmd(opts))
	return root
}

// setupLogging routes slog through charmbracelet/log on stderr.
func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	handler := log.NewWithOptions(os.Stderr, log.Options{Level: lvl, ReportTimestamp: true})
	telemetry.SetupLoggingWith(telemetry.HandlerWithSpanContext(handler))
	return nil
}

// loadConfig reads configs/.env.toml and the runtime overlay, defaulting
// the runtime to "local".
func loadConfig() (*cloud.Config, error) {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return nil, err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		if err := os.Setenv(cloud.EnvConfigRuntime, "local"); err != nil {
			return nil, err
		}
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// openStore opens the local recap database.
func openStore(config *cloud.Config) (*services.SQLiteRecapStore, error) {
	path := config.RecapStore.SQLitePath
	if path == "" {
		path = "lumi.db"
	}
	return services.NewSQLiteRecapStore(path)
}
