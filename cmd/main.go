/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"os"

	"github.com/blnkfinance/tracsync/config"
	"github.com/blnkfinance/tracsync/database"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	storageMongo  = "mongo"
	storageMemory = "memory"
)

// TracSync represents the CLI application, encapsulating the root Cobra command.
type TracSync struct {
	cmd *cobra.Command // Root command for the CLI application
}

// syncInstance holds what the commands share at runtime: the loaded configuration and
// the storage selection made on the command line.
type syncInstance struct {
	cnf        *config.Configuration
	configFile string
	storage    string
	memory     *database.MemoryDataSource // Shared by both phases of a dry run
}

// recoverPanic handles any panics during program execution and logs the error using Logrus.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec) // Log the recovered panic
		os.Exit(1)        // Exit the program with an error status
	}
}

// preRun loads the configuration before running any command.
func preRun(app *syncInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if app.storage != storageMongo && app.storage != storageMemory {
			return fmt.Errorf("unknown storage %q, expected %q or %q", app.storage, storageMongo, storageMemory)
		}

		if err := config.InitConfig(app.configFile); err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}
		app.cnf = cnf
		return nil
	}
}

// NewCLI creates the command-line interface for the sync service.
func NewCLI() *TracSync {
	app := &syncInstance{}

	var rootCmd = &cobra.Command{
		Use:           "tracsync",
		Short:         "Synchronize customer work orders with TracOS",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "./tracsync.json", "Configuration file for tracsync")
	rootCmd.PersistentFlags().StringVar(&app.storage, "storage", storageMongo, "Storage backend: mongo, or memory for a dry run")

	rootCmd.PersistentPreRunE = preRun(app)

	rootCmd.AddCommand(runCommands(app))
	rootCmd.AddCommand(inboundCommands(app))
	rootCmd.AddCommand(outboundCommands(app))
	rootCmd.AddCommand(configCommands())

	return &TracSync{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during execution.
func (t TracSync) executeCLI() {
	if err := t.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err) // Print any errors that occur
		os.Exit(1)                   // Exit the program with an error status
	}
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
