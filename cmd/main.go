/*
Copyright 2024 Veld Commerce Authors.

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
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/veldcommerce/veld"
	"github.com/veldcommerce/veld/config"
	"github.com/veldcommerce/veld/database"
	"github.com/veldcommerce/veld/internal/notification"
)

// Veld represents the CLI application, encapsulating the root Cobra command.
type Veld struct {
	cmd *cobra.Command
}

// veldInstance holds the engine instance and its configuration for use by
// the subcommands.
type veldInstance struct {
	veld *veld.Veld
	cnf  *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error using Logrus.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun sets up the configuration and initializes the engine before running
// any command.
func preRun(app *veldInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("veld.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newVeld, err := setupVeld(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.veld = newVeld
		app.cnf = cnf

		return nil
	}
}

// setupVeld creates and initializes a new engine instance based on the
// provided configuration, connecting to the data source first.
func setupVeld(cfg *config.Configuration) (*veld.Veld, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newVeld, err := veld.NewVeld(db)
	if err != nil {
		return nil, fmt.Errorf("error creating veld: %v", err)
	}
	return newVeld, nil
}

// NewCLI creates the command-line interface for the engine: the root command
// plus the server and workers subcommands.
func NewCLI() *Veld {
	var configFile string
	v := &veldInstance{}

	var rootCmd = &cobra.Command{
		Use:   "veld",
		Short: "Settlement and reconciliation engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./veld.json", "Configuration file for the engine")

	rootCmd.PersistentPreRunE = preRun(v)

	rootCmd.AddCommand(serverCommands(v))
	rootCmd.AddCommand(workerCommands(v))

	return &Veld{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during execution.
func (w Veld) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
