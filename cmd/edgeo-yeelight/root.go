// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edgeo/drivers/yeelight/adapter"
	"github.com/edgeo/drivers/yeelight/yeelight"
)

var (
	cfgFile   string
	host      string
	model     string
	timeout   time.Duration
	effect    string
	duration  time.Duration
	outputFmt string
	verbose   bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "edgeo-yeelight",
	Short: "A Yeelight LAN-protocol client CLI",
	Long: `edgeo-yeelight is a command-line tool for controlling Yeelight devices
over their LAN protocol.

It supports property reads, field writes, state watching, and diagnostic
functions for smart lighting installations. LAN control must be enabled on
the device (Yeelight app: Device -> Settings -> LAN Control).

Examples:
  # Read all properties from a device
  edgeo-yeelight read -H 192.168.1.45

  # Turn the light on
  edgeo-yeelight write -H 192.168.1.45 state 1

  # Set brightness to 80%
  edgeo-yeelight write -H 192.168.1.45 brightness 80

  # Watch for state changes
  edgeo-yeelight watch -H 192.168.1.45`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logger
		logLevel := slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))

		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.edgeo-yeelight.yaml)")
	rootCmd.PersistentFlags().StringVarP(&host, "host", "H", "", "Device IP address (port defaults to 55443)")
	rootCmd.PersistentFlags().StringVarP(&model, "model", "m", "", "Device model identifier (e.g., color, ceiling4)")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 3*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&effect, "effect", "smooth", "Transition effect (smooth, sudden)")
	rootCmd.PersistentFlags().DurationVar(&duration, "duration", 300*time.Millisecond, "Transition duration")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format (table, json, csv, raw)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Bind flags to viper
	viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("effect", rootCmd.PersistentFlags().Lookup("effect"))
	viper.BindPFlag("duration", rootCmd.PersistentFlags().Lookup("duration"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".edgeo-yeelight")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("YEELIGHT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// requireHost fails early when no device address was given
func requireHost() error {
	if host == "" {
		return fmt.Errorf("device address is required (-H or --host)")
	}
	return nil
}

// createClient creates a Yeelight client with current configuration
func createClient() (*yeelight.Client, error) {
	return yeelight.NewClient(
		yeelight.WithAddress(host),
		yeelight.WithModel(model),
		yeelight.WithTimeout(timeout),
		yeelight.WithEffect(yeelight.Effect(effect)),
		yeelight.WithDuration(duration),
		yeelight.WithLogger(logger),
	)
}

// createAdapter creates an adapter over a fresh client and an in-memory
// field registry
func createAdapter() (*adapter.Adapter, *adapter.MemoryRegistry, error) {
	client, err := createClient()
	if err != nil {
		return nil, nil, err
	}
	registry := adapter.NewMemoryRegistry()
	a := adapter.New(registry,
		adapter.WithDevice(client),
		adapter.WithLogger(logger),
	)
	return a, registry, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("edgeo-yeelight version 1.0.0")
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
