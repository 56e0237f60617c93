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
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgeo/drivers/yeelight/adapter"
	"github.com/edgeo/drivers/yeelight/yeelight"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Start an interactive Yeelight session",
	Long: `Interactive mode provides a REPL for exploring a Yeelight device.

Commands:
  props                     - Read all device properties
  fields                    - List abstract fields and values
  get <field>               - Show one field value
  set <field> <value>       - Write a field
  on / off / toggle         - Main light power shortcuts
  poll                      - Force a synchronization poll
  metrics                   - Show client metrics
  help                      - Show help
  exit                      - Exit interactive mode

Examples:
  yeelight> props
  yeelight> set brightness 80
  yeelight> set temp 2700
  yeelight> toggle`,

	RunE: runInteractive,
}

func runInteractive(cmd *cobra.Command, args []string) error {
	if err := requireHost(); err != nil {
		return err
	}

	client, err := createClient()
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	registry := adapter.NewMemoryRegistry()
	a := adapter.New(registry,
		adapter.WithDevice(client),
		adapter.WithLogger(logger),
	)
	defer a.Close()

	ctx := context.Background()

	initCtx, initCancel := context.WithTimeout(ctx, timeout*4)
	err = a.Initialize(initCtx)
	initCancel()
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	fmt.Println("Yeelight Interactive Shell")
	fmt.Println("Type 'help' for available commands, 'exit' to quit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("yeelight[%s]> ", host)

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		command := strings.ToLower(parts[0])

		switch command {
		case "exit", "quit", "q":
			fmt.Println("Goodbye!")
			return nil

		case "help", "?":
			printInteractiveHelp()

		case "props":
			runInteractiveProps(ctx, client)

		case "fields":
			runInteractiveFields(registry)

		case "get":
			if len(parts) < 2 {
				fmt.Println("Usage: get <field>")
				continue
			}
			f := registry.FieldByName(strings.ToLower(parts[1]))
			if f == nil {
				fmt.Printf("Unknown field: %s\n", parts[1])
				continue
			}
			fmt.Printf("%s = %s\n", f.Name(), f.Value())

		case "set":
			if len(parts) < 3 {
				fmt.Println("Usage: set <field> <value>")
				continue
			}
			runInteractiveSet(ctx, a, registry, strings.ToLower(parts[1]), parts[2])

		case "on":
			runInteractiveSet(ctx, a, registry, adapter.FieldState, "1")

		case "off":
			runInteractiveSet(ctx, a, registry, adapter.FieldState, "0")

		case "toggle":
			runInteractiveToggle(ctx, a, registry)

		case "poll":
			runInteractivePoll(ctx, a)

		case "metrics":
			runInteractiveMetrics(client)

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", command)
		}
	}

	return nil
}

func printInteractiveHelp() {
	fmt.Print(`
Available commands:
  props                     Read all device properties
  fields                    List abstract fields and their values
  get <field>               Show one field value
  set <field> <value>       Write a field value
  on                        Turn the main light on
  off                       Turn the main light off
  toggle                    Toggle the main light
  poll                      Force a synchronization poll
  metrics                   Show client metrics
  help                      Show this help message
  exit                      Exit interactive mode

Field names:
  state, brightness, color, saturation, temp, night_light
  bg_power, bg_bright, bg_color, bg_saturation, bg_temp
`)
}

func runInteractiveProps(ctx context.Context, client *yeelight.Client) {
	readCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	props, err := client.Properties(readCtx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println()
	for _, name := range names {
		fmt.Printf("  %-20s: %s\n", name, props[name])
	}
	fmt.Println()
}

func runInteractiveFields(registry *adapter.MemoryRegistry) {
	fields := registry.Fields()
	if len(fields) == 0 {
		fmt.Println("No fields registered")
		return
	}

	fmt.Println()
	for _, f := range fields {
		spec := f.Spec()
		bounds := ""
		if spec.Low != "" || spec.High != "" {
			bounds = fmt.Sprintf(" [%s-%s]", spec.Low, spec.High)
		}
		fmt.Printf("  %-15s = %-6s (%s%s)\n", f.Name(), f.Value(), spec.Kind, bounds)
	}
	fmt.Println()
}

func runInteractiveSet(ctx context.Context, a *adapter.Adapter, registry *adapter.MemoryRegistry, field, value string) {
	f := registry.FieldByName(field)
	if f == nil {
		fmt.Printf("Unknown field: %s\n", field)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.SetValue(writeCtx, f.ID(), value, false); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("OK: %s = %s\n", field, value)
}

func runInteractiveToggle(ctx context.Context, a *adapter.Adapter, registry *adapter.MemoryRegistry) {
	f := registry.FieldByName(adapter.FieldState)
	if f == nil {
		fmt.Println("State field not available")
		return
	}

	next := "1"
	if f.Value() == "1" {
		next = "0"
	}
	runInteractiveSet(ctx, a, registry, adapter.FieldState, next)
}

func runInteractivePoll(ctx context.Context, a *adapter.Adapter) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	patch, err := a.Poll(pollCtx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if len(patch) == 0 {
		fmt.Println("No changes")
		return
	}
	for field, value := range patch {
		fmt.Printf("  %s -> %s\n", field, value)
	}
}

func runInteractiveMetrics(client *yeelight.Client) {
	m := client.Metrics().Snapshot()

	fmt.Println("\nClient Metrics:")
	fmt.Printf("  Uptime:               %s\n", m.Uptime.Round(time.Second))
	fmt.Printf("  Requests Sent:        %d\n", m.RequestsSent)
	fmt.Printf("  Requests Succeeded:   %d\n", m.RequestsSucceeded)
	fmt.Printf("  Requests Failed:      %d\n", m.RequestsFailed)
	fmt.Printf("  Requests Timed Out:   %d\n", m.RequestsTimedOut)
	fmt.Printf("  Notifications:        %d\n", m.NotificationsReceived)
	fmt.Printf("  Bytes Sent:           %d\n", m.BytesSent)
	fmt.Printf("  Bytes Received:       %d\n", m.BytesReceived)

	if m.LatencyStats.Count > 0 {
		fmt.Printf("  Avg Latency:          %s\n", m.LatencyStats.Avg.Round(time.Microsecond))
		fmt.Printf("  Min Latency:          %s\n", m.LatencyStats.Min.Round(time.Microsecond))
		fmt.Printf("  Max Latency:          %s\n", m.LatencyStats.Max.Round(time.Microsecond))
	}
	fmt.Println()
}
