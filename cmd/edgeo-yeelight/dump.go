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
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var (
	dumpFile       string
	dumpProperties []string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the full device state",
	Long: `Dump reads the device's property set and writes it out in one document.

This is useful for state capture, documentation, or debugging.

Examples:
  # Dump all tracked properties to stdout
  edgeo-yeelight dump -H 192.168.1.45

  # Dump to a JSON file
  edgeo-yeelight dump -H 192.168.1.45 -f state.json -o json

  # Dump specific properties
  edgeo-yeelight dump -H 192.168.1.45 --props power,bright,ct`,

	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpFile, "file", "f", "", "Output file (default: stdout)")
	dumpCmd.Flags().StringSliceVar(&dumpProperties, "props", nil, "Properties to read (default: all tracked)")
}

type DumpResult struct {
	Address    string            `json:"address"`
	Model      string            `json:"model,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Properties map[string]string `json:"properties"`
}

func runDump(cmd *cobra.Command, args []string) error {
	if err := requireHost(); err != nil {
		return err
	}

	client, err := createClient()
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout*2)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer client.Close()

	props, err := client.Properties(ctx, dumpProperties...)
	if err != nil {
		return fmt.Errorf("read properties: %w", err)
	}

	result := DumpResult{
		Address:    host,
		Model:      model,
		Timestamp:  time.Now(),
		Properties: props,
	}

	var out *os.File
	if dumpFile != "" {
		out, err = os.Create(dumpFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
	} else {
		out = os.Stdout
	}

	switch OutputFormat(outputFmt) {
	case FormatJSON:
		return outputDumpJSON(out, result)
	case FormatCSV:
		return outputDumpCSV(out, result)
	default:
		return outputDumpTable(out, result)
	}
}

func sortedPropNames(props map[string]string) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func outputDumpJSON(out *os.File, result DumpResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputDumpCSV(out *os.File, result DumpResult) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	writer.Write([]string{"property", "value"})
	for _, name := range sortedPropNames(result.Properties) {
		writer.Write([]string{name, result.Properties[name]})
	}

	return nil
}

func outputDumpTable(out *os.File, result DumpResult) error {
	fmt.Fprintf(out, "Device %s - %d properties\n", result.Address, len(result.Properties))
	if result.Model != "" {
		fmt.Fprintf(out, "Model: %s\n", result.Model)
	}
	fmt.Fprintf(out, "Timestamp: %s\n\n", result.Timestamp.Format(time.RFC3339))

	for _, name := range sortedPropNames(result.Properties) {
		fmt.Fprintf(out, "  %-20s: %s\n", name, result.Properties[name])
	}
	fmt.Fprintln(out)

	return nil
}
