package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display device information",
	Long: `Info connects to a device, discovers its capabilities and shows the
abstract fields it exposes along with their current values.

Examples:
  # Get device info
  edgeo-yeelight info -H 192.168.1.45

  # Include the capability table lookup for a known model
  edgeo-yeelight info -H 192.168.1.45 -m ceiling4

  # JSON output
  edgeo-yeelight info -H 192.168.1.45 -o json`,

	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	if err := requireHost(); err != nil {
		return err
	}

	a, registry, err := createAdapter()
	if err != nil {
		return fmt.Errorf("create adapter: %w", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout*4)
	defer cancel()

	if err := a.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	capability := a.Capability()

	type fieldInfo struct {
		Name  string `json:"name"`
		Kind  string `json:"kind"`
		Low   string `json:"low,omitempty"`
		High  string `json:"high,omitempty"`
		Value string `json:"value"`
	}
	fields := make([]fieldInfo, 0)
	for _, f := range registry.Fields() {
		spec := f.Spec()
		fields = append(fields, fieldInfo{
			Name:  spec.Name,
			Kind:  spec.Kind.String(),
			Low:   spec.Low,
			High:  spec.High,
			Value: f.Value(),
		})
	}

	if OutputFormat(outputFmt) == FormatJSON {
		return NewFormatter(outputFmt).PrintJSON(map[string]interface{}{
			"address":           host,
			"timestamp":         time.Now().Format(time.RFC3339),
			"model":             capability.Model,
			"capability_origin": capability.Origin.String(),
			"color_temp_min":    capability.ColorTempMin,
			"color_temp_max":    capability.ColorTempMax,
			"night_light":       capability.NightLight,
			"color":             capability.Color,
			"background":        capability.Background,
			"fields":            fields,
		})
	}

	f := NewFormatter(outputFmt)
	f.Printf("\n=== Device %s ===\n\n", host)
	f.PrintKeyValue(map[string]string{
		"Model":             capability.Model,
		"Capability Origin": capability.Origin.String(),
		"Color Temp Range":  fmt.Sprintf("%d-%dK", capability.ColorTempMin, capability.ColorTempMax),
		"Night Light":       fmt.Sprintf("%v", capability.NightLight),
		"Color":             fmt.Sprintf("%v", capability.Color),
		"Background":        fmt.Sprintf("%v", capability.Background),
	}, []string{"Model", "Capability Origin", "Color Temp Range", "Night Light", "Color", "Background"})

	f.Println()
	rows := make([][]string, 0, len(fields))
	for _, fi := range fields {
		bounds := ""
		if fi.Low != "" || fi.High != "" {
			bounds = fmt.Sprintf("%s-%s", fi.Low, fi.High)
		}
		rows = append(rows, []string{fi.Name, fi.Kind, bounds, fi.Value})
	}
	f.PrintTable([]string{"FIELD", "KIND", "BOUNDS", "VALUE"}, rows)
	f.Println()

	return nil
}
