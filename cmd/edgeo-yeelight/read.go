package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read [property...]",
	Short: "Read properties from a device",
	Long: `Read retrieves raw property values from a Yeelight device in a single
get_prop call. Without arguments it requests the full tracked set.

Common properties:
  power        "on" or "off"
  bright       main light brightness (1-100)
  ct           color temperature in Kelvin
  hue, sat     HSV color
  active_mode  "1" while in moonlight mode
  nl_br        night light brightness
  bg_*         background channel variants

Examples:
  # Read all tracked properties
  edgeo-yeelight read -H 192.168.1.45

  # Read specific properties
  edgeo-yeelight read -H 192.168.1.45 power bright ct

  # JSON output
  edgeo-yeelight read -H 192.168.1.45 -o json`,

	RunE: runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
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

	props, err := client.Properties(ctx, args...)
	if err != nil {
		return fmt.Errorf("read properties: %w", err)
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	f := NewFormatter(outputFmt)
	switch OutputFormat(outputFmt) {
	case FormatJSON:
		return f.PrintJSON(props)
	case FormatCSV:
		for _, name := range names {
			f.Printf("%s,%s\n", name, props[name])
		}
	case FormatRaw:
		values := make([]string, 0, len(names))
		for _, name := range names {
			values = append(values, props[name])
		}
		f.Println(strings.Join(values, " "))
	default:
		rows := make([][]string, 0, len(names))
		for _, name := range names {
			rows = append(rows, []string{name, props[name]})
		}
		f.PrintTable([]string{"PROPERTY", "VALUE"}, rows)
	}

	return nil
}
