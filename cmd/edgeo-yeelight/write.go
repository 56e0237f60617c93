package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var writeCmd = &cobra.Command{
	Use:   "write <field> <value>",
	Short: "Write a field value to a device",
	Long: `Write sets an abstract field through the state adapter. The value is
persisted locally first and then dispatched as a device command, so a device
failure leaves the local value in place for the next poll to reconcile.

Fields:
  state         0/1 main light power
  brightness    0-100
  color         hue (0-360), sent together with the saturation field
  saturation    0-100, sent together with the color field
  temp          color temperature in Kelvin (bounds depend on model)
  night_light   0/1 moonlight mode (night-light capable models)
  bg_power, bg_bright, bg_color, bg_saturation, bg_temp
                background channel variants (models that report them)

Examples:
  # Turn the light on
  edgeo-yeelight write -H 192.168.1.45 state 1

  # Set brightness to 80%
  edgeo-yeelight write -H 192.168.1.45 brightness 80

  # Warm white
  edgeo-yeelight write -H 192.168.1.45 temp 2700`,

	Args: cobra.ExactArgs(2),
	RunE: runWrite,
}

func runWrite(cmd *cobra.Command, args []string) error {
	if err := requireHost(); err != nil {
		return err
	}

	field := strings.ToLower(args[0])
	value := args[1]

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

	f := registry.FieldByName(field)
	if f == nil {
		available := make([]string, 0)
		for _, rf := range registry.Fields() {
			available = append(available, rf.Name())
		}
		return fmt.Errorf("unknown field %q (device exposes: %s)", field, strings.Join(available, ", "))
	}

	if err := a.SetValue(ctx, f.ID(), value, false); err != nil {
		return fmt.Errorf("write %s: %w", field, err)
	}

	fmt.Printf("Successfully wrote %s = %s\n", field, value)
	return nil
}
