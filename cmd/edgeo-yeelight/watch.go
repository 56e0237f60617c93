package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgeo/drivers/yeelight/adapter"
)

var (
	watchInterval time.Duration
	watchListen   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a device for state changes",
	Long: `Watch monitors a Yeelight device for state changes.

Two modes are available:
  - Polling: Periodically fetches the property set and reports field deltas.
    The device enforces a minimum poll spacing; shorter intervals are
    silently coalesced.
  - Listen: Prints unsolicited props notifications the device pushes when
    its state changes, regardless of what caused the change.

Examples:
  # Poll for field changes
  edgeo-yeelight watch -H 192.168.1.45

  # Poll every 10 seconds
  edgeo-yeelight watch -H 192.168.1.45 --interval 10s

  # Listen for pushed notifications
  edgeo-yeelight watch -H 192.168.1.45 --listen`,

	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", adapter.PollInterval, "Polling interval")
	watchCmd.Flags().BoolVar(&watchListen, "listen", false, "Print pushed notifications instead of polling")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireHost(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nStopping watch...")
		cancel()
	}()

	if watchListen {
		return runListenWatch(ctx)
	}
	return runPollingWatch(ctx)
}

func runPollingWatch(ctx context.Context) error {
	a, _, err := createAdapter()
	if err != nil {
		return fmt.Errorf("create adapter: %w", err)
	}
	defer a.Close()

	initCtx, initCancel := context.WithTimeout(ctx, timeout*4)
	err = a.Initialize(initCtx)
	initCancel()
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	fmt.Printf("Watching %s for field changes (interval %s)\n", host, watchInterval)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			pollCtx, pollCancel := context.WithTimeout(ctx, timeout)
			patch, err := a.Poll(pollCtx)
			pollCancel()

			if err != nil {
				fmt.Fprintf(os.Stderr, "[%s] Error: %v\n", time.Now().Format("15:04:05.000"), err)
				continue
			}
			if len(patch) == 0 {
				continue
			}
			outputPatch(time.Now(), patch)
		}
	}
}

func runListenWatch(ctx context.Context) error {
	client, err := createClient()
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer client.Close()

	fmt.Printf("Listening for notifications from %s\n", host)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	client.OnNotification(func(props map[string]string) {
		outputPatch(time.Now(), props)
	})

	<-ctx.Done()
	return nil
}

func outputPatch(t time.Time, changes map[string]string) {
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	switch OutputFormat(outputFmt) {
	case FormatJSON:
		fmt.Printf(`{"time": "%s", "changes": {`, t.Format(time.RFC3339Nano))
		for i, k := range keys {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Printf("%q: %q", k, changes[k])
		}
		fmt.Println("}}")
	case FormatCSV:
		for _, k := range keys {
			fmt.Printf("%s,%s,%s\n", t.Format(time.RFC3339Nano), k, changes[k])
		}
	default:
		for _, k := range keys {
			fmt.Printf("[%s] %s = %s\n", t.Format("15:04:05.000"), k, changes[k])
		}
	}
}
