package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	brain "github.com/jnalv414/my-second-brain"
	"github.com/jnalv414/my-second-brain/pkg/adapters/lifecycle"
	"github.com/jnalv414/my-second-brain/pkg/core"
)

var (
	watchDebounce time.Duration
	watchFolder   string
	watchTypes    []string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print note changes as they happen",
	Long: `Watch the vault and print one line per created, modified or deleted
note until interrupted.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		svc := openVault(brain.WithWatcher(true), brain.WithWatchDebounce(watchDebounce))
		events, err := svc.Watch(ctx)
		if err != nil {
			fatal("Error starting watcher", err)
		}

		types := make([]core.EventType, len(watchTypes))
		for i, t := range watchTypes {
			types[i] = core.EventType(t)
		}
		source := lifecycle.NewSource(events, lifecycle.WithFolder(watchFolder), lifecycle.WithEventTypes(types...))
		if err := source.Start(ctx); err != nil {
			fatal("Error starting watcher", err)
		}

		logger.Info("watching vault", "root", svc.Root())
		for event := range source.Events() {
			fmt.Printf("%s %s\n", time.Now().Format(time.TimeOnly), event)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 50*time.Millisecond, "Coalescing window per note")
	watchCmd.Flags().StringVar(&watchFolder, "folder", "", "Only report notes under this folder")
	watchCmd.Flags().StringSliceVar(&watchTypes, "type", nil, "Only report these change types (create, modify, delete)")
}
