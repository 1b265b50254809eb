package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jnalv414/my-second-brain/pkg/adapters/fs"
	"github.com/jnalv414/my-second-brain/pkg/core"
	"github.com/jnalv414/my-second-brain/pkg/vault"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vault state",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openVault()
		if statusJSON {
			printJSON(svc.State())
			return
		}

		ctx := context.Background()
		notes, err := svc.ListNotes(ctx, "")
		if err != nil {
			fatal("Error listing notes", err)
		}
		graph, err := svc.BuildGraph(ctx)
		if err != nil {
			fatal("Error building graph", err)
		}

		var links, orphans int
		for _, node := range graph.Nodes() {
			links += len(node.OutgoingLinks)
			if len(node.Backlinks) == 0 && len(node.OutgoingLinks) == 0 {
				orphans++
			}
		}

		fmt.Printf("Vault:   %s\n", svc.Root())
		fmt.Printf("Notes:   %s\n", humanize.Comma(int64(len(notes))))
		fmt.Printf("Links:   %s\n", humanize.Comma(int64(links)))
		fmt.Printf("Orphans: %s\n", humanize.Comma(int64(orphans)))
		state, _ := svc.State().(vault.ServiceState)
		if store, ok := state.Store.(core.StoreState); ok {
			fmt.Printf("Storage: %s\n", store.StorageType)
			fmt.Printf("Cache:   %t (%s entries)\n", store.CacheEnabled, humanize.Comma(int64(store.CacheSize)))
			if fsState, ok := store.Storage.(fs.StorageState); ok {
				fmt.Printf("Reads:   %s\n", humanize.Comma(fsState.Reads))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output introspection state as JSON")
}
