package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	listJSON bool
	listLong bool
)

var listCmd = &cobra.Command{
	Use:   "list [folder]",
	Short: "List the notes of the vault or of one folder",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		folder := ""
		if len(args) == 1 {
			folder = args[0]
		}

		ctx := context.Background()
		svc := openVault()

		paths, err := svc.ListNotes(ctx, folder)
		if err != nil {
			fatal("Error listing notes", err)
		}

		if listJSON {
			printJSON(paths)
			return
		}

		if !listLong {
			for _, p := range paths {
				fmt.Println(p)
			}
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, p := range paths {
			note, err := svc.ReadNote(ctx, p)
			if err != nil || note == nil {
				fmt.Fprintf(w, "%s\t-\t-\t(unreadable)\n", p)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				p,
				humanize.Bytes(uint64(len(note.Content))),
				humanize.Time(note.ModifiedAt),
				note.Title,
			)
		}
		_ = w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "Show size, age and title")
}
