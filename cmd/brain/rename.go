package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename [from] [to]",
	Short: "Move a note and update links to it",
	Long: `Move a note to a new path. Wikilinks in other notes that named the old
file are rewritten to the new name, keeping their heading and alias.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openVault()

		moved, rewritten, err := svc.RenameNote(context.Background(), args[0], args[1])
		if err != nil {
			fatal("Error renaming note", err)
		}
		if moved == nil {
			fmt.Fprintf(os.Stderr, "Note not found: %s\n", args[0])
			os.Exit(1)
		}
		fmt.Printf("Note '%s' moved to '%s' (%d notes updated).\n", args[0], moved.Path, rewritten)
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
