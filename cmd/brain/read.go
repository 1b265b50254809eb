package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var readJSON bool

var readCmd = &cobra.Command{
	Use:   "read [path]",
	Short: "Read a note",
	Long:  `Read a note by its vault-relative path. Outputs the body by default, or the whole note with its metadata with --json.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openVault()

		note, err := svc.ReadNote(context.Background(), args[0])
		if err != nil {
			fatal("Error reading note", err)
		}
		if note == nil {
			fmt.Fprintf(os.Stderr, "Note not found: %s\n", args[0])
			os.Exit(1)
		}

		if readJSON {
			printJSON(note)
			return
		}
		fmt.Print(note.Content)
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Output in JSON format")
}
