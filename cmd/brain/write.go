package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	brain "github.com/jnalv414/my-second-brain"
)

var (
	writeContent string
	writeTitle   string
	writeTags    []string
)

var writeCmd = &cobra.Command{
	Use:   "write [path]",
	Short: "Create or replace a note",
	Long: `Create or replace the note at path. The body comes from --content or,
when that is empty, from standard input.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content := writeContent
		if content == "" && !isatty.IsTerminal(os.Stdin.Fd()) {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fatal("Error reading stdin", err)
			}
			content = string(data)
		}

		fields := map[string]any{}
		if writeTitle != "" {
			fields["title"] = writeTitle
		}
		if len(writeTags) > 0 {
			fields["tags"] = writeTags
		}

		svc := openVault(brain.WithAutoInit(true))
		note, err := svc.WriteNote(context.Background(), args[0], content, fields)
		if err != nil {
			fatal("Error writing note", err)
		}
		fmt.Printf("Note '%s' saved.\nTitle: %s\n", note.Path, note.Title)
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().StringVar(&writeContent, "content", "", "Note body")
	writeCmd.Flags().StringVar(&writeTitle, "title", "", "Note title (defaults to the filename)")
	writeCmd.Flags().StringSliceVar(&writeTags, "tag", nil, "Tag to set (repeatable)")
}
