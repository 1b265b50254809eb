package main

import (
	"context"
	"fmt"
	"io"
	"os"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/spf13/cobra"

	brain "github.com/jnalv414/my-second-brain"
)

var (
	clipFile  string
	clipTitle string
	clipTags  []string
	clipURL   string
)

var clipCmd = &cobra.Command{
	Use:   "clip [path]",
	Short: "Save an HTML page as a Markdown note",
	Long: `Convert HTML from --file or standard input to Markdown and write it to
the note at path. --source records where the page came from.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		in := io.Reader(os.Stdin)
		if clipFile != "" {
			f, err := os.Open(clipFile)
			if err != nil {
				fatal("Error opening file", err)
			}
			defer f.Close()
			in = f
		}
		html, err := io.ReadAll(in)
		if err != nil {
			fatal("Error reading HTML", err)
		}

		content, err := md.NewConverter("", true, nil).ConvertString(string(html))
		if err != nil {
			fatal("Error converting HTML", err)
		}

		fields := map[string]any{}
		if clipTitle != "" {
			fields["title"] = clipTitle
		}
		if len(clipTags) > 0 {
			fields["tags"] = clipTags
		}
		if clipURL != "" {
			fields["source"] = clipURL
		}

		svc := openVault(brain.WithAutoInit(true))
		note, err := svc.WriteNote(context.Background(), args[0], content, fields)
		if err != nil {
			fatal("Error writing note", err)
		}
		fmt.Printf("Clipped to '%s'.\n", note.Path)
	},
}

func init() {
	rootCmd.AddCommand(clipCmd)
	clipCmd.Flags().StringVarP(&clipFile, "file", "f", "", "HTML file to convert (default stdin)")
	clipCmd.Flags().StringVar(&clipTitle, "title", "", "Note title")
	clipCmd.Flags().StringSliceVar(&clipTags, "tag", nil, "Tag to set (repeatable)")
	clipCmd.Flags().StringVar(&clipURL, "source", "", "URL the page came from")
}
