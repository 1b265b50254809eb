package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jnalv414/my-second-brain/pkg/core"
)

const (
	formatText = "text"
	formatJSON = "json"
)

var linkFormat string

var backlinksCmd = &cobra.Command{
	Use:   "backlinks [name]",
	Short: "Show the notes linking to a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openVault()
		refs, err := svc.GetBacklinks(context.Background(), args[0])
		if err != nil {
			fatal("Error finding backlinks", err)
		}
		printRefs("Backlinks", args[0], refs)
	},
}

var outgoingCmd = &cobra.Command{
	Use:   "outgoing [path]",
	Short: "Show the existing notes a note links to",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openVault()
		refs, err := svc.GetOutgoingLinks(context.Background(), args[0])
		if err != nil {
			fatal("Error finding outgoing links", err)
		}
		printRefs("Outgoing links", args[0], refs)
	},
}

var linksCmd = &cobra.Command{
	Use:   "links [path]",
	Short: "Parse the wikilinks of a note, or of standard input",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openVault()

		var content string
		if len(args) == 1 {
			note, err := svc.ReadNote(context.Background(), args[0])
			if err != nil {
				fatal("Error reading note", err)
			}
			if note == nil {
				fmt.Fprintf(os.Stderr, "Note not found: %s\n", args[0])
				os.Exit(1)
			}
			content = note.Content
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fatal("Error reading stdin", err)
			}
			content = string(data)
		}

		found := svc.ExtractLinks(content)
		if linkFormat == formatJSON {
			printJSON(found)
			return
		}
		for _, l := range found {
			line := l.Target
			if l.Heading != "" {
				line += " #" + l.Heading
			}
			if l.Alias != "" {
				line += " (" + l.Alias + ")"
			}
			fmt.Println(line)
		}
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Scan the whole vault and print its link graph",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openVault()
		graph, err := svc.BuildGraph(context.Background())
		if err != nil {
			fatal("Error building graph", err)
		}

		if linkFormat == formatJSON {
			printJSON(graph)
			return
		}

		fmt.Printf("Found %d notes in vault\n", graph.Len())
		for _, node := range graph.Nodes() {
			fmt.Printf("\n%s\n", node.Name)
			fmt.Printf("  Path: %s\n", node.Path)
			fmt.Printf("  Outgoing: %d links\n", len(node.OutgoingLinks))
			fmt.Printf("  Backlinks: %d links\n", len(node.Backlinks))
		}
	},
}

func printRefs(kind, subject string, refs []core.NoteRef) {
	if linkFormat == formatJSON {
		printJSON(refs)
		return
	}
	fmt.Printf("%s for '%s': %d\n", kind, subject, len(refs))
	for _, ref := range refs {
		fmt.Printf("  - %s (%s)\n", ref.Name, ref.Path)
	}
}

func init() {
	for _, cmd := range []*cobra.Command{backlinksCmd, outgoingCmd, linksCmd, graphCmd} {
		rootCmd.AddCommand(cmd)
		cmd.Flags().StringVar(&linkFormat, "format", formatText, "Output format (text, json)")
	}
}
