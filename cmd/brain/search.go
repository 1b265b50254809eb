package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLimit int
	searchJSON  bool
	suggestMax  int
)

var searchCmd = &cobra.Command{
	Use:   "search [terms...]",
	Short: "Full-text search across notes",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := strings.Join(args, " ")
		svc := openVault()

		results, err := svc.SearchNotes(context.Background(), query, searchLimit)
		if err != nil {
			fatal("Error searching notes", err)
		}

		if searchJSON {
			printJSON(results)
			return
		}

		if len(results) == 0 {
			fmt.Printf("No notes found matching: %s\n", query)
			return
		}
		fmt.Printf("Found %d notes matching '%s':\n", len(results), query)
		for i, r := range results {
			fmt.Printf("\n%d. %s (%s) %d%%\n", i+1, r.Note.Title, r.Note.Path, int(r.Score*100))
			for _, e := range r.Excerpts {
				fmt.Printf("   > %s\n", strings.TrimSpace(strings.ReplaceAll(e, "\n", " ")))
			}
		}
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [query]",
	Short: "Fuzzy-match note names",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openVault()

		names, err := svc.SuggestNotes(context.Background(), args[0], suggestMax)
		if err != nil {
			fatal("Error suggesting notes", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")

	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().IntVarP(&suggestMax, "limit", "n", 10, "Maximum number of suggestions")
}
