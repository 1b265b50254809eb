package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	brain "github.com/jnalv414/my-second-brain"
)

var (
	benchCount int
	benchKeep  bool
)

var benchCmd = &cobra.Command{
	Use:    "bench",
	Short:  "Measure scan, search and graph throughput on a generated vault",
	Hidden: true,
	Args:   cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		benchDir, err := os.MkdirTemp("", "brain_bench_")
		if err != nil {
			fatal("Error creating bench dir", err)
		}
		defer func() {
			if benchKeep {
				fmt.Printf("Keeping bench dir: %s\n", benchDir)
				return
			}
			os.RemoveAll(benchDir)
		}()

		fmt.Printf("Generating %s notes in %s...\n", humanize.Comma(int64(benchCount)), benchDir)
		start := time.Now()
		for i := 0; i < benchCount; i++ {
			content := fmt.Sprintf("---\ntitle: Note %d\ntags: [benchmark]\n---\n# Note %d\nLinks to [[note_%d]] and [[note_%d]].\n",
				i, i, (i+1)%benchCount, (i*7)%benchCount)
			name := filepath.Join(benchDir, fmt.Sprintf("note_%d.md", i))
			if err := os.WriteFile(name, []byte(content), 0644); err != nil {
				fatal("Error generating notes", err)
			}
		}
		fmt.Printf("Generation took: %v\n", time.Since(start))

		svc, err := brain.New(benchDir, brain.WithLogger(logger), brain.WithWatcher(false), brain.WithCache(true))
		if err != nil {
			fatal("Error initializing vault", err)
		}
		ctx := context.Background()

		measure := func(label string, fn func() error) {
			start := time.Now()
			if err := fn(); err != nil {
				fatal("Error running "+label, err)
			}
			fmt.Printf("  %-14s %v\n", label, time.Since(start))
		}

		fmt.Println("--------------------------------------------------")
		measure("search (cold)", func() error {
			_, err := svc.SearchNotes(ctx, "note links", 10)
			return err
		})
		measure("search (warm)", func() error {
			_, err := svc.SearchNotes(ctx, "note links", 10)
			return err
		})
		measure("graph", func() error {
			_, err := svc.BuildGraph(ctx)
			return err
		})
		measure("backlinks", func() error {
			_, err := svc.GetBacklinks(ctx, "note_0")
			return err
		})
		fmt.Println("--------------------------------------------------")
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().IntVar(&benchCount, "count", 1000, "Number of notes to generate")
	benchCmd.Flags().BoolVar(&benchKeep, "keep", false, "Keep the generated vault")
}
