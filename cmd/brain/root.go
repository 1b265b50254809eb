package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	brain "github.com/jnalv414/my-second-brain"
	"github.com/jnalv414/my-second-brain/internal/config"
)

var (
	cfgFile   string
	vaultFlag string
	verbose   bool

	cfg    config.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "brain",
	Short: "A second-brain store for a vault of Markdown notes",
	Long: `brain reads, writes, links and searches the Markdown notes of an
Obsidian-style vault. Every path is kept inside the vault root.

The vault is taken from --vault, then from the nearest parent directory
holding .obsidian or .brain.yaml, then from vault_path in the config file
or BRAIN_VAULT_PATH.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if verbose {
			loaded.LogLevel = "debug"
		}
		cfg = loaded

		logger, err = cfg.NewLogger(os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is the user config dir)")
	rootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "Path to the vault")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// vaultPath picks the vault root: flag, marked parent directory, config.
func vaultPath() string {
	if vaultFlag != "" {
		return vaultFlag
	}
	if wd, err := os.Getwd(); err == nil {
		if root, err := brain.FindRoot(wd); err == nil {
			return root
		}
	}
	return cfg.VaultPath
}

// openVault opens the vault with the loaded config. The watcher is off
// unless a command asks for it.
func openVault(opts ...brain.Option) *brain.Service {
	base := []brain.Option{
		brain.WithLogger(logger),
		brain.WithExtension(cfg.Extension),
		brain.WithHiddenPrefix(cfg.HiddenPrefix),
		brain.WithCache(cfg.Cache),
		brain.WithDefaultMaxResults(cfg.DefaultMaxResults),
		brain.WithWatcher(false),
	}
	svc, err := brain.New(vaultPath(), append(base, opts...)...)
	if err != nil {
		fatal("Error initializing vault", err)
	}
	return svc
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
