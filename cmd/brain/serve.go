package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	brain "github.com/jnalv414/my-second-brain"
	"github.com/jnalv414/my-second-brain/internal/api"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the vault over HTTP",
	Long: `Serve the vault as a JSON API under /api/v1, plus a websocket stream
of note changes at /api/v1/events.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("host") {
			cfg.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		ctx, cancel := signalContext()
		defer cancel()

		svc := openVault(brain.WithWatcher(true), brain.WithWatchDebounce(50*time.Millisecond))
		server := api.NewServer(api.Config{
			Service:     svc,
			Logger:      logger,
			CORSOrigins: cfg.CORSOrigins,
			Version:     brain.Version,
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.Addr())
		}()
		fmt.Printf("Serving %s on http://%s/api/v1\n", svc.Root(), cfg.Addr())

		select {
		case err := <-errCh:
			if err != nil {
				fatal("Error serving vault", err)
			}
		case <-ctx.Done():
			if err := server.Stop(); err != nil {
				fatal("Error stopping server", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (default from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (default from config)")
}
