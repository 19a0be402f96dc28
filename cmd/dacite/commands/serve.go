package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dacite-io/dacite/config"
	"github.com/dacite-io/dacite/logger"
	"github.com/dacite-io/dacite/server"
	"github.com/dacite-io/dacite/store"
)

// ServeCmd starts the blob and sync server.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the blob and sync server",
	Long: `Serve the local blob store over HTTP:

  GET  /blob/{hex}  fetch a node by content address
  PUT  /blob/{hex}  publish a node (verified against its address)
  GET  /root        the advertised root address
  GET  /sync        WebSocket peer reconciliation
  GET  /health      liveness probe
  GET  /version     build information

The config is read once at startup; the config file is not watched, so
changes (including rate limits) take effect on the next start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.Database.Path, logger.Logger)
		if err != nil {
			return err
		}
		defer st.Close()

		srv := server.New(server.Config{
			Addr:      cfg.Server.Addr,
			NodeName:  cfg.Sync.Name,
			RateLimit: cfg.Server.RateLimit,
			RateBurst: cfg.Server.RateBurst,
		}, st, logger.ComponentLogger("server"))

		if rootHex, _ := cmd.Flags().GetString("root"); rootHex != "" {
			root, err := parseRoot(rootHex)
			if err != nil {
				return err
			}
			srv.SetRoot(root)
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		pterm.Info.Printf("Serving blobs on %s (db: %s)\n", cfg.Server.Addr, cfg.Database.Path)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-sigCh:
			pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- srv.Shutdown(shutdownCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				return err
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigCh:
			pterm.Warning.Println("\nForce shutdown - exiting immediately")
			return nil
		}
	},
}

func init() {
	ServeCmd.Flags().String("root", "", "Root address (hex) to advertise to sync peers")
}
