package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/example/safecase/internal/config"
	"github.com/example/safecase/internal/wire"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the checklist HTTP API",
		Long: `Serve the checklist HTTP API under /api/v1. Callers identify themselves
with the X-Facility-ID and X-Actor-ID headers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = session.ListenAddr
			}
			if addr == "" {
				addr = config.DefaultListenAddr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           wire.Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				glog.Infof("HTTP server listening on %s", addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				return err
			case <-ctx.Done():
			}

			glog.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				glog.Errorf("HTTP server shutdown error: %v", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from config, then :8080)")
	return cmd
}
