package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arnvidr/lined/pkg/adapter"
	"github.com/arnvidr/lined/pkg/gateway"
	"github.com/arnvidr/lined/pkg/session"
)

var (
	serveHost   string
	servePort   int
	serveSecret string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve editing sessions over WebSocket",
	Long: `Serve editing sessions to remote agents over WebSocket.
Every connection gets its own independent session; frames are JSON objects
{"id", "command", "payload"} answered with {"id", "code", "output"}.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	serveCmd.Flags().StringVar(&serveSecret, "secret", "", "shared secret clients must present")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, closeLogger, err := setup()
	if err != nil {
		return err
	}
	defer closeLogger()

	applyFlagOverrides(cfg)
	if serveHost != "" {
		cfg.Gateway.Host = serveHost
	}
	if servePort > 0 {
		cfg.Gateway.Port = servePort
	}
	if serveSecret != "" {
		cfg.Gateway.SharedSecret = serveSecret
	}

	gate, err := buildGate(cfg)
	if err != nil {
		return err
	}

	server, err := gateway.NewServer(gateway.Config{
		Host:         cfg.Gateway.Host,
		Port:         cfg.Gateway.Port,
		SharedSecret: cfg.Gateway.SharedSecret,
		Session: session.Config{
			WindowSize: cfg.Editor.WindowSize,
			Overlap:    cfg.Editor.Overlap,
			Gate:       gate,
			WatchFile:  cfg.Editor.WatchFile,
		},
		Adapter: adapter.Config{Sentinels: cfg.Editor.Sentinels},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down gateway")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown incomplete: %w", err)
	}
	return nil
}
