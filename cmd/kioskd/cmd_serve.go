package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/config"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/server"
	"github.com/jhedenpat/kapekiosk-v1-0/pkg/logging"
)

var serveAddr string

// serveCmd runs the kiosk session server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the kiosk server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		logging.Setup()
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := build(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		return server.Run(ctx, cfg.Addr, a.handler)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides KIOSK_ADDR)")
}
