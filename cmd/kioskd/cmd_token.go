package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/auth"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/config"
)

var tokenTerminal string

// tokenCmd issues a terminal token.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a token for a kiosk terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if cfg.Auth.Secret == "" {
			return errNoSecret
		}
		terminal := tokenTerminal
		if terminal == "" {
			terminal = cfg.TerminalID
		}

		token, err := auth.NewJWTManager(cfg.Auth.Secret, cfg.Auth.TokenTTL).Generate(terminal)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenTerminal, "terminal", "", "terminal id (default: TERMINAL_ID)")
}
