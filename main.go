// main.go
//
// Entry point for the Mastermind binary.
// Responsibilities:
//   - Load `.env` (development) and the environment configuration.
//   - Configure the global zerolog level.
//   - Dispatch to the `serve` (HTTP API) or `play` (terminal board) commands.

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/config"
)

var (
	cfg config.Config

	rootCmd = &cobra.Command{
		Use:           "mastermind",
		Short:         "Guess the four-color secret",
		Long:          `Mastermind serves the JSON game API (serve) or runs the board in the terminal (play).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
				zerolog.SetGlobalLevel(lvl)
			}
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, playCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		// play may have silenced the logger
		fmt.Fprintln(os.Stderr, "mastermind:", err)
		os.Exit(1)
	}
}
