// Package cli holds the forum command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/modernforum/forum/internal/pkg/config"
	"github.com/modernforum/forum/pkg/logger"
)

const serviceName = "forum"

var (
	envFile string
	cfg     *config.Config
	log     zerolog.Logger
)

// rootCmd serves the forum when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "forum",
	Short: "Modern Forum - threads, replies and live updates",
	Long: `Modern Forum is a small multi-user discussion board.

Signed-in users start threads and reply to them. Everyone viewing a thread
receives new replies live over a WebSocket connection.

Configuration comes from the environment; a .env file is read first when present.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var dotenv []string
		if envFile != "" {
			dotenv = append(dotenv, envFile)
		}

		var err error
		cfg, err = config.Load(cmd.Context(), dotenv...)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log = logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Pretty:  cfg.IsDevelopment(),
			Service: serviceName,
		})
		return nil
	},
	RunE: runServe,
}

// Execute runs the command tree until ctx is cancelled or the command returns.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before the environment (default .env)")
}
