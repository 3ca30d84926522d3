package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alphabot-ai/slashboard/internal/config"
	"github.com/alphabot-ai/slashboard/internal/logging"
)

var (
	configPath string
	serverURL  string

	cfg    config.Config
	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:           "slashboard",
		Short:         "Threaded discussion boards: server and terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if serverURL != "" {
				cfg.Client.BaseURL = serverURL
			}
			logger = logging.New(cfg.Log, os.Stderr)
			slog.SetDefault(logger)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("SLASHBOARD_CONFIG"), "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "", "server base URL for client commands")

	rootCmd.AddCommand(serveCmd, seedCmd, readCmd, threadCmd)
	rootCmd.AddCommand(registerCmd, loginCmd, postCmd, commentCmd, voteCmd, deleteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
