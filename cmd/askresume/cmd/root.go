// Package cmd provides the CLI commands for askresume.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/askresume/askresume/internal/config"
	"github.com/askresume/askresume/pkg/version"
)

var (
	cfgFile   string
	debugMode bool
)

// NewRootCmd creates the root command for the askresume CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "askresume",
		Short: "Résumé Q&A service backed by TF-IDF retrieval",
		Long: `askresume answers natural-language questions against a résumé by
ranking pre-split passages with term-weighted cosine similarity.

Run 'askresume serve' to start the HTTP API, or 'askresume ask' for a
one-shot query from the terminal.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to YAML config file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command with signal-aware cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// loadConfig resolves the effective configuration for a command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if debugMode {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}
