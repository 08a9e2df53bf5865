// Package main provides the entry point for the inventario CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version       = "0.1.0-dev"
	globalDir     string
	globalDataDir string
	globalBackend string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A missing .env is fine; the environment and config file still apply.
	_ = godotenv.Load()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:   "inventario",
		Short: "A command-line inventory with user-defined fields",
		Long: "Manages products whose fields you define yourself. Run without a command " +
			"for the interactive menu.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&globalDir, "dir", "C", "", "Workspace directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&globalDataDir, "data-dir", "", "Override the data directory")
	rootCmd.PersistentFlags().StringVar(&globalBackend, "storage", "", "Override the storage backend (json, sqlite)")

	rootCmd.AddCommand(
		newInitCmd(),
		newFieldsCmd(),
		newProductsCmd(),
		newBinCmd(),
		newHistoryCmd(),
		newExportCmd(),
		newImportCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
