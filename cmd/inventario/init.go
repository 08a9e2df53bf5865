package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sbertone/inventario/internal/application/handlers"
)

var initTTLDays int

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new inventory",
		Long: "Creates a .inventario directory with default configuration and the empty data documents.\n" +
			"The global --storage flag and --ttl-days are written into the new config.",
		RunE: runInit,
	}

	cmd.Flags().IntVar(&initTTLDays, "ttl-days", 0, "Days deleted records stay in the recycle bin (default 30)")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	base, err := basePath()
	if err != nil {
		return err
	}

	result, err := handlers.NewInitHandler(openStore).Handle(ctx, base, handlers.InitOptions{
		Backend: globalBackend,
		TTLDays: initTTLDays,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", result.ConfigPath)
	fmt.Fprintf(out, "Storage: %s in %s\n", result.Backend, result.DataDir)
	fmt.Fprintln(out, "Inventario initialized successfully!")

	return nil
}
