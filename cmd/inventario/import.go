package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sbertone/inventario/internal/application/handlers"
)

type importFlags struct {
	format string
	dryRun bool
	force  bool
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Import products from JSON or CSV",
		Long: "Imports products from a structured file, or from standard input when the " +
			"file is \"-\" (requires --format). CSV headers and JSON keys must be field " +
			"names; CSV may use \",\" or \";\" as separator. Rows similar to existing " +
			"products are skipped unless --force.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Import rows similar to existing products")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	return withDeps(ctx, func(d *Deps) error {
		opts := handlers.ImportOptions{
			Format: flags.format,
			DryRun: flags.dryRun,
			Force:  flags.force,
		}

		if filePath != handlers.StdinSource {
			fmt.Fprintf(out, "Importing %s...\n", filePath)
		}

		result, err := d.Import.Handle(ctx, filePath, opts)
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		if len(result.Errors) > 0 {
			fmt.Fprintf(out, "\nValidation errors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  %s\n", e.Error())
			}
		}

		fmt.Fprintln(out)
		if flags.dryRun {
			fmt.Fprintf(out, "Dry run: %d products would be imported", result.Imported)
		} else {
			fmt.Fprintf(out, "Imported: %d products", result.Imported)
		}

		if result.Skipped > 0 {
			fmt.Fprintf(out, ", %d skipped (similar products exist)", result.Skipped)
		}

		if len(result.Errors) > 0 {
			fmt.Fprintf(out, ", %d errors", len(result.Errors))
		}

		fmt.Fprintln(out)

		return nil
	})
}
