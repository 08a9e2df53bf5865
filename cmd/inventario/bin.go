package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bin",
		Short: "Manage the recycle bin",
		Long:  "Deleted products and fields stay in the recycle bin until they expire.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBinList(cmd, "", false)
		},
	}

	cmd.AddCommand(newBinListCmd())
	cmd.AddCommand(newBinShowCmd())
	cmd.AddCommand(newBinRestoreCmd())
	cmd.AddCommand(newBinPurgeCmd())

	return cmd
}

func newBinListCmd() *cobra.Command {
	var (
		entity string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recycle bin entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBinList(cmd, entity, all)
		},
	}

	cmd.Flags().StringVarP(&entity, "entity", "e", "", "Filter by entity (producto, campo)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include expired entries")

	return cmd
}

func runBinList(cmd *cobra.Command, entity string, all bool) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		entries, err := d.Bin.HandleList(ctx, entity, all)
		if err != nil {
			return err
		}
		printBin(cmd.OutOrStdout(), entries)
		return nil
	})
}

func newBinShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recycle bin entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				entry, err := d.Bin.HandleGet(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:       %s\n", entry.ID)
				fmt.Fprintf(out, "Entity:   %s\n", entry.Entity)
				fmt.Fprintf(out, "Reason:   %s\n", entry.Reason)
				fmt.Fprintf(out, "Deleted:  %s\n", entry.DeletedAt.Local().Format("02/01/2006 15:04"))
				fmt.Fprintf(out, "Expires:  %s\n", entry.ExpiresAt.Local().Format("02/01/2006 15:04"))
				fmt.Fprintf(out, "Record:   %s\n", summarizeEntry(entry))
				return nil
			})
		},
	}
}

func newBinRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a product or field from the recycle bin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				result, err := d.Bin.HandleRestore(ctx, args[0])
				if err != nil {
					explain(cmd.ErrOrStderr(), err)
					return err
				}
				printRestore(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
}

func newBinPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove expired entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				n, err := d.Bin.HandlePurge(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired entries.\n", n)
				return nil
			})
		},
	}
}
