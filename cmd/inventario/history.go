package main

import (
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		entity string
		action string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the change history",
		Long:  "Shows recorded changes, most recent last.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				events, err := d.History.HandleList(ctx, entity, action, limit)
				if err != nil {
					return err
				}
				printEvents(cmd.OutOrStdout(), events)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&entity, "entity", "e", "", "Filter by entity (producto, campo, campo_unico)")
	cmd.Flags().StringVarP(&action, "action", "a", "", "Filter by action (alta, modificacion, eliminacion, restauracion)")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultHistoryLimit, "Show only the N most recent events (0 for all)")

	return cmd
}
