package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sbertone/inventario/internal/application/handlers"
	"github.com/sbertone/inventario/internal/domain/entities"
)

func newFieldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Manage the product fields",
		Long:  "List, add, modify, or delete the fields every product has.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFieldsList(cmd)
		},
	}

	cmd.AddCommand(newFieldsListCmd())
	cmd.AddCommand(newFieldsAddCmd())
	cmd.AddCommand(newFieldsModifyCmd())
	cmd.AddCommand(newFieldsDeleteCmd())
	cmd.AddCommand(newFieldsUniqueCmd())
	cmd.AddCommand(newFieldsUnuniqueCmd())

	return cmd
}

func newFieldsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFieldsList(cmd)
		},
	}
}

func runFieldsList(cmd *cobra.Command) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		fields, err := d.Fields.HandleList(ctx)
		if err != nil {
			return err
		}
		printFields(cmd.OutOrStdout(), fields)
		return nil
	})
}

func fieldTypeList() string {
	names := make([]string, 0, len(entities.FieldTypes))
	for _, t := range entities.FieldTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func newFieldsAddCmd() *cobra.Command {
	var unique bool

	cmd := &cobra.Command{
		Use:   "add <name> <type>",
		Short: "Add a field",
		Long:  "Adds a field to the schema. Types: " + fieldTypeList() + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				if err := d.Fields.HandleAdd(ctx, args[0], args[1], unique); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Field %q added.\n", entities.NormalizeName(args[0]))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&unique, "unique", "u", false, "Values must be distinct across products")

	return cmd
}

func newFieldsModifyCmd() *cobra.Command {
	var (
		name     string
		typeName string
		unique   bool
		noUnique bool
	)

	cmd := &cobra.Command{
		Use:   "modify <field>",
		Short: "Rename, retype, or toggle uniqueness of a field",
		Long: "Modifies a field. Retyping converts every stored value and fails " +
			"without changes if any value cannot be converted.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if unique && noUnique {
				return fmt.Errorf("--unique and --no-unique are mutually exclusive")
			}
			upd := handlers.FieldUpdate{Name: name, Type: typeName}
			switch {
			case unique:
				upd.Unique = &unique
			case noUnique:
				f := false
				upd.Unique = &f
			}
			if upd.Name == "" && upd.Type == "" && upd.Unique == nil {
				return fmt.Errorf("nothing to change: use --name, --type, --unique or --no-unique")
			}

			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				if err := d.Fields.HandleModify(ctx, args[0], upd); err != nil {
					explain(cmd.ErrOrStderr(), err)
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Field updated.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New field name")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "New field type ("+fieldTypeList()+")")
	cmd.Flags().BoolVar(&unique, "unique", false, "Mark the field unique")
	cmd.Flags().BoolVar(&noUnique, "no-unique", false, "Clear the unique flag")

	return cmd
}

func newFieldsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <field>",
		Short: "Delete a field",
		Long:  "Deletes a field. Its values are archived and the field can be restored from the recycle bin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirmAction(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete field %q?", args[0])) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				if err := d.Fields.HandleDelete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Field %q moved to the recycle bin.\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func newFieldsUniqueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unique [field]",
		Short: "Mark a field unique, or list unique fields",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				if len(args) == 0 {
					names, err := d.Fields.HandleListUnique(ctx)
					if err != nil {
						return err
					}
					if len(names) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "No unique fields.")
						return nil
					}
					for _, n := range names {
						fmt.Fprintln(cmd.OutOrStdout(), n)
					}
					return nil
				}
				if err := d.Fields.HandleMarkUnique(ctx, args[0]); err != nil {
					explain(cmd.ErrOrStderr(), err)
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Field %q is now unique.\n", args[0])
				return nil
			})
		},
	}
}

func newFieldsUnuniqueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ununique <field>",
		Short: "Clear the unique flag of a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				if err := d.Fields.HandleUnmarkUnique(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Field %q is no longer unique.\n", args[0])
				return nil
			})
		},
	}
}
