package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/services"
)

func newProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"p"},
		Short:   "Manage products",
		Long:    "List, add, search, modify, or delete products.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductsList(cmd, "", false)
		},
	}

	cmd.AddCommand(newProductsListCmd())
	cmd.AddCommand(newProductsAddCmd())
	cmd.AddCommand(newProductsSearchCmd())
	cmd.AddCommand(newProductsFindCmd())
	cmd.AddCommand(newProductsModifyCmd())
	cmd.AddCommand(newProductsDeleteCmd())

	return cmd
}

func newProductsListCmd() *cobra.Command {
	var (
		sortBy string
		desc   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all products",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductsList(cmd, sortBy, desc)
		},
	}

	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "Order by field")
	cmd.Flags().BoolVarP(&desc, "desc", "d", false, "Descending order")

	return cmd
}

func runProductsList(cmd *cobra.Command, sortBy string, desc bool) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		fields, err := d.Fields.HandleList(ctx)
		if err != nil {
			return err
		}
		products, err := d.Products.HandleList(ctx, sortBy, desc)
		if err != nil {
			return err
		}
		printProducts(cmd.OutOrStdout(), fields, products)
		return nil
	})
}

func newProductsAddCmd() *cobra.Command {
	var (
		set   []string
		match []string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "add --set field=value...",
		Short: "Add a product",
		Long: "Adds a product. Every field needs a value. If similar products exist " +
			"the product is not added unless --force is given; --match narrows the " +
			"similarity check to the given field=value pairs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseAssignments(set)
			if err != nil {
				return err
			}
			var criteria map[string]string
			if len(match) > 0 {
				if criteria, err = parseAssignments(match); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				p, err := d.Products.HandleAdd(ctx, data, criteria, force)
				if err != nil {
					explain(cmd.ErrOrStderr(), err)
					var dup *services.DuplicateError
					if errors.As(err, &dup) {
						return fmt.Errorf("%w (use --force to add it anyway)", err)
					}
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Product added:")
				printProduct(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Field value as field=value (repeatable)")
	cmd.Flags().StringArrayVar(&match, "match", nil, "Similarity criterion as field=value (repeatable)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Add even if similar products exist")

	return cmd
}

func newProductsSearchCmd() *cobra.Command {
	var match []string

	cmd := &cobra.Command{
		Use:   "search [field query]",
		Short: "Search products",
		Long: "Finds products whose field contains the query, ignoring case. " +
			"Use --match for several criteria at once; all must match.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected <field> <query> or --match")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := parseAssignments(match)
			if err != nil {
				return err
			}
			if len(args) == 2 {
				criteria[entities.NormalizeName(args[0])] = args[1]
			}
			if len(criteria) == 0 {
				return fmt.Errorf("expected <field> <query> or --match")
			}

			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				fields, err := d.Fields.HandleList(ctx)
				if err != nil {
					return err
				}
				products, err := d.Products.HandleSimilar(ctx, criteria)
				if err != nil {
					return err
				}
				printProducts(cmd.OutOrStdout(), fields, products)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&match, "match", nil, "Criterion as field=value (repeatable)")

	return cmd
}

func newProductsFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <unique-field> <value>",
		Short: "Find the product holding a value in a unique field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				p, err := d.Products.HandleFindUnique(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if p == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No product found.")
					return nil
				}
				printProduct(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
}

func newProductsModifyCmd() *cobra.Command {
	var (
		match []string
		set   []string
		pick  int
	)

	cmd := &cobra.Command{
		Use:   "modify --match field=value... --set field=value...",
		Short: "Modify a product",
		Long: "Modifies the product matching every --match criterion. When several " +
			"products match they are listed; rerun with --pick N to choose one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := parseAssignments(match)
			if err != nil {
				return err
			}
			changes, err := parseAssignments(set)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				p, err := d.Products.HandleModify(ctx, criteria, pick, changes)
				if err != nil {
					return ambiguityHint(cmd, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Product updated:")
				printProduct(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVarP(&match, "match", "m", nil, "Selection criterion as field=value (repeatable)")
	cmd.Flags().StringArrayVar(&set, "set", nil, "New value as field=value (repeatable)")
	cmd.Flags().IntVar(&pick, "pick", 0, "Choose the Nth matching product")

	return cmd
}

func newProductsDeleteCmd() *cobra.Command {
	var (
		match []string
		pick  int
		force bool
	)

	cmd := &cobra.Command{
		Use:   "delete --match field=value...",
		Short: "Delete a product",
		Long: "Moves the product matching every --match criterion to the recycle bin. " +
			"When several products match they are listed; rerun with --pick N.",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := parseAssignments(match)
			if err != nil {
				return err
			}
			if !force && !confirmAction(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete the matching product?") {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				p, err := d.Products.HandleDelete(ctx, criteria, pick)
				if err != nil {
					return ambiguityHint(cmd, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Product moved to the recycle bin:")
				printProduct(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVarP(&match, "match", "m", nil, "Selection criterion as field=value (repeatable)")
	cmd.Flags().IntVar(&pick, "pick", 0, "Choose the Nth matching product")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

// ambiguityHint explains err and, for ambiguous matches, suggests --pick.
func ambiguityHint(cmd *cobra.Command, err error) error {
	explain(cmd.ErrOrStderr(), err)
	var amb *services.AmbiguousMatchError
	if errors.As(err, &amb) {
		return fmt.Errorf("%w (rerun with --pick 1-%d)", err, len(amb.Candidates))
	}
	return err
}
