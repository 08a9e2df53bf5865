package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sbertone/inventario/internal/application/handlers"
	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/services"
)

// errQuit ends the menu loop when input is exhausted.
var errQuit = errors.New("quit")

type menuOption struct {
	label string
	run   func(ctx context.Context) error
}

// menu is the interactive numbered menu. Errors from an option are printed
// and the loop continues.
type menu struct {
	in      *bufio.Reader
	out     io.Writer
	deps    *Deps
	options []menuOption
}

func runMenu(cmd *cobra.Command) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		return newMenu(cmd.InOrStdin(), cmd.OutOrStdout(), d).run(ctx)
	})
}

func newMenu(in io.Reader, out io.Writer, d *Deps) *menu {
	m := &menu{
		in:   bufio.NewReader(in),
		out:  out,
		deps: d,
	}
	m.options = []menuOption{
		{"Create field", m.createField},
		{"Modify field", m.modifyField},
		{"Delete field", m.deleteField},
		{"Add product", m.addProduct},
		{"Show inventory", m.showInventory},
		{"Modify product", m.modifyProduct},
		{"Delete product", m.deleteProduct},
		{"Search products", m.searchProducts},
		{"Recycle bin", m.recycleBin},
		{"History", m.showHistory},
	}
	return m
}

func (m *menu) run(ctx context.Context) error {
	fmt.Fprintln(m.out, "\nINVENTARIO")
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		m.printMenu()
		choice, err := m.prompt("Choose an option: ")
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}

		n, convErr := strconv.Atoi(choice)
		switch {
		case convErr != nil || n < 0 || n > len(m.options):
			fmt.Fprintln(m.out, "Invalid option, try again.")
			continue
		case n == 0:
			fmt.Fprintln(m.out, "Bye.")
			return nil
		}

		err = m.options[n-1].run(ctx)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			explain(m.out, err)
			fmt.Fprintf(m.out, "error: %v\n", err)
		}
	}
}

func (m *menu) printMenu() {
	fmt.Fprintln(m.out)
	for i, o := range m.options {
		fmt.Fprintf(m.out, "%2d. %s\n", i+1, o.label)
	}
	fmt.Fprintln(m.out, " 0. Exit")
	fmt.Fprintln(m.out)
}

// prompt reads one trimmed line. It returns errQuit at end of input.
func (m *menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	line, err := m.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return "", errQuit
		}
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading input: %w", err)
		}
	}
	return strings.TrimSpace(line), nil
}

func (m *menu) confirm(label string) (bool, error) {
	answer, err := m.prompt(label + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "s", "si", "sí":
		return true, nil
	default:
		return false, nil
	}
}

func (m *menu) createField(ctx context.Context) error {
	name, err := m.prompt("Field name: ")
	if err != nil {
		return err
	}
	for i, t := range entities.FieldTypes {
		fmt.Fprintf(m.out, "  %d. %s\n", i+1, t)
	}
	typeName, err := m.prompt("Type: ")
	if err != nil {
		return err
	}
	unique, err := m.confirm("Unique values only?")
	if err != nil {
		return err
	}
	if err := m.deps.Fields.HandleAdd(ctx, name, typeName, unique); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Field %q created.\n", entities.NormalizeName(name))
	return nil
}

func (m *menu) modifyField(ctx context.Context) error {
	fields, err := m.deps.Fields.HandleList(ctx)
	if err != nil {
		return err
	}
	printFields(m.out, fields)
	if len(fields) == 0 {
		return nil
	}

	current, err := m.prompt("Field to modify: ")
	if err != nil {
		return err
	}
	var upd handlers.FieldUpdate
	if upd.Name, err = m.prompt("New name (blank to keep): "); err != nil {
		return err
	}
	if upd.Type, err = m.prompt("New type (blank to keep): "); err != nil {
		return err
	}
	uniq, err := m.prompt("Unique? (y/n, blank to keep): ")
	if err != nil {
		return err
	}
	switch strings.ToLower(uniq) {
	case "y", "yes", "s", "si", "sí":
		t := true
		upd.Unique = &t
	case "n", "no":
		f := false
		upd.Unique = &f
	}

	if err := m.deps.Fields.HandleModify(ctx, current, upd); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Field updated.")
	return nil
}

func (m *menu) deleteField(ctx context.Context) error {
	name, err := m.prompt("Field to delete: ")
	if err != nil {
		return err
	}
	ok, err := m.confirm(fmt.Sprintf("Delete field %q?", name))
	if err != nil || !ok {
		return err
	}
	if err := m.deps.Fields.HandleDelete(ctx, name); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Field moved to the recycle bin.")
	return nil
}

// addProduct asks for every field, re-prompting until each value is valid.
func (m *menu) addProduct(ctx context.Context) error {
	fields, err := m.deps.Fields.HandleList(ctx)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		fmt.Fprintln(m.out, "Define at least one field first.")
		return nil
	}

	data := make(map[string]string, len(fields))
	for _, f := range fields {
		for {
			raw, err := m.prompt(fmt.Sprintf("%s (%s): ", f.Name, f.Type))
			if err != nil {
				return err
			}
			if _, ok := services.ParseValue(raw, f.Type); ok {
				data[f.Name] = raw
				break
			}
			fmt.Fprintf(m.out, "Invalid %s value, try again.\n", f.Type)
		}
	}

	p, err := m.deps.Products.HandleAdd(ctx, data, nil, false)
	var dup *services.DuplicateError
	if errors.As(err, &dup) {
		explain(m.out, err)
		ok, cerr := m.confirm("Add it anyway?")
		if cerr != nil || !ok {
			return cerr
		}
		p, err = m.deps.Products.HandleAdd(ctx, data, nil, true)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Product added:")
	printProduct(m.out, p)
	return nil
}

func (m *menu) showInventory(ctx context.Context) error {
	fields, err := m.deps.Fields.HandleList(ctx)
	if err != nil {
		return err
	}
	products, err := m.deps.Products.HandleList(ctx, "", false)
	if err != nil {
		return err
	}
	printProducts(m.out, fields, products)
	return nil
}

// selectProduct asks for a search and, when several products match, which
// one. It returns nil criteria when nothing matched.
func (m *menu) selectProduct(ctx context.Context) (map[string]string, int, entities.Product, error) {
	field, err := m.prompt("Search by field: ")
	if err != nil {
		return nil, 0, nil, err
	}
	query, err := m.prompt("Value contains: ")
	if err != nil {
		return nil, 0, nil, err
	}
	criteria := map[string]string{field: query}

	matches, err := m.deps.Products.HandleSimilar(ctx, criteria)
	if err != nil {
		return nil, 0, nil, err
	}
	switch len(matches) {
	case 0:
		fmt.Fprintln(m.out, "No products match.")
		return nil, 0, nil, nil
	case 1:
		printProduct(m.out, matches[0])
		return criteria, 0, matches[0], nil
	}

	for i, p := range matches {
		fmt.Fprintf(m.out, "%d.\n", i+1)
		printProduct(m.out, p)
	}
	for {
		raw, err := m.prompt(fmt.Sprintf("Which one (1-%d)? ", len(matches)))
		if err != nil {
			return nil, 0, nil, err
		}
		n, convErr := strconv.Atoi(raw)
		if convErr == nil && n >= 1 && n <= len(matches) {
			return criteria, n, matches[n-1], nil
		}
		fmt.Fprintln(m.out, "Invalid choice.")
	}
}

func (m *menu) modifyProduct(ctx context.Context) error {
	criteria, pick, _, err := m.selectProduct(ctx)
	if err != nil || criteria == nil {
		return err
	}

	changes := make(map[string]string)
	for {
		field, err := m.prompt("Field to change (blank to finish): ")
		if err != nil {
			return err
		}
		if field == "" {
			break
		}
		value, err := m.prompt("New value: ")
		if err != nil {
			return err
		}
		changes[field] = value
	}
	if len(changes) == 0 {
		fmt.Fprintln(m.out, "No changes.")
		return nil
	}

	p, err := m.deps.Products.HandleModify(ctx, criteria, pick, changes)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Product updated:")
	printProduct(m.out, p)
	return nil
}

func (m *menu) deleteProduct(ctx context.Context) error {
	criteria, pick, _, err := m.selectProduct(ctx)
	if err != nil || criteria == nil {
		return err
	}
	ok, err := m.confirm("Delete this product?")
	if err != nil || !ok {
		return err
	}
	if _, err := m.deps.Products.HandleDelete(ctx, criteria, pick); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Product moved to the recycle bin.")
	return nil
}

func (m *menu) searchProducts(ctx context.Context) error {
	field, err := m.prompt("Field: ")
	if err != nil {
		return err
	}
	query, err := m.prompt("Value contains: ")
	if err != nil {
		return err
	}
	fields, err := m.deps.Fields.HandleList(ctx)
	if err != nil {
		return err
	}
	products, err := m.deps.Products.HandleSearch(ctx, field, query)
	if err != nil {
		return err
	}
	printProducts(m.out, fields, products)
	return nil
}

func (m *menu) recycleBin(ctx context.Context) error {
	entries, err := m.deps.Bin.HandleList(ctx, "", false)
	if err != nil {
		return err
	}
	printBin(m.out, entries)
	if len(entries) == 0 {
		return nil
	}

	id, err := m.prompt("ID to restore (blank to go back): ")
	if err != nil || id == "" {
		return err
	}
	result, err := m.deps.Bin.HandleRestore(ctx, id)
	if err != nil {
		return err
	}
	printRestore(m.out, result)
	return nil
}

func (m *menu) showHistory(ctx context.Context) error {
	events, err := m.deps.History.HandleList(ctx, "", "", DefaultHistoryLimit)
	if err != nil {
		return err
	}
	printEvents(m.out, events)
	return nil
}
