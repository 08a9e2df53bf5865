package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sbertone/inventario/internal/domain/entities"
)

type exportFlags struct {
	format string
	output string
	sortBy string
	desc   bool
}

type exporter struct {
	format string
	output string
	stdout io.Writer
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export products to file",
		Long:  "Exports products to JSON, CSV, or markdown format. CSV and JSON output can be imported back.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&flags.sortBy, "sort", "s", "", "Order by field")
	cmd.Flags().BoolVarP(&flags.desc, "desc", "d", false, "Descending order")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		fields, err := d.Fields.HandleList(ctx)
		if err != nil {
			return err
		}
		products, err := d.Products.HandleList(ctx, flags.sortBy, flags.desc)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			return fmt.Errorf("no products found to export")
		}

		e := &exporter{
			format: flags.format,
			output: flags.output,
			stdout: cmd.OutOrStdout(),
		}
		return e.export(fields, products)
	})
}

func (e *exporter) export(fields []entities.FieldInfo, products []entities.Product) (err error) {
	var w io.Writer

	if e.output != "" {
		f, err := os.OpenFile(e.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	} else {
		w = e.stdout
	}

	if err := e.formatProducts(w, fields, products); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if e.output != "" {
		fmt.Fprintf(e.stdout, "Exported %d products to %s\n", len(products), e.output)
	}

	return nil
}

func (e *exporter) formatProducts(w io.Writer, fields []entities.FieldInfo, products []entities.Product) error {
	switch e.format {
	case "json":
		return formatJSON(w, fields, products)
	case "csv":
		return formatCSV(w, fields, products)
	case "markdown":
		return formatMarkdown(w, fields, products)
	default:
		return fmt.Errorf("unknown format: %s", e.format)
	}
}

// formatJSON writes the visible field values only; archived values of deleted
// fields stay in the store.
func formatJSON(w io.Writer, fields []entities.FieldInfo, products []entities.Product) error {
	out := make([]map[string]any, 0, len(products))
	for _, p := range products {
		row := make(map[string]any, len(fields))
		for _, f := range fields {
			if v, ok := p[f.Name]; ok {
				row[f.Name] = v
			}
		}
		out = append(out, row)
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func formatCSV(w io.Writer, fields []entities.FieldInfo, products []entities.Product) error {
	writer := csv.NewWriter(w)

	header := make([]string, 0, len(fields))
	for _, f := range fields {
		header = append(header, f.Name)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, p := range products {
		row := make([]string, 0, len(fields))
		for _, f := range fields {
			row = append(row, entities.FormatValue(p[f.Name]))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatMarkdown(w io.Writer, fields []entities.FieldInfo, products []entities.Product) error {
	if _, err := fmt.Fprintf(w, "# Inventario\n\nTotal: %d products\n\n", len(products)); err != nil {
		return err
	}

	header := make([]string, 0, len(fields))
	rule := make([]string, 0, len(fields))
	for _, f := range fields {
		header = append(header, escapeMarkdown(f.Name))
		rule = append(rule, strings.Repeat("-", max(3, len([]rune(f.Name)))))
	}
	if _, err := fmt.Fprintf(w, "| %s |\n|%s|\n", strings.Join(header, " | "), "-"+strings.Join(rule, "-|-")+"-"); err != nil {
		return err
	}

	for _, p := range products {
		cells := make([]string, 0, len(fields))
		for _, f := range fields {
			cells = append(cells, escapeMarkdown(entities.FormatValue(p[f.Name])))
		}
		if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | ")); err != nil {
			return err
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
