package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/domain/services"
)

func printFields(w io.Writer, fields []entities.FieldInfo) {
	if len(fields) == 0 {
		fmt.Fprintln(w, "No fields defined.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tTYPE\tUNIQUE")
	for i, f := range fields {
		unique := ""
		if f.Unique {
			unique = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, f.Name, f.Type, unique)
	}
	tw.Flush()
}

// printProducts renders products as a table with one column per field.
func printProducts(w io.Writer, fields []entities.FieldInfo, products []entities.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(fields)+1)
	header = append(header, "#")
	for _, f := range fields {
		header = append(header, strings.ToUpper(f.Name))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for i, p := range products {
		row := make([]string, 0, len(fields)+1)
		row = append(row, fmt.Sprint(i+1))
		for _, f := range fields {
			v, ok := p[f.Name]
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, truncate(entities.FormatValue(v), MaxCellWidth))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func printProduct(w io.Writer, p entities.Product) {
	for _, name := range p.Fields() {
		fmt.Fprintf(w, "  %s: %s\n", name, entities.FormatValue(p[name]))
	}
	if hidden := p.Hidden(); len(hidden) > 0 {
		fmt.Fprintf(w, "  (archived: %s)\n", summarizeMap(hidden))
	}
}

func printBin(w io.Writer, entries []entities.BinEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Recycle bin is empty.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tENTITY\tDELETED\tEXPIRES\tRECORD")
	for i := range entries {
		e := &entries[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.Entity,
			e.DeletedAt.Local().Format("02/01/2006 15:04"),
			e.ExpiresAt.Local().Format("02/01/2006"),
			truncate(summarizeEntry(e), 60),
		)
	}
	tw.Flush()
}

func printEvents(w io.Writer, events []entities.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No history yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tACTION\tENTITY\tDETAIL")
	for i := range events {
		e := &events[i]
		detail := summarize(e.After)
		if e.After == nil {
			detail = summarize(e.Before)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Timestamp.Human, e.Action, e.Entity, truncate(detail, 60))
	}
	tw.Flush()
}

func printRestore(w io.Writer, result *services.RestoreResult) {
	switch {
	case result.Field != nil:
		fmt.Fprintf(w, "Restored field %q (%s).\n", result.Field.Name, result.Field.Type)
	default:
		fmt.Fprintln(w, "Restored product:")
		printProduct(w, result.Product)
	}
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}

// explain prints the details carried by typed domain errors.
func explain(w io.Writer, err error) {
	var uc *services.UniqueConflictError
	var dup *services.DuplicateError
	var amb *services.AmbiguousMatchError
	switch {
	case errors.As(err, &uc):
		for _, c := range uc.Conflicts {
			refs := make([]string, 0, len(c.Products))
			for _, i := range c.Products {
				refs = append(refs, fmt.Sprintf("#%d", i+1))
			}
			fmt.Fprintf(w, "  %s = %s already used by product %s\n", c.Field, entities.FormatValue(c.Value), strings.Join(refs, ", "))
		}
	case errors.As(err, &dup):
		fmt.Fprintln(w, "Similar products:")
		for i, p := range dup.Matches {
			fmt.Fprintf(w, "%d.\n", i+1)
			printProduct(w, p)
		}
	case errors.As(err, &amb):
		fmt.Fprintln(w, "Matching products:")
		for i, p := range amb.Candidates {
			fmt.Fprintf(w, "%d.\n", i+1)
			printProduct(w, p)
		}
	}
}

func summarizeEntry(e *entities.BinEntry) string {
	switch e.Entity {
	case entities.EntityProduct:
		p, err := e.ProductSnapshot()
		if err != nil {
			return "?"
		}
		return summarizeMap(map[string]any(p))
	case entities.EntityField:
		fs, err := e.FieldSnapshot()
		if err != nil {
			return "?"
		}
		return fmt.Sprintf("%s (%s)", fs.Name, fs.Type)
	default:
		return string(e.Snapshot)
	}
}

func summarize(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case entities.Product:
		return summarizeMap(map[string]any(val))
	case map[string]any:
		return summarizeMap(val)
	case string:
		return val
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

func summarizeMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k == entities.HiddenFieldsKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, entities.FormatValue(m[k])))
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// parseAssignments turns ["campo=valor", ...] into a map. The first '='
// separates name from value, so values may contain '='.
func parseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = entities.NormalizeName(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("expected field=value, got %q", pair)
		}
		out[name] = value
	}
	return out, nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
