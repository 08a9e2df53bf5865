package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sbertone/inventario/internal/domain/services"
	"github.com/sbertone/inventario/internal/infrastructure/parsers"
)

// StdinSource names standard input as the import source.
const StdinSource = "-"

// ImportHandler reads a product file and hands it to the import service.
type ImportHandler struct {
	service *services.ImportService
	stdin   io.Reader
}

// NewImportHandler creates a new import handler reading "-" from os.Stdin.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{service: service, stdin: os.Stdin}
}

// ImportOptions controls a file import.
type ImportOptions struct {
	Format string // json, csv, or auto (by extension)
	DryRun bool
	Force  bool
}

// Handle imports products from source, a file path or StdinSource. Reading
// standard input requires an explicit format.
func (h *ImportHandler) Handle(ctx context.Context, source string, opts ImportOptions) (*services.ImportResult, error) {
	parser, err := parsers.Lookup(opts.Format, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
	}

	raws, err := h.parse(parser, source)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return &services.ImportResult{}, nil
	}

	return h.service.Import(ctx, raws, services.ImportOptions{DryRun: opts.DryRun, Force: opts.Force})
}

func (h *ImportHandler) parse(parser parsers.Parser, source string) ([]parsers.RawProduct, error) {
	var r io.Reader = h.stdin
	if source != StdinSource {
		file, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening file: %w", err)
		}
		defer file.Close()
		r = file
	}

	raws, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	return raws, nil
}
