// Package analyzers provides all custom static analyzers for inventario.
package analyzers

import (
	"golang.org/x/tools/go/analysis"

	"github.com/sbertone/inventario/tools/inventario-lint/analyzers/storeloop"
)

// All returns all analyzers to run.
func All() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		storeloop.Analyzer,
	}
}
