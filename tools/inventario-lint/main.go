// inventario-lint is a custom static analyzer for inventario storage patterns.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/sbertone/inventario/tools/inventario-lint/analyzers"
)

func main() {
	multichecker.Main(analyzers.All()...)
}
