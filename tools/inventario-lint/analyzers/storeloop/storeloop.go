// Package storeloop detects document store reads and writes inside loops.
//
// Every inventory operation loads each document once, mutates it in memory
// and writes it back once. A Load or Save call inside a loop rereads or
// rewrites a whole document per iteration.
package storeloop

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports whole-document store calls made inside loops.
var Analyzer = &analysis.Analyzer{
	Name:     "storeloop",
	Doc:      "detects whole-document store reads and writes inside loops",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// storeMethods are the ports.Store methods that read or replace a document.
var storeMethods = map[string]bool{
	"LoadFields":       true,
	"SaveFields":       true,
	"LoadUniqueFields": true,
	"SaveUniqueFields": true,
	"LoadProducts":     true,
	"SaveProducts":     true,
	"LoadHistory":      true,
	"SaveHistory":      true,
	"LoadBin":          true,
	"SaveBin":          true,
	"ReadDocument":     true,
	"WriteDocument":    true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.RangeStmt)(nil),
		(*ast.ForStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		var body *ast.BlockStmt
		switch stmt := n.(type) {
		case *ast.RangeStmt:
			body = stmt.Body
		case *ast.ForStmt:
			body = stmt.Body
		}
		if body == nil {
			return
		}

		ast.Inspect(body, func(n ast.Node) bool {
			// Closures run later, not once per iteration.
			if _, ok := n.(*ast.FuncLit); ok {
				return false
			}

			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok || !storeMethods[sel.Sel.Name] {
				return true
			}

			// Only method calls count; a package function that happens to
			// share a name is not a store access.
			if s, ok := pass.TypesInfo.Selections[sel]; !ok || s.Kind() != types.MethodVal {
				return true
			}

			pass.Reportf(call.Pos(),
				"%s called inside loop - load once before the loop and save once after it",
				sel.Sel.Name)

			return true
		})
	})

	return nil, nil
}
