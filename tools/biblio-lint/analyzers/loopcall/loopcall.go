// Package loopcall detects index, cache and embedding calls inside loops.
package loopcall

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer detects single-item remote calls inside loops that have a batch
// counterpart.
var Analyzer = &analysis.Analyzer{
	Name:     "loopcall",
	Doc:      "detects single-item index, cache and embedding calls inside loops that should be batched",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// batched maps single-item methods to the call that should replace them.
var batched = map[string]string{
	// Embedder
	"Embed": "EmbedBatch",
	// VectorDB
	"Save": "SaveBatch",
	// StateCache
	"InvalidateState": "one InvalidateState with every BBID",
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
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			if batch, ok := batched[sel.Sel.Name]; ok {
				pass.Reportf(call.Pos(),
					"potential N+1: %s called inside loop - use %s",
					sel.Sel.Name, batch)
			}

			return true
		})
	})

	return nil, nil
}
