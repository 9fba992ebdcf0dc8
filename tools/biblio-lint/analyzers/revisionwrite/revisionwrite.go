// Package revisionwrite detects revision commits that bypass the mutation
// service.
package revisionwrite

import (
	"go/ast"
	"path"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports CommitEntity and CommitRelationship calls made outside the
// domain services package. Only the mutation service may create revisions.
var Analyzer = &analysis.Analyzer{
	Name:     "revisionwrite",
	Doc:      "detects revision commits made outside the domain services package",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var commitMethods = map[string]bool{
	"CommitEntity":       true,
	"CommitRelationship": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	if allowed(pass.Pkg.Path()) {
		return nil, nil
	}

	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	inspect.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || !commitMethods[sel.Sel.Name] {
			return
		}

		file := pass.Fset.File(call.Pos())
		if file != nil && strings.HasSuffix(file.Name(), "_test.go") {
			return
		}

		pass.Reportf(call.Pos(),
			"%s called outside the mutation service - use MutationService so revisions are validated and retried",
			sel.Sel.Name)
	})

	return nil, nil
}

// allowed reports whether a package may commit revisions directly.
func allowed(pkgPath string) bool {
	return strings.HasSuffix(pkgPath, "/domain/services") || path.Base(pkgPath) == "mocks"
}
