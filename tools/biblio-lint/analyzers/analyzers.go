// Package analyzers provides all custom static analyzers for biblio-core.
package analyzers

import (
	"golang.org/x/tools/go/analysis"

	"github.com/ersonp/biblio-core/tools/biblio-lint/analyzers/loopcall"
	"github.com/ersonp/biblio-core/tools/biblio-lint/analyzers/revisionwrite"
)

// All returns all analyzers to run.
func All() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		loopcall.Analyzer,
		revisionwrite.Analyzer,
	}
}
