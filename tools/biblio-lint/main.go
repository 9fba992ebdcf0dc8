// biblio-lint is a custom static analyzer for biblio-core storage patterns.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/ersonp/biblio-core/tools/biblio-lint/analyzers"
)

func main() {
	multichecker.Main(analyzers.All()...)
}
