package revisionwrite_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/ersonp/biblio-core/tools/biblio-lint/analyzers/revisionwrite"
)

func TestAnalyzer(t *testing.T) {
	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, revisionwrite.Analyzer, "a", "example.com/app/internal/domain/services")
}
