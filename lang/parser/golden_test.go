package parser

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/catface-lang/catface/internal/filetest"
	"github.com/catface-lang/catface/lang/ast"
	"github.com/stretchr/testify/require"
)

var testUpdateParserTests = flag.Bool("test.update-parser-tests", false, "If set, replace expected parser test outputs.")

func TestParsePrintFiles(t *testing.T) {
	for _, fi := range filetest.SourceFiles(t, "testdata", ".cf") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			_, roots, err := ParseFiles(context.Background(), filepath.Join("testdata", fi.Name()))
			require.NoError(t, err)
			require.Len(t, roots, 1)

			var buf bytes.Buffer
			p := ast.Printer{Output: &buf}
			require.NoError(t, p.Print(roots[0], nil))
			filetest.DiffOutput(t, fi, buf.String(), "testdata", testUpdateParserTests)
		})
	}
}
