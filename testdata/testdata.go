// Package testdata bundles a gzip-compressed corpus of real-world raw TAF
// reports, one report per line, for tests across the module.
package testdata

import (
	"bufio"
	"compress/gzip"
	"embed"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

//go:embed taf.txt.gz
var corpus embed.FS

// Reports returns every raw report in the corpus, blank lines dropped.
func Reports(t *testing.T) []string {
	f, err := corpus.Open("taf.txt.gz")
	require.NoError(t, err)

	r, err := gzip.NewReader(f)
	require.NoError(t, err)

	var reports []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			reports = append(reports, line)
		}
	}
	require.NoError(t, scanner.Err())
	require.NoError(t, r.Close())
	require.NoError(t, f.Close())
	return reports
}
