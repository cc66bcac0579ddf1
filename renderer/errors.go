package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/fxgains"
)

// SkippedRows renders the rows of a broker export that could not be read.
// It returns an empty string when there is none.
func SkippedRows(errs []*fxgains.ParseError) string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Skipped Rows\n\n")
	for _, e := range errs {
		fmt.Fprintf(&b, "- %v\n", e)
	}
	return b.String()
}
