package codec

import (
	"fmt"
	"strings"
)

// PrintNested renders a composite value for debugging: a header line
// followed by the indented rendering of each child.
func PrintNested(kind, name string, size int, children []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s %s", size, kind, name)
	for _, c := range children {
		b.WriteString("\n\t" + strings.ReplaceAll(c, "\n", "\n\t"))
	}
	return b.String()
}
