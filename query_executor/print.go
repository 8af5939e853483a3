package executor

import (
	"fmt"
	"io"
	"strings"

	"SharpHSQL/types"
)

// Print writes the result as a table, or the change count when there are
// no columns.
func (r *Result) Print(w io.Writer) {
	if len(r.Columns) == 0 {
		fmt.Fprintf(w, "%d row(s) affected\n", r.Updated)
		return
	}
	printLine(w, r.Columns)
	printSeparator(w, len(r.Columns))
	cells := make([]string, len(r.Columns))
	for _, row := range r.Rows {
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		printLine(w, cells)
	}
	fmt.Fprintf(w, "(%d rows)\n", len(r.Rows))
}

func printLine(w io.Writer, cells []string) {
	for i, cell := range cells {
		fmt.Fprintf(w, "%-20s", cell)
		if i < len(cells)-1 {
			fmt.Fprint(w, "| ")
		}
	}
	fmt.Fprintln(w)
}

func printSeparator(w io.Writer, count int) {
	if count > 0 {
		fmt.Fprintln(w, strings.Repeat("-", (22*count)-2))
	}
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return types.Literal(v)
}
