package report

import (
	"strconv"
	"strings"

	"github.com/verte-zerg/tuinteract/internal/function"
)

// FunctionLines renders the built-in function registry.
func FunctionLines(funcs []*function.Func) []string {
	rows := make([][]string, 0, len(funcs))
	for _, f := range funcs {
		args := make([]string, 0, len(f.Args)+1)
		if f.Domain {
			args = append(args, "x")
		}
		for _, a := range f.Args {
			if a.Default != nil {
				args = append(args, a.Name+"="+strconv.FormatFloat(*a.Default, 'g', -1, 64))
				continue
			}
			args = append(args, a.Name)
		}
		rows = append(rows, []string{f.Name, "(" + strings.Join(args, ", ") + ")", f.Doc})
	}
	return formatTable([]string{"Function", "Arguments", "Description"}, rows, nil)
}
