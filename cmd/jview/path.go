package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dacapoday/jdb/path"
)

// parsePath turns a dotted command-line path expression such as
// `a.b[0].c` or `["weird key"][2]` into a path.Path. The empty string is the
// root path. A leading key need not be preceded by a dot (`a.b` and `.a.b`
// are equivalent), matching what a user types most naturally.
func parsePath(expr string) (path.Path, error) {
	var steps path.Path
	i := 0
	for i < len(expr) {
		switch expr[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(expr[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated [ in %q", expr)
			}
			inner := expr[i+1 : i+end]
			i += end + 1
			if len(inner) >= 2 && (inner[0] == '"' || inner[0] == '\'') {
				steps = steps.Child(path.Key(inner[1 : len(inner)-1]))
				continue
			}
			idx, err := strconv.ParseUint(inner, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad index %q in %q", inner, expr)
			}
			steps = steps.Child(path.Index(idx))
		default:
			j := i
			for j < len(expr) && expr[j] != '.' && expr[j] != '[' {
				j++
			}
			steps = steps.Child(path.Key(expr[i:j]))
			i = j
		}
	}
	return steps, nil
}
