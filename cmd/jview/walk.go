package main

import (
	"fmt"

	"github.com/dacapoday/jdb/graph"
	"github.com/dacapoday/jdb/path"
)

// walk resolves steps against root, returning whatever is found there: a
// scalar Go value, or a *graph.View for a container. The empty path
// resolves to root itself.
func walk(root *graph.View, steps path.Path) (any, error) {
	var cur any = root
	for _, step := range steps {
		view, ok := cur.(*graph.View)
		if !ok {
			return nil, fmt.Errorf("%v: not a container", step)
		}
		val, err := view.Get(step)
		if err != nil {
			return nil, err
		}
		cur = val
	}
	return cur, nil
}

// walkParent resolves every step but the last, returning the parent
// container and the final step to apply against it. Used by commands that
// write a value (set) rather than just read one.
func walkParent(root *graph.View, steps path.Path) (*graph.View, path.Step, error) {
	if len(steps) == 0 {
		return nil, path.Step{}, fmt.Errorf("path is empty: nothing to assign to")
	}
	parentVal, err := walk(root, steps[:len(steps)-1])
	if err != nil {
		return nil, path.Step{}, err
	}
	parent, ok := parentVal.(*graph.View)
	if !ok {
		return nil, path.Step{}, fmt.Errorf("%v: parent is not a container", steps[:len(steps)-1])
	}
	return parent, steps[len(steps)-1], nil
}
