package main

import (
	"github.com/dacapoday/jdb/graph"
)

// materialize walks v and everything beneath it into plain Go values
// (map[string]any, []any, and JSON scalars), suitable for encoding/json or
// yaml.v3 to marshal directly.
func materialize(v *graph.View) (any, error) {
	if v.Kind() == graph.ArrayKind {
		n, err := v.Length()
		if err != nil {
			return nil, err
		}
		arr := make([]any, 0, n)
		it := v.Iterate()
		defer it.Close()
		for it.Next() {
			_, val, _ := it.ArrayEntry()
			resolved, err := resolveValue(val)
			if err != nil {
				return nil, err
			}
			arr = append(arr, resolved)
		}
		if err := it.Err(); err != nil {
			return nil, err
		}
		return arr, nil
	}

	obj := make(map[string]any)
	it := v.Iterate()
	defer it.Close()
	for it.Next() {
		key, val, _ := it.ObjectEntry()
		resolved, err := resolveValue(val)
		if err != nil {
			return nil, err
		}
		obj[key] = resolved
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return obj, nil
}

func resolveValue(val any) (any, error) {
	if child, ok := val.(*graph.View); ok {
		return materialize(child)
	}
	return val, nil
}
