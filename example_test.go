package jdb_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dacapoday/jdb"
	"github.com/dacapoday/jdb/graph"
	"github.com/dacapoday/jdb/path"
)

func Example() {
	// Create temporary file for demo
	dir, err := os.MkdirTemp("", "example-jdb-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	// Open creates or opens a store file
	store, err := jdb.Open(filepath.Join(dir, "data.jdb"))
	if err != nil {
		panic(err)
	}
	defer store.Close()

	// Transact commits on a nil return, aborts otherwise
	err = store.Transact(func(v *jdb.View) error {
		if err := v.Set(path.Key("greeting"), "hello"); err != nil {
			return err
		}
		return v.Set(path.Key("config"), map[string]any{"retries": 3.0})
	})
	if err != nil {
		panic(err)
	}

	// Reads resolve live against the store
	view, err := store.Root()
	if err != nil {
		panic(err)
	}
	defer view.Abort()

	greeting, _ := view.Get(path.Key("greeting"))
	fmt.Printf("greeting: %v\n", greeting)

	config, _ := view.Get(path.Key("config"))
	retries, _ := config.(*graph.View).Get(path.Key("retries"))
	fmt.Printf("config.retries: %v\n", retries)

	// Output:
	// greeting: hello
	// config.retries: 3
}

func ExampleStore_Transact() {
	dir, err := os.MkdirTemp("", "example-jdb-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	store, err := jdb.Open(filepath.Join(dir, "data.jdb"))
	if err != nil {
		panic(err)
	}
	defer store.Close()

	// A returned error aborts: nothing inside this Transact survives.
	err = store.Transact(func(v *jdb.View) error {
		if err := v.Set(path.Key("doomed"), true); err != nil {
			return err
		}
		return fmt.Errorf("changed my mind")
	})
	fmt.Printf("transact: %v\n", err)

	view, err := store.Root()
	if err != nil {
		panic(err)
	}
	defer view.Abort()

	ok, _ := view.Contains(path.Key("doomed"))
	fmt.Printf("doomed present: %v\n", ok)

	// Output:
	// transact: changed my mind
	// doomed present: false
}
