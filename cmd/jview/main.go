// jview is a command-line and interactive browser for jdb stores: path-encoded
// JSON object graphs persisted in a kv file.
//
// Usage:
//
//	jview get <file> <path>            # print the JSON value at path
//	jview set <file> <path> <json>     # assign a JSON value at path
//	jview dump <file> [--format=yaml]  # print the whole graph
//	jview browse <file>                # interactive pager
//
// path is a dotted expression like a.b[0]["weird key"]; the empty string
// addresses the root container.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dacapoday/jdb"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jview",
		Short: "Inspect and edit a jdb JSON graph store",
	}
	root.AddCommand(newGetCmd(), newSetCmd(), newDumpCmd(), newBrowseCmd())
	return root
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <file> <path>",
		Short: "Print the JSON value at path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := jdb.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			view, err := store.Root()
			if err != nil {
				return err
			}
			defer view.Abort()

			steps, err := parsePath(args[1])
			if err != nil {
				return err
			}
			val, err := walk(view.View, steps)
			if err != nil {
				return err
			}
			resolved, err := resolveValue(val)
			if err != nil {
				return err
			}
			out, err := json.Marshal(resolved)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <file> <path> <json>",
		Short: "Assign a JSON value at path",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := jdb.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			var value any
			if err := json.Unmarshal([]byte(args[2]), &value); err != nil {
				return fmt.Errorf("bad json value: %w", err)
			}

			return store.Transact(func(view *jdb.View) error {
				steps, err := parsePath(args[1])
				if err != nil {
					return err
				}
				parent, step, err := walkParent(view.View, steps)
				if err != nil {
					return err
				}
				return parent.Set(step, value)
			})
		},
	}
}

func newDumpCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the entire graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := jdb.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			view, err := store.Root()
			if err != nil {
				return err
			}
			defer view.Abort()

			data, err := materialize(view.View)
			if err != nil {
				return err
			}

			switch format {
			case "yaml":
				out, err := yaml.Marshal(data)
				if err != nil {
					return err
				}
				fmt.Print(string(out))
			case "json", "":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(data)
			default:
				return fmt.Errorf("unknown format %q, want yaml or json", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <file>",
		Short: "Interactively page through the graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(args[0])
		},
	}
}
