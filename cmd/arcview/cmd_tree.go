package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kyaoi/arcview/internal/app"
	"github.com/kyaoi/arcview/internal/tree"
)

func newTreeCmd(opts *globalOptions) *cobra.Command {
	var (
		depth int
		flat  bool
	)
	cmd := &cobra.Command{
		Use:   "tree <path>...",
		Short: "Print directories and archives as an indented tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make([]tree.Item, len(args))
			var g errgroup.Group
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i, arg := range args {
				g.Go(func() error {
					item, err := opts.nav.Open(arg)
					if err != nil {
						return err
					}
					items[i] = item
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, item := range items {
				if len(items) > 1 {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "==> %s <==\n", args[i])
				}
				var err error
				if flat {
					err = app.PrintPaths(out, item, depth)
				} else {
					err = app.PrintTree(out, item, depth)
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", -1, "maximum depth, negative for no limit")
	cmd.Flags().BoolVar(&flat, "flat", false, "print one path per line")
	return cmd
}

func newLsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <path>",
		Short: "List one directory or archive directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := opts.nav.Open(args[0])
			if err != nil {
				return err
			}
			dir, err := opts.nav.Descend(item)
			if err != nil {
				return err
			}
			return app.PrintListing(cmd.OutOrStdout(), dir)
		},
	}
}
