package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/fdfskit/pkg/pathutil"
)

func newNormalizeCmd() *cobra.Command {
	var parent int

	cmd := &cobra.Command{
		Use:   "normalize <path>...",
		Short: "Print normalized paths",
		Long: `Normalize converts backslashes to slashes, collapses repeated
separators, resolves "." and ".." and strips the file:// scheme.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, p := range args {
				if parent > 0 {
					fmt.Fprintln(out, pathutil.Parent(p, parent))
					continue
				}
				fmt.Fprintln(out, pathutil.Normalize(p))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&parent, "parent", "p", 0, "Print the ancestor this many levels up instead")
	return cmd
}

func newSubPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subpath <base> <path>",
		Short: "Print path relative to base",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), pathutil.SubPath(args[0], args[1]))
			return nil
		},
	}
}

func newSegmentCmd() *cobra.Command {
	var (
		index    int
		from, to int
		joined   bool
	)

	cmd := &cobra.Command{
		Use:   "segment <path>",
		Short: "Print path segments",
		Long: `Segment prints the elements of the normalized path, one per line.
--index selects a single element and --from/--to a range; negative values
count from the end.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := args[0]
			flags := cmd.Flags()

			var segments []string
			switch {
			case flags.Changed("index"):
				if s := pathutil.Segment(p, index); s != "" {
					segments = []string{s}
				}
			case flags.Changed("from") || flags.Changed("to"):
				if !flags.Changed("to") {
					to = len(pathutil.Segments(p))
				}
				segments = pathutil.SubSegments(p, from, to)
			default:
				segments = pathutil.Segments(p)
			}

			out := cmd.OutOrStdout()
			if joined {
				fmt.Fprintln(out, strings.Join(segments, "/"))
				return nil
			}
			for _, s := range segments {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&index, "index", "i", 0, "Print only the element at this index")
	cmd.Flags().IntVar(&from, "from", 0, "First element of the range")
	cmd.Flags().IntVar(&to, "to", 0, "End of the range, exclusive")
	cmd.Flags().BoolVarP(&joined, "join", "j", false, "Print the elements joined with /")
	return cmd
}
