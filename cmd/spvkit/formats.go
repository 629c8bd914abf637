package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/spvkit/format"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the registered texel formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tVK\tSIZE\tASPECT\tCHANNELS")
			for _, f := range format.All() {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", f.Name, f.Wire, f.Size, f.Aspect, strings.TrimPrefix(f.String(), f.Name+" "))
			}
			return tw.Flush()
		},
	}
}
