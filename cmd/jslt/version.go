package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gojslt"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "jslt %s (%s)\n", gojslt.Version(), runtime.Version())
		},
	}
}
