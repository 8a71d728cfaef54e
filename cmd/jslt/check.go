package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sandrolain/gojslt/pkg/compiler"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <template>...",
		Short: "Compile templates and report errors",
		Long: `Check compiles each template, including the modules it imports, without
applying it. Every failing template is reported with its error location.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := stateFrom(cmd)
			var errs error
			for _, name := range args {
				src, err := os.ReadFile(name)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				expr, err := compiler.Compile(string(src), compileOptions(st.cfg, name, filepath.Dir(name))...)
				if err != nil {
					st.logger.Debug("check failed", zap.String("template", name), zap.Error(err))
					errs = multierr.Append(errs, err)
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok %s", name)
				if params := expr.Parameters(); len(params) > 0 {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " (variables: %v)", params)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return errs
		},
	}
}
