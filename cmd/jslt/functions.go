package main

import (
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sandrolain/gojslt/pkg/evaluator"
	"github.com/sandrolain/gojslt/pkg/ext"
	"github.com/sandrolain/gojslt/pkg/functions"
)

// variadic is the arity shown for callables without a practical upper bound.
const variadic = 1024

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the available functions",
		Long: `Functions lists the builtin functions and macros with their arity. With
--extensions the extension libraries are listed too, by module.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := stateFrom(cmd)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Function", "Kind", "Arguments", "Module"})

			for _, name := range evaluator.BuiltinNames() {
				c, _ := evaluator.LookupBuiltin(name)
				t.AppendRow(row(c, "builtin"))
			}
			if st.cfg.Extensions {
				mods := ext.Modules()
				uris := make([]string, 0, len(mods))
				for uri := range mods {
					uris = append(uris, uri)
				}
				sort.Strings(uris)
				for _, uri := range uris {
					m, ok := mods[uri].(*functions.MapModule)
					if !ok {
						continue
					}
					t.AppendSeparator()
					for _, name := range m.Names() {
						t.AppendRow(row(m.Callable(name), uri))
					}
				}
			}
			t.Render()
			return nil
		},
	}
}

func row(c functions.Callable, module string) table.Row {
	kind := "function"
	if _, ok := c.(evaluator.Macro); ok {
		kind = "macro"
	}
	return table.Row{c.Name(), kind, arity(c), module}
}

func arity(c functions.Callable) string {
	lo, hi := c.MinArguments(), c.MaxArguments()
	switch {
	case hi >= variadic:
		return strconv.Itoa(lo) + "+"
	case lo == hi:
		return strconv.Itoa(lo)
	}
	return strconv.Itoa(lo) + "-" + strconv.Itoa(hi)
}
