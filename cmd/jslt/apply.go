package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sandrolain/gojslt/pkg/compiler"
	"github.com/sandrolain/gojslt/pkg/evaluator"
	"github.com/sandrolain/gojslt/pkg/value"
)

// stdinName labels the document read from standard input.
const stdinName = "-"

func newApplyCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "apply [inputs...]",
		Short: "Apply a template to input documents",
		Long: `Apply compiles the template given by --template or --expr and applies it to
each input file, or to standard input when no file is named. Results are
printed in input order.`,
		Example: `  jslt apply --template transform.jslt a.json b.json
  jslt apply --expr '{"id": .user.id, * : .}' --output-format pretty < in.json
  jslt apply --template t.jslt --var env='"prod"' --watch in.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := stateFrom(cmd)
			if st.cfg.Template == "" && st.cfg.Expr == "" {
				return errors.New("no template: use --template or --expr")
			}
			inputs, err := readInputs(cmd.InOrStdin(), args, st.cfg.InputFormat)
			if err != nil {
				return err
			}
			a := &applier{cfg: st.cfg, logger: st.logger, out: cmd.OutOrStdout()}
			if watch {
				if st.cfg.Template == "" {
					return errors.New("--watch needs --template")
				}
				return a.watch(cmd.Context(), inputs)
			}
			expr, err := a.compile()
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), expr, inputs)
		},
	}

	f := cmd.Flags()
	f.StringP("template", "t", "", "template file")
	f.StringP("expr", "e", "", "template text")
	f.StringP("input-format", "i", FormatJSON, "input format: json or yaml")
	f.StringP("output-format", "o", FormatJSON, "output format: json, pretty or yaml")
	f.String("object-filter", "", "template deciding which object pairs are kept")
	f.IntP("workers", "w", 0, "documents applied concurrently (0: all)")
	f.StringArray("var", nil, "external variable as name=json (repeatable)")
	f.BoolVar(&watch, "watch", false, "re-apply whenever the template file changes")
	return cmd
}

// document is one parsed input.
type document struct {
	name  string
	value value.Value
}

func readInputs(stdin io.Reader, names []string, format string) ([]document, error) {
	if len(names) == 0 {
		names = []string{stdinName}
	}
	docs := make([]document, 0, len(names))
	for _, name := range names {
		var data []byte
		var err error
		if name == stdinName {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		v, err := parseDocument(data, formatOf(name, format))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		docs = append(docs, document{name: name, value: v})
	}
	return docs, nil
}

// formatOf lets a .yaml or .yml extension override the configured format.
func formatOf(name, format string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	}
	return format
}

func parseDocument(data []byte, format string) (value.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return value.Null, nil
	}
	if format == FormatYAML {
		return value.ParseYAML(data)
	}
	return value.ParseJSON(data)
}

func render(v value.Value, format string) ([]byte, error) {
	switch format {
	case FormatPretty:
		return value.MarshalIndent(v, "  "), nil
	case FormatYAML:
		return value.ToYAML(v)
	}
	return value.MarshalJSON(v), nil
}

// applier compiles the configured template and applies it to documents.
type applier struct {
	cfg    *Config
	logger *zap.Logger
	out    io.Writer
}

func (a *applier) compile() (*evaluator.Expression, error) {
	src, source, dir := a.cfg.Expr, "<expr>", ""
	if a.cfg.Template != "" {
		data, err := os.ReadFile(a.cfg.Template)
		if err != nil {
			return nil, fmt.Errorf("read template: %w", err)
		}
		src, source, dir = string(data), a.cfg.Template, filepath.Dir(a.cfg.Template)
	}
	expr, err := compiler.Compile(src, compileOptions(a.cfg, source, dir)...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("template compiled",
		zap.String("source", source),
		zap.Int("frame_size", expr.StackFrameSize()),
		zap.Strings("parameters", expr.Parameters()))
	return expr, nil
}

func (a *applier) variables() (map[string]value.Value, error) {
	vars := make(map[string]value.Value, len(a.cfg.Variables))
	for name, text := range a.cfg.Variables {
		v, err := value.ParseJSONString(text)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		vars[name] = v
	}
	return vars, nil
}

// run applies expr to every document with at most cfg.Workers goroutines.
// A failing document does not stop the others; all failures are reported
// together after the successful results are printed.
func (a *applier) run(ctx context.Context, expr *evaluator.Expression, docs []document) error {
	vars, err := a.variables()
	if err != nil {
		return err
	}

	results := make([]value.Value, len(docs))
	errs := make([]error, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	if a.cfg.Workers > 0 {
		g.SetLimit(a.cfg.Workers)
	}
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := expr.ApplyWithVariables(vars, doc.value)
			if err != nil {
				a.logger.Warn("apply failed", zap.String("input", doc.name), zap.Error(err))
				errs[i] = fmt.Errorf("%s: %w", doc.name, err)
				return nil
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, out := range results {
		if errs[i] != nil {
			continue
		}
		b, err := render(out, a.cfg.OutputFormat)
		if err != nil {
			errs[i] = fmt.Errorf("%s: %w", docs[i].name, err)
			continue
		}
		if a.cfg.OutputFormat == FormatYAML && i > 0 {
			_, _ = io.WriteString(a.out, "---\n")
		}
		_, _ = a.out.Write(b)
		if len(b) == 0 || b[len(b)-1] != '\n' {
			_, _ = io.WriteString(a.out, "\n")
		}
	}
	a.logger.Debug("inputs processed", zap.Int("count", len(docs)))
	return multierr.Combine(errs...)
}

// watchDebounce collapses the bursts of events editors produce on save.
const watchDebounce = 100 * time.Millisecond

// watch applies the template once, then again after every change to the
// template file, until ctx is cancelled. Compile and apply errors are
// logged and do not end the watch.
func (a *applier) watch(ctx context.Context, docs []document) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// editors often replace the file, so the directory is watched
	if err := watcher.Add(filepath.Dir(a.cfg.Template)); err != nil {
		return err
	}
	target := filepath.Clean(a.cfg.Template)

	reapply := func() {
		expr, err := a.compile()
		if err == nil {
			err = a.run(ctx, expr, docs)
		}
		if err != nil {
			a.logger.Error("watch cycle failed", zap.Error(err))
		}
	}
	reapply()

	var timer *time.Timer
	changed := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})
		case <-changed:
			a.logger.Info("template changed, re-applying", zap.String("template", target))
			reapply()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("watcher error", zap.Error(err))
		}
	}
}
