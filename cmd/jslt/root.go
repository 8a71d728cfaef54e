package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sandrolain/gojslt"
	"github.com/sandrolain/gojslt/pkg/compiler"
	"github.com/sandrolain/gojslt/pkg/ext"
	"github.com/sandrolain/gojslt/pkg/resolver"
)

// stateKey stores the loaded state in the command context.
type stateKey struct{}

// state is shared by the subcommands once configuration is loaded.
type state struct {
	cfg    *Config
	logger *zap.Logger
}

func stateFrom(cmd *cobra.Command) *state {
	if s, ok := cmd.Context().Value(stateKey{}).(*state); ok {
		return s
	}
	return &state{cfg: &Config{InputFormat: FormatJSON, OutputFormat: FormatJSON}, logger: zap.NewNop()}
}

// NewRootCmd creates the jslt command tree.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "jslt",
		Short: "JSON-to-JSON transformation with JSLT templates",
		Long: `jslt compiles JSLT templates and applies them to JSON or YAML documents.

Settings come from jslt.yaml, JSLT_* environment variables and flags, with
flags taking precedence.`,
		Version:       gojslt.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
				return nil
			}
			cfg, err := LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Verbose)
			if err != nil {
				return err
			}
			if cfg.File != "" {
				logger.Debug("using config file", zap.String("file", cfg.File))
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, stateKey{}, &state{cfg: cfg, logger: logger}))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			_ = stateFrom(cmd).logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: jslt.yaml in the working directory)")
	pf.BoolP("verbose", "v", false, "log debug events to stderr")
	pf.String("module-dir", "", "directory imported modules are resolved against (default: the template's directory)")
	pf.Bool("extensions", false, "enable the extension function libraries")

	root.AddCommand(
		newApplyCmd(),
		newCheckCmd(),
		newFunctionsCmd(),
		newVersionCmd(),
	)
	return root
}

// newLogger builds a development logger at debug level when verbose, and a
// production logger that only reports warnings otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// compileOptions translates the configuration into compiler options.
// templateDir is used for imports when no module directory is configured.
func compileOptions(cfg *Config, source, templateDir string) []compiler.Option {
	opts := []compiler.Option{compiler.WithSource(source)}

	dir := cfg.ModuleDir
	if dir == "" {
		dir = templateDir
	}
	if dir != "" {
		opts = append(opts, compiler.WithResourceResolver(resolver.Dir(dir)))
	}
	if cfg.ObjectFilter != "" {
		opts = append(opts, compiler.WithObjectFilterExpression(cfg.ObjectFilter))
	}
	if cfg.Extensions {
		opts = append(opts, ext.WithAll(), ext.WithModules())
	}
	if cfg.Verbose {
		opts = append(opts, compiler.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	return opts
}
