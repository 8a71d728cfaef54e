package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names searched in the working directory.
var configFileNames = []string{"jslt.yaml", "jslt.yml"}

const envPrefix = "JSLT_"

// Input and output formats.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
	FormatYAML   = "yaml"
)

// Config is the merged CLI configuration.
type Config struct {
	Template     string            `koanf:"template"`
	Expr         string            `koanf:"expr"`
	InputFormat  string            `koanf:"input_format"`
	OutputFormat string            `koanf:"output_format"`
	ModuleDir    string            `koanf:"module_dir"`
	ObjectFilter string            `koanf:"object_filter"`
	Workers      int               `koanf:"workers"`
	Verbose      bool              `koanf:"verbose"`
	Extensions   bool              `koanf:"extensions"`
	Variables    map[string]string `koanf:"variables"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// LoadConfig merges, lowest precedence first: defaults, the config file,
// JSLT_ environment variables and flags set on the command line.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"input_format":  FormatJSON,
		"output_format": FormatJSON,
		"workers":       0,
		"verbose":       false,
		"extensions":    false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// JSLT_OUTPUT_FORMAT -> output_format
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// --var is merged into variables after unmarshalling
			if !f.Changed || f.Name == "var" || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if flags != nil {
		if vars, err := flags.GetStringArray("var"); err == nil {
			for _, kv := range vars {
				name, val, ok := strings.Cut(kv, "=")
				if !ok || name == "" {
					return nil, fmt.Errorf("invalid --var %q: expected name=json", kv)
				}
				if cfg.Variables == nil {
					cfg.Variables = make(map[string]string)
				}
				cfg.Variables[name] = val
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.InputFormat {
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("invalid input_format %q: use json or yaml", c.InputFormat)
	}
	switch c.OutputFormat {
	case FormatJSON, FormatPretty, FormatYAML:
	default:
		return fmt.Errorf("invalid output_format %q: use json, pretty or yaml", c.OutputFormat)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d: must not be negative", c.Workers)
	}
	return nil
}
