package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/scenegrid/internal/app"
	"github.com/specialistvlad/scenegrid/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*p = append(*p, s)
		}
	}
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("scenegrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
scenegrid - Load a scene graph and count the primitives it renders.

Usage:
  scenegrid [options] [SCENE_PATH]

Arguments:
  SCENE_PATH
    Path to a single .hcl scene file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaults := app.DefaultConfig()
	var plugins pathList
	configFlag := flagSet.String("config", "", "Path to a YAML settings file. Command-line options take precedence.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.Var(&plugins, "plugins", "Lua plugin file or directory. May be repeated or comma-separated.")
	pluginTimeoutFlag := flagSet.Duration("plugin-timeout", defaults.PluginTimeout, "Run time limit per plugin file. 0 keeps the built-in limit.")
	textFlag := flagSet.Bool("text-as-triangles", defaults.TextAsTriangles, "Count 3D text glyphs as triangles instead of texts.")
	approxFlag := flagSet.Bool("approximate", defaults.Approximate, "Let curved shapes use a coarse tessellation.")
	decimationFlag := flagSet.String("decimation", defaults.Decimation, "Decimation type. Options: 'automatic', 'highest', 'lowest', 'percentage'.")
	percentageFlag := flagSet.Float64("decimation-percentage", defaults.DecimationPercentage, "Detail kept by 'percentage' decimation, between 0 and 1.")
	typesFlag := flagSet.Bool("types", false, "Print the registered type hierarchy.")
	writeFlag := flagSet.Bool("write", false, "Print the loaded scene in the scene file format.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	cfg := defaults
	if *configFlag != "" {
		settings, err := config.Load(*configFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		applySettings(&cfg, settings)
		slog.Debug("Settings file applied.", "path", *configFlag)
	}

	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-format":
			cfg.LogFormat = *logFormatFlag
		case "log-level":
			cfg.LogLevel = *logLevelFlag
		case "plugins":
			cfg.PluginPaths = plugins
		case "plugin-timeout":
			cfg.PluginTimeout = *pluginTimeoutFlag
		case "text-as-triangles":
			cfg.TextAsTriangles = *textFlag
		case "approximate":
			cfg.Approximate = *approxFlag
		case "decimation":
			cfg.Decimation = *decimationFlag
		case "decimation-percentage":
			cfg.DecimationPercentage = *percentageFlag
		}
	})
	cfg.DumpTypes = *typesFlag
	cfg.WriteScene = *writeFlag
	if flagSet.NArg() > 0 {
		cfg.ScenePath = flagSet.Arg(0)
	}
	slog.Debug("Scene path determined.", "path", cfg.ScenePath)

	if cfg.ScenePath == "" && !cfg.DumpTypes {
		slog.Debug("No scene path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", validated)
	return validated, false, nil
}

func applySettings(cfg *app.Config, s *config.Settings) {
	if s.LogLevel != "" {
		cfg.LogLevel = s.LogLevel
	}
	if s.LogFormat != "" {
		cfg.LogFormat = s.LogFormat
	}
	if len(s.Plugins) > 0 {
		cfg.PluginPaths = s.Plugins
	}
	if s.PluginTimeout > 0 {
		cfg.PluginTimeout = s.PluginTimeout
	}
	if s.Count.TextAsTriangles != nil {
		cfg.TextAsTriangles = *s.Count.TextAsTriangles
	}
	if s.Count.Approximate != nil {
		cfg.Approximate = *s.Count.Approximate
	}
	if s.Count.Decimation != "" {
		cfg.Decimation = s.Count.Decimation
	}
	if s.Count.DecimationPercentage != nil {
		cfg.DecimationPercentage = *s.Count.DecimationPercentage
	}
}
