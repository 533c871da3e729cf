package app

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/specialistvlad/scenegrid/internal/action"
	"github.com/specialistvlad/scenegrid/internal/rtype"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScenePath   string   // hcl file or directory
	PluginPaths []string // lua files or directories

	LogFormat     string
	LogLevel      string
	PluginTimeout time.Duration

	TextAsTriangles      bool
	Approximate          bool
	Decimation           string
	DecimationPercentage float64

	DumpTypes  bool
	WriteScene bool

	// Registry receives all type registrations. Nil gives the app a registry
	// of its own.
	Registry *rtype.Registry
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		LogFormat:            "text",
		LogLevel:             "info",
		TextAsTriangles:      true,
		Decimation:           action.DecimationAutomatic.String(),
		DecimationPercentage: 1,
	}
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScenePath == "" && !cfg.DumpTypes {
		return nil, errors.New("ScenePath is a required configuration field and cannot be empty")
	}
	if cfg.WriteScene && cfg.ScenePath == "" {
		return nil, errors.New("writing the scene requires a ScenePath")
	}
	if _, err := action.ParseDecimationType(cfg.Decimation); err != nil {
		return nil, err
	}
	if math.IsNaN(cfg.DecimationPercentage) || cfg.DecimationPercentage < 0 || cfg.DecimationPercentage > 1 {
		return nil, fmt.Errorf("decimation percentage %v is outside [0, 1]", cfg.DecimationPercentage)
	}
	if cfg.PluginTimeout < 0 {
		return nil, errors.New("plugin timeout cannot be negative")
	}

	return &cfg, nil
}
