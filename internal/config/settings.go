package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the content of a settings file. Every field is optional; unset
// fields leave the command-line defaults in place.
type Settings struct {
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`
	Plugins       []string      `yaml:"plugins"`
	PluginTimeout time.Duration `yaml:"plugin_timeout"`
	Count         CountSettings `yaml:"count"`
}

// CountSettings configures the primitive count.
type CountSettings struct {
	TextAsTriangles      *bool    `yaml:"text_as_triangles"`
	Approximate          *bool    `yaml:"approximate"`
	Decimation           string   `yaml:"decimation"`
	DecimationPercentage *float64 `yaml:"decimation_percentage"`
}

// Load reads the settings file at path.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes settings from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Settings, error) {
	var s Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &s, nil
}
