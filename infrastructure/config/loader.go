package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileLoader decodes one configuration file format
type FileLoader interface {
	Load(reader io.Reader, target interface{}) error
	Extensions() []string
}

// Loader layers configuration sources: defaults, then an optional file,
// then environment variables
type Loader struct {
	path        string
	fileLoaders map[string]FileLoader
}

// NewLoader creates a loader reading the configuration file at path.
// An empty path skips the file layer.
func NewLoader(path string) *Loader {
	l := &Loader{
		path:        path,
		fileLoaders: make(map[string]FileLoader),
	}
	l.RegisterLoader(YAMLLoader{})
	l.RegisterLoader(TOMLLoader{})
	l.RegisterLoader(JSONLoader{})
	return l
}

// RegisterLoader registers a file loader for its extensions
func (l *Loader) RegisterLoader(loader FileLoader) {
	for _, ext := range loader.Extensions() {
		l.fileLoaders[ext] = loader
	}
}

// Load builds and validates the configuration
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	cfg.Sources = []string{"defaults"}

	if l.path != "" {
		if err := l.loadFile(cfg); err != nil {
			return nil, err
		}
		cfg.Sources = append(cfg.Sources, l.path)
	}

	cfg.applyEnvironment()
	cfg.Sources = append(cfg.Sources, "environment")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(cfg *Config) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(l.path)), ".")
	loader, ok := l.fileLoaders[ext]
	if !ok {
		return fmt.Errorf("unsupported config file format %q", ext)
	}

	file, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := loader.Load(file, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", l.path, err)
	}
	return nil
}

// YAMLLoader loads .yaml and .yml files
type YAMLLoader struct{}

// Load implements FileLoader
func (YAMLLoader) Load(reader io.Reader, target interface{}) error {
	err := yaml.NewDecoder(reader).Decode(target)
	if err == io.EOF {
		return nil
	}
	return err
}

// Extensions implements FileLoader
func (YAMLLoader) Extensions() []string { return []string{"yaml", "yml"} }

// TOMLLoader loads .toml files
type TOMLLoader struct{}

// Load implements FileLoader
func (TOMLLoader) Load(reader io.Reader, target interface{}) error {
	_, err := toml.NewDecoder(reader).Decode(target)
	return err
}

// Extensions implements FileLoader
func (TOMLLoader) Extensions() []string { return []string{"toml"} }

// JSONLoader loads .json files
type JSONLoader struct{}

// Load implements FileLoader
func (JSONLoader) Load(reader io.Reader, target interface{}) error {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// Extensions implements FileLoader
func (JSONLoader) Extensions() []string { return []string{"json"} }
