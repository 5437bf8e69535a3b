// Package config loads the project configuration file, .overloadts.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up from the project root
// upwards.
const FileName = ".overloadts.yaml"

// Config is the project configuration. Every field has a usable zero value.
type Config struct {
	// OperatorModule is the module exporting the `Operator` enum accepted
	// as computed overload keys.
	OperatorModule string `yaml:"operatorModule,omitempty"`

	// WarningsAsErrors escalates declaration warnings so they stop the run.
	WarningsAsErrors bool `yaml:"warningsAsErrors,omitempty"`

	// Match selects the binary matching strategy: "nested" or "combined".
	Match string `yaml:"match,omitempty"`

	// LogLevel is one of silent, error, warning, verbose.
	LogLevel string `yaml:"logLevel,omitempty"`

	// SourceMaps writes a .map file next to every rewritten output.
	SourceMaps bool `yaml:"sourceMaps,omitempty"`

	// OutDir receives rewritten files, mirroring the source layout. Empty
	// means rewritten text is only reported, never written.
	OutDir string `yaml:"outDir,omitempty"`

	// Ignore holds gitignore-style rules on top of the built-in ones.
	Ignore []string `yaml:"ignore,omitempty"`

	// Extensions restricts which source extensions are scanned.
	Extensions []string `yaml:"extensions,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses configuration content. path is used only for error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// Find searches for the configuration file starting from dir and walking
// up to parent directories. It returns "" when none exists.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range []string{FileName, strings.TrimSuffix(FileName, ".yaml") + ".yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Discover finds and loads the configuration for dir, falling back to
// Default when there is no file. It returns the path it loaded, if any.
func Discover(dir string) (*Config, string, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func (c *Config) validate(path string) error {
	switch strings.ToLower(c.Match) {
	case "", "nested", "combined":
	default:
		return fmt.Errorf("%s: match must be nested or combined, got %q", path, c.Match)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "silent", "error", "warning", "verbose":
	default:
		return fmt.Errorf("%s: logLevel must be silent, error, warning or verbose, got %q", path, c.LogLevel)
	}
	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%s: extensions[%d]: %q must start with a dot", path, i, ext)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.OperatorModule == "" {
		c.OperatorModule = "boperators"
	}
	if c.Match == "" {
		c.Match = "nested"
	}
	if c.LogLevel == "" {
		c.LogLevel = "verbose"
	}
	c.Match = strings.ToLower(c.Match)
	c.LogLevel = strings.ToLower(c.LogLevel)
}

// AllowsExtension reports whether files with ext should be scanned.
func (c *Config) AllowsExtension(ext string) bool {
	if len(c.Extensions) == 0 {
		return true
	}
	for _, allowed := range c.Extensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}
