// Package config loads the personas configuration file.
//
// Defaults are applied first, then the YAML file (if present) is decoded on
// top of them, then environment overrides are applied.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Load.
const (
	EnvConfig     = "PERSONAS_CONFIG"
	EnvLogLevel   = "PERSONAS_LOG_LEVEL"
	EnvUserDir    = "PERSONAS_USER_DIR"
	EnvProjectDir = "PERSONAS_PROJECT_DIR"
)

// Config is the on-disk configuration.
type Config struct {
	UserDir       string            `yaml:"user_dir"`
	ProjectDir    string            `yaml:"project_dir"`
	LogLevel      string            `yaml:"log_level"`
	LogFormat     string            `yaml:"log_format"`
	DisabledTools []string          `yaml:"disabled_tools"`
	ModelAliases  map[string]string `yaml:"model_aliases"`
	ExtraPersonas []string          `yaml:"extra_personas"`

	// Path the configuration was read from, or "" when only defaults apply.
	Path string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UserDir:    defaultUserDir(),
		ProjectDir: filepath.Join(".claude", "agents"),
		LogLevel:   "info",
		LogFormat:  "console",
	}
}

// Load reads the configuration from path. An empty path means
// $PERSONAS_CONFIG, then <UserConfigDir>/personas/config.yaml. A missing file
// is not an error when the path was not given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if env := os.Getenv(EnvConfig); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultPath()
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
			cfg.Path = path
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.expand()
	return cfg, nil
}

// DefaultPath returns <UserConfigDir>/personas/config.yaml, or "" when the
// user config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "personas", "config.yaml")
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvUserDir); ok {
		c.UserDir = v
	}
	if v, ok := os.LookupEnv(EnvProjectDir); ok {
		c.ProjectDir = v
	}
}

// expand resolves a leading ~ in directory settings.
func (c *Config) expand() {
	c.UserDir = expandHome(c.UserDir)
	c.ProjectDir = expandHome(c.ProjectDir)
	for i, p := range c.ExtraPersonas {
		c.ExtraPersonas[i] = expandHome(p)
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func defaultUserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "agents")
}
