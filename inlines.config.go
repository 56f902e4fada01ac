package inlines

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config file extensions
const (
	ConfigExtYAML = ".yaml"
	ConfigExtYML  = ".yml"
	ConfigExtTOML = ".toml"
)

// Config is the file form of renderer and render settings.
type Config struct {
	OpenDelim     string         `yaml:"open_delim" toml:"open_delim"`
	CloseDelim    string         `yaml:"close_delim" toml:"close_delim"`
	Media         string         `yaml:"media" toml:"media"`
	RaiseErrors   bool           `yaml:"raise_errors" toml:"raise_errors"`
	LogErrors     bool           `yaml:"log_errors" toml:"log_errors"`
	VerboseErrors *bool          `yaml:"verbose_errors" toml:"verbose_errors"`
	Debug         *bool          `yaml:"debug" toml:"debug"`
	TemplateDir   string         `yaml:"template_dir" toml:"template_dir"`
	Definitions   string         `yaml:"definitions" toml:"definitions"`
	Postgres      PostgresSource `yaml:"postgres" toml:"postgres"`
}

// PostgresSource configures the postgres object store.
type PostgresSource struct {
	DSN   string `yaml:"dsn" toml:"dsn"`
	Table string `yaml:"table" toml:"table"`
}

// LoadConfig reads a .yaml, .yml or .toml config file and applies the
// INLINES_DEBUG environment override.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigRead, path, err)
	}

	cfg, err := ParseConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigDecode, path, err)
	}

	// Relative paths are resolved against the config file.
	dir := filepath.Dir(path)
	if cfg.TemplateDir != StringEmpty && !filepath.IsAbs(cfg.TemplateDir) {
		cfg.TemplateDir = filepath.Join(dir, cfg.TemplateDir)
	}
	if cfg.Definitions != StringEmpty && !filepath.IsAbs(cfg.Definitions) {
		cfg.Definitions = filepath.Join(dir, cfg.Definitions)
	}
	return cfg, nil
}

// ParseConfig decodes config data in the format named by ext and applies
// the environment override.
func ParseConfig(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	switch strings.ToLower(ext) {
	case ConfigExtYAML, ConfigExtYML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case ConfigExtTOML:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, err
		}
	default:
		return nil, NewConfigError(ErrMsgConfigFormat, ext, nil)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	v, ok := os.LookupEnv(EnvDebug)
	if !ok {
		return nil
	}
	debug, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return NewConfigError(ErrMsgConfigEnv, EnvDebug, err)
	}
	c.Debug = &debug
	return nil
}

// Options returns the renderer options the config sets.
func (c *Config) Options() []Option {
	var opts []Option
	if c.OpenDelim != StringEmpty || c.CloseDelim != StringEmpty {
		opts = append(opts, WithDelimiters(c.OpenDelim, c.CloseDelim))
	}
	if c.Debug != nil {
		opts = append(opts, WithDebug(*c.Debug))
	}
	return opts
}

// RenderOptions returns the per-render options the config sets.
func (c *Config) RenderOptions() []RenderOption {
	opts := []RenderOption{
		WithMedia(c.Media),
		WithRaiseErrors(c.RaiseErrors),
		WithLogErrors(c.LogErrors),
	}
	if c.VerboseErrors != nil {
		opts = append(opts, WithVerboseErrors(*c.VerboseErrors))
	}
	return opts
}
