// Package config loads tplx configuration: an embedded default YAML document
// with an optional user file merged on top.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tplx/pkg/settings"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	defaultOnce sync.Once
	defaultCfg  Config
	defaultErr  error
)

// Config is the merged configuration.
type Config struct {
	CustomFields CustomFieldsConfig     `yaml:"customFields" json:"customFields"`
	Editor       EditorConfig           `yaml:"editor" json:"editor"`
	Server       ServerConfig           `yaml:"server" json:"server"`
	Preview      PreviewConfig          `yaml:"preview" json:"preview"`
	Themes       map[string]ThemeConfig `yaml:"themes" json:"themes"`
}

type CustomFieldsConfig struct {
	URL        string   `yaml:"url" json:"url"`
	TokenEnv   string   `yaml:"tokenEnv" json:"tokenEnv"`
	Files      []string `yaml:"files" json:"files"`
	Timeout    Duration `yaml:"timeout" json:"timeout"`
	ActiveOnly bool     `yaml:"activeOnly" json:"activeOnly"`
}

type EditorConfig struct {
	MaxVisible int    `yaml:"maxVisible" json:"maxVisible"`
	NoColor    bool   `yaml:"noColor" json:"noColor"`
	Theme      string `yaml:"theme" json:"theme"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr" json:"addr"`
	SessionIdle    Duration `yaml:"sessionIdle" json:"sessionIdle"`
	AllowedOrigins []string `yaml:"allowedOrigins" json:"allowedOrigins"`
}

type PreviewConfig struct {
	SampleData string `yaml:"sampleData" json:"sampleData"`
}

// ThemeConfig holds terminal colors as ANSI numbers or names. Empty values
// leave the terminal default.
type ThemeConfig struct {
	Accent        ColorValue `yaml:"accent" json:"accent"`
	Text          ColorValue `yaml:"text" json:"text"`
	Muted         ColorValue `yaml:"muted" json:"muted"`
	SelectedFG    ColorValue `yaml:"selected_fg" json:"selected_fg"`
	SelectedBG    ColorValue `yaml:"selected_bg" json:"selected_bg"`
	Category      ColorValue `yaml:"category" json:"category"`
	Border        ColorValue `yaml:"border" json:"border"`
	StatusError   ColorValue `yaml:"status_error" json:"status_error"`
	StatusSuccess ColorValue `yaml:"status_success" json:"status_success"`
}

// ColorValue stores a color token and accepts YAML ints or strings.
type ColorValue string

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	*c = ColorValue(value.Value)
	return nil
}

// Duration is a time.Duration written as "10s" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if strings.TrimSpace(value.Value) == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", value.Line, value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// DefaultYAML returns a copy of the embedded default config.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses the embedded default config once.
func Default() (Config, error) {
	defaultOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			defaultErr = errors.New("embedded default config is empty")
			return
		}
		if err := yaml.Unmarshal(embeddedDefaultConfig, &defaultCfg); err != nil {
			defaultErr = fmt.Errorf("decode embedded default config: %w", err)
		}
	})
	return defaultCfg.clone(), defaultErr
}

// Load returns the defaults with the file at path merged on top. An empty
// path returns the defaults. Keys absent from the file keep their default;
// lists, scalars and whole themes present in the file replace the default.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports settings no command can run with.
func (c Config) Validate() error {
	if c.Editor.MaxVisible <= 0 {
		return fmt.Errorf("editor.maxVisible must be positive, got %d", c.Editor.MaxVisible)
	}
	if _, ok := c.Themes[c.Editor.Theme]; !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", c.Editor.Theme, strings.Join(c.ThemeNames(), ", "))
	}
	if c.CustomFields.Timeout < 0 {
		return errors.New("customFields.timeout must not be negative")
	}
	if c.Server.SessionIdle < 0 {
		return errors.New("server.sessionIdle must not be negative")
	}
	return nil
}

// ThemeNames returns the configured theme names in sorted order.
func (c Config) ThemeNames() []string {
	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Theme returns the selected theme.
func (c Config) Theme() ThemeConfig {
	return c.Themes[c.Editor.Theme]
}

func (c Config) clone() Config {
	out := c
	out.CustomFields.Files = append([]string(nil), c.CustomFields.Files...)
	out.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	out.Themes = make(map[string]ThemeConfig, len(c.Themes))
	for k, v := range c.Themes {
		out.Themes[k] = v
	}
	return out
}

// ResolvePath returns explicit if set, otherwise the XDG config file
// ($XDG_CONFIG_HOME/tplx/config.yaml or ~/.config/tplx/config.yaml) if it
// exists, otherwise "".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}
