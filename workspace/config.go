package workspace

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configDirName = "crumb_cfg"

// ConfigDir returns the workspace-local configuration directory.
func ConfigDir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, configDirName)
}

// DefaultConfigPath returns crumb_cfg/config.yaml within the workspace.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(ConfigDir(workspace), "config.yaml")
}

// Config matches crumb_cfg/config.yaml inside the workspace.
type Config struct {
	Version     string           `yaml:"version"`
	Breadcrumbs BreadcrumbConfig `yaml:"breadcrumbs"`
	TagClosing  TagClosingConfig `yaml:"tag_closing"`
	Validate    ValidateConfig   `yaml:"validate"`
	History     HistoryConfig    `yaml:"history"`
	Logging     LoggingConfig    `yaml:"logging"`
}

// BreadcrumbConfig toggles the navigation bar behavior.
type BreadcrumbConfig struct {
	Enabled      bool `yaml:"enabled"`
	UseQuickPick bool `yaml:"use_quick_pick"`
}

// TagClosingConfig gates the auto-closing-tag assistant.
type TagClosingConfig struct {
	Languages   []string `yaml:"languages"`
	MinProtocol int      `yaml:"min_protocol"`
}

// ValidateConfig toggles diagnostics publication per source.
type ValidateConfig struct {
	Enabled bool `yaml:"enabled"`
}

// HistoryConfig locates the navigation-history database.
type HistoryConfig struct {
	Path string `yaml:"path"`
	Keep int    `yaml:"keep"`
}

// LoggingConfig describes log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig(workspace string) *Config {
	return &Config{
		Version: "1.0.0",
		Breadcrumbs: BreadcrumbConfig{
			Enabled: true,
		},
		TagClosing: TagClosingConfig{
			Languages:   []string{"javascriptreact", "typescriptreact", "html", "xml"},
			MinProtocol: 3,
		},
		Validate: ValidateConfig{Enabled: true},
		History: HistoryConfig{
			Path: filepath.Join(ConfigDir(workspace), "history.db"),
			Keep: 500,
		},
	}
}

// LoadConfig loads the config or returns defaults when missing.
func LoadConfig(path, workspace string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(workspace), nil
		}
		return nil, err
	}
	cfg := DefaultConfig(workspace)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the config to disk, creating directories as needed.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// TagClosingEnabled reports whether the assistant applies to a language mode.
func (c *Config) TagClosingEnabled(languageID string) bool {
	if c == nil {
		return false
	}
	for _, lang := range c.TagClosing.Languages {
		if lang == languageID {
			return true
		}
	}
	return false
}
