package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

// FileLoader loads YAML configuration from ~/.sdkassist/config.yaml
// (overridable via SDKASSIST_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := defaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}

	return hydrateDefaults(cfg), nil
}

// Save writes the configuration back to the resolved path.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("SDKASSIST_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(userHomeDir(), ".sdkassist", "config.yaml")
}

func ensureConfigDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func defaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Preferences: domain.Preferences{
			TimeoutSeconds: 30,
			TutorialDir:    filepath.Join(userHomeDir(), ".sdkassist", "tutorials"),
			Shell:          "auto",
		},
		Models: []domain.ModelDefinition{
			{
				Name:       "gpt",
				Endpoint:   "https://api.openai.com/v1/chat/completions",
				AuthEnvVar: "OPENAI_API_KEY",
				ModelID:    "gpt-4o-mini",
				MaxTokens:  1024,
			},
			{
				Name:       "claude",
				Endpoint:   "https://api.anthropic.com/v1/messages",
				AuthEnvVar: "ANTHROPIC_API_KEY",
				ModelID:    "claude-3-5-sonnet-20240620",
				MaxTokens:  1024,
				APIFormat: domain.APIFormat{
					AuthHeaderName:    "x-api-key",
					SystemMessageMode: domain.SystemMessageModeSeparate,
					ContentWrapper:    domain.ContentWrapperAnthropic,
					ResponseJSONPath:  domain.AnthropicResponsePath,
					ExtraHeaders:      map[string]string{"anthropic-version": "2023-06-01"},
				},
			},
		},
		Cache: domain.CacheSettings{
			TTL: "1h",
			Dir: filepath.Join(userHomeDir(), ".sdkassist", "cache"),
		},
		RateLimits: []domain.RateLimitRule{
			{Domain: "pypi.org", Limit: 30},
			{Domain: "github.com", Limit: 30},
			{Domain: "readthedocs.org", Limit: 30},
		},
		GitHub: domain.GitHubSettings{
			Enabled:     false,
			TokenEnvVar: "GITHUB_TOKEN",
		},
		Classifier: domain.ClassifierSettings{
			RulesFile: filepath.Join(userHomeDir(), ".sdkassist", "error_rules.yaml"),
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.Preferences.TimeoutSeconds == 0 {
		cfg.Preferences.TimeoutSeconds = 30
	}
	if cfg.Preferences.TutorialDir == "" {
		cfg.Preferences.TutorialDir = filepath.Join(userHomeDir(), ".sdkassist", "tutorials")
	}
	if cfg.Preferences.Shell == "" {
		cfg.Preferences.Shell = "auto"
	}
	if cfg.Cache.TTL == "" {
		cfg.Cache.TTL = "1h"
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = filepath.Join(userHomeDir(), ".sdkassist", "cache")
	}
	if len(cfg.RateLimits) == 0 {
		cfg.RateLimits = defaultConfig().RateLimits
	}
	if cfg.GitHub.TokenEnvVar == "" {
		cfg.GitHub.TokenEnvVar = "GITHUB_TOKEN"
	}
	return cfg
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
