package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ProjectFile is the per-repository config file, read from the working
// directory.
const ProjectFile = ".sem-merge.yaml"

// Config represents the sem-merge configuration.
type Config struct {
	Provider    string        `yaml:"provider,omitempty"`
	Model       string        `yaml:"model,omitempty"`
	BaseURL     string        `yaml:"baseURL,omitempty"`
	MaxTokens   int           `yaml:"maxTokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     Duration      `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	Extensions  []string      `yaml:"extensions"`
	Remote      RemoteConfig  `yaml:"remote"`
	Cache       CacheConfig   `yaml:"cache"`
	Privacy     PrivacyConfig `yaml:"privacy"`

	// Credentials come from the environment only and are never saved.
	Credentials Credentials `yaml:"-"`
}

// RemoteConfig names the upstream branch documents are merged against.
type RemoteConfig struct {
	Name    string `yaml:"name"`
	Branch  string `yaml:"branch"`
	Backend string `yaml:"backend"`
}

// CacheConfig controls where merge certifications are stored.
type CacheConfig struct {
	Dir        string   `yaml:"dir"`
	PruneAfter Duration `yaml:"pruneAfter"`
}

// PrivacyConfig controls which files may be sent to the provider.
type PrivacyConfig struct {
	SkipSecrets bool     `yaml:"skipSecrets"`
	SkipPaths   []string `yaml:"skipPaths,omitempty"`
}

// Credentials are the provider API keys found in the environment.
type Credentials struct {
	OpenAI   string
	DeepSeek string
}

// Duration is a time.Duration written as "2m" in YAML.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		MaxTokens:   4000,
		Temperature: 0.1,
		Timeout:     Duration(2 * time.Minute),
		Extensions:  []string{".md", ".rst", ".txt", ".adoc"},
		Remote: RemoteConfig{
			Name:    "origin",
			Branch:  "main",
			Backend: "cli",
		},
		Cache: CacheConfig{
			Dir:        ".sem-merge-cache",
			PruneAfter: Duration(7 * 24 * time.Hour),
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for sem-merge.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sem-merge"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "sem-merge"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "sem-merge"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "sem-merge"), nil
	default:
		return filepath.Join(home, ".config", "sem-merge"), nil
	}
}

// ConfigPath returns the full path to the user config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current value. A missing file is not an error.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Save writes the config to the user config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging:
// defaults <- user file <- project file <- env <- overrides.
// The overrides map comes from CLI flags (only set flags should appear).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	userPath, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	if err := LoadFile(&cfg, userPath); err != nil {
		return Config{}, err
	}
	if err := LoadFile(&cfg, ProjectFile); err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envConfig holds raw environment values.
type envConfig struct {
	OpenAIKey   string        `env:"OPENAI_API_KEY"`
	DeepSeekKey string        `env:"DEEPSEEK_API_KEY"`
	Provider    string        `env:"SEM_MERGE_PROVIDER"`
	Model       string        `env:"SEM_MERGE_MODEL"`
	MaxTokens   int           `env:"SEM_MERGE_MAX_TOKENS"`
	BaseURL     string        `env:"SEM_MERGE_BASE_URL"`
	Timeout     time.Duration `env:"SEM_MERGE_TIMEOUT"`
	CacheDir    string        `env:"SEM_MERGE_CACHE_DIR"`
}

func mergeEnv(cfg *Config) error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	cfg.Credentials = Credentials{
		OpenAI:   strings.TrimSpace(e.OpenAIKey),
		DeepSeek: strings.TrimSpace(e.DeepSeekKey),
	}
	if e.Provider != "" {
		cfg.Provider = e.Provider
	}
	if e.Model != "" {
		cfg.Model = e.Model
	}
	if e.MaxTokens > 0 {
		cfg.MaxTokens = e.MaxTokens
	}
	if e.BaseURL != "" {
		cfg.BaseURL = e.BaseURL
	}
	if e.Timeout > 0 {
		cfg.Timeout = Duration(e.Timeout)
	}
	if e.CacheDir != "" {
		cfg.Cache.Dir = e.CacheDir
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists the keys accepted by SetField.
var Keys = []string{
	"provider", "model", "baseURL", "maxTokens", "temperature", "timeout",
	"concurrency", "extensions", "remote.name", "remote.branch",
	"remote.backend", "cache.dir", "cache.pruneAfter", "privacy.skipSecrets",
	"privacy.skipPaths",
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "baseURL":
		cfg.BaseURL = value
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("maxTokens must be a positive integer: %q", value)
		}
		cfg.MaxTokens = n
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("timeout must be a duration: %w", err)
		}
		cfg.Timeout = Duration(d)
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("concurrency must be an integer: %w", err)
		}
		cfg.Concurrency = n
	case "extensions":
		cfg.Extensions = splitList(value)
	case "remote.name":
		cfg.Remote.Name = value
	case "remote.branch":
		cfg.Remote.Branch = value
	case "remote.backend":
		if value != "go-git" && value != "cli" {
			return fmt.Errorf("remote.backend must be go-git or cli, got %q", value)
		}
		cfg.Remote.Backend = value
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.pruneAfter":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("cache.pruneAfter must be a duration: %w", err)
		}
		cfg.Cache.PruneAfter = Duration(d)
	case "privacy.skipSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.skipSecrets must be true or false: %w", err)
		}
		cfg.Privacy.SkipSecrets = b
	case "privacy.skipPaths":
		cfg.Privacy.SkipPaths = splitList(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
