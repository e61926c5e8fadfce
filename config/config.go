package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/m4xw311/review-mcp/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxDiffChars    = 120000
	DefaultMaxContextBytes = 160000
	DefaultMaxFiles        = 30
	DefaultLLM             = "openai"
	DefaultModel           = "gpt-4o-2024-08-06"
)

// Providers lists the accepted values of the llm setting.
var Providers = []string{"openai", "anthropic", "gemini", "bedrock", "mock"}

// Config is read once at process start and treated as immutable afterwards.
type Config struct {
	// AllowedRoots restricts which directories may be reviewed. Empty means
	// any directory that is a git repository.
	AllowedRoots    []string `koanf:"allowed_roots"`
	MaxDiffChars    int      `koanf:"max_diff_chars"`
	MaxContextBytes int64    `koanf:"max_context_bytes"`
	MaxFiles        int      `koanf:"max_files"`
	// HiddenPaths are doublestar globs, relative to the repository root, of
	// files never sent to the model as context.
	HiddenPaths      []string `koanf:"hidden_paths"`
	LLMClient        string   `koanf:"llm"`
	Model            string   `koanf:"model"`
	APIKey           string   `koanf:"api_key"`
	BaseURL          string   `koanf:"base_url"`
	ValidateResponse bool     `koanf:"validate_response"`
	LogLevel         string   `koanf:"log_level"`
}

// envKeys maps environment variables onto config keys.
var envKeys = map[string]string{
	"REVIEW_ALLOWED_ROOTS":     "allowed_roots",
	"REVIEW_MAX_DIFF_CHARS":    "max_diff_chars",
	"REVIEW_MAX_CTX_BYTES":     "max_context_bytes",
	"REVIEW_MAX_FILES":         "max_files",
	"REVIEW_HIDDEN_PATHS":      "hidden_paths",
	"REVIEW_LLM":               "llm",
	"REVIEW_LOG_LEVEL":         "log_level",
	"REVIEW_VALIDATE_RESPONSE": "validate_response",
	"OPENAI_REVIEW_MODEL":      "model",
}

// apiKeyEnv names the credential variable for each provider that takes one.
var apiKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// LoadConfig loads configuration. With an explicit path only that file is
// read; otherwise the user's ~/.review-mcp/config.yaml and then the working
// directory's .review-mcp/config.yaml are read, the latter taking precedence.
// Environment variables override both.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"max_diff_chars":    DefaultMaxDiffChars,
		"max_context_bytes": DefaultMaxContextBytes,
		"max_files":         DefaultMaxFiles,
		"llm":               DefaultLLM,
		"model":             DefaultModel,
		"log_level":         "info",
		"validate_response": false,
	}, "."), nil); err != nil {
		return nil, errors.Wrapf(err, "error loading defaults")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yamlParser{}); err != nil {
			return nil, errors.Wrapf(err, "error loading config %s", path)
		}
	} else {
		for _, p := range defaultPaths() {
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if err := k.Load(file.Provider(p), yamlParser{}); err != nil {
				return nil, errors.Wrapf(err, "error loading config %s", p)
			}
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, errors.Wrapf(err, "error loading environment")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config")
	}

	if cfg.APIKey == "" {
		if name, ok := apiKeyEnv[cfg.LLMClient]; ok {
			cfg.APIKey = os.Getenv(name)
		}
	}
	if cfg.BaseURL == "" && cfg.LLMClient == "openai" {
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if cfg.BaseURL == "" && cfg.LLMClient == "bedrock" {
		cfg.BaseURL = os.Getenv("BEDROCK_ENDPOINT_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects negative limits and unknown providers.
func (c *Config) Validate() error {
	if c.MaxDiffChars < 0 {
		return errors.New("max_diff_chars must not be negative, got %d", c.MaxDiffChars)
	}
	if c.MaxContextBytes < 0 {
		return errors.New("max_context_bytes must not be negative, got %d", c.MaxContextBytes)
	}
	if c.MaxFiles < 0 {
		return errors.New("max_files must not be negative, got %d", c.MaxFiles)
	}
	for _, p := range Providers {
		if c.LLMClient == p {
			return nil
		}
	}
	return errors.New("unknown llm %q, expected one of %s", c.LLMClient, strings.Join(Providers, ", "))
}

func defaultPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".review-mcp", "config.yaml"))
	}
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, ".review-mcp", "config.yaml"))
	}
	return paths
}

// envValue keeps only the variables listed in envKeys. List-valued settings
// are split here so that REVIEW_ALLOWED_ROOTS follows the platform's path
// list separator.
func envValue(name, value string) (string, interface{}) {
	key, ok := envKeys[name]
	if !ok {
		return "", nil
	}
	switch key {
	case "allowed_roots":
		return key, splitNonEmpty(filepath.SplitList(value))
	case "hidden_paths":
		return key, splitNonEmpty(strings.Split(value, ","))
	}
	return key, value
}

func splitNonEmpty(parts []string) []string {
	out := []string{}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// yamlParser lets koanf read the YAML config files.
type yamlParser struct{}

func (yamlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (yamlParser) Marshal(m map[string]interface{}) ([]byte, error) {
	return yaml.Marshal(m)
}
