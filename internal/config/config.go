// Package config provides configuration loading and structs for kotae.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/kotae/internal/apperr"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool              `yaml:"debug"`
	LogLevel    string            `yaml:"log_level"`
	Server      ServerConfig      `yaml:"server"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Vector      VectorConfig      `yaml:"vector"`
	Generation  GenerationConfig  `yaml:"generation"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Corpus      CorpusConfig      `yaml:"corpus"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string   `yaml:"host" validate:"required"`
	Port               int      `yaml:"port" validate:"gt=0,lte=65535"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" validate:"gt=0"`
}

// CredentialsConfig controls where API keys are looked up.
type CredentialsConfig struct {
	// EnvFile is a dotenv file loaded before reading key variables. Missing files are ignored.
	EnvFile string `yaml:"env_file"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider      string `yaml:"provider" validate:"oneof=onnx openai gemini hash"`
	Model         string `yaml:"model"`
	ModelPath     string `yaml:"model_path"`
	VocabPath     string `yaml:"vocab_path"`
	LibraryPath   string `yaml:"library_path"`
	Dimensions    int    `yaml:"dimensions" validate:"gt=0"`
	MaxTokens     int    `yaml:"max_tokens" validate:"gt=2"`
	CacheSize     int    `yaml:"cache_size" validate:"gte=0"`
	BatchSize     int    `yaml:"batch_size" validate:"gt=0"`
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	APIKeyEnv     string `yaml:"api_key_env"`
	AllowFallback *bool  `yaml:"allow_fallback"`
}

// FallbackOrDefault returns whether a failed ONNX setup may fall back to the hash embedder;
// defaults to true when unset.
func (e *EmbeddingConfig) FallbackOrDefault() bool {
	if e.AllowFallback != nil {
		return *e.AllowFallback
	}
	return true
}

// VectorConfig selects the nearest-neighbor index.
type VectorConfig struct {
	IndexType   string `yaml:"index_type" validate:"oneof=memory faiss pgvector"`
	DatabaseURL string `yaml:"database_url" validate:"required_if=IndexType pgvector"`
	Table       string `yaml:"table"`
}

// GenerationConfig selects and tunes the hosted LLM.
type GenerationConfig struct {
	Provider     string `yaml:"provider" validate:"oneof=openai gemini"`
	Model        string `yaml:"model" validate:"required"`
	MaxTokens    int    `yaml:"max_tokens" validate:"gt=0"`
	SystemPrompt string `yaml:"system_prompt"`
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	APIKeyEnv    string `yaml:"api_key_env"`
	TimeoutSecs  int    `yaml:"timeout_secs" validate:"gt=0"`
}

// RetrievalConfig holds retrieval defaults.
type RetrievalConfig struct {
	TopK int `yaml:"top_k" validate:"gt=0"`
}

// CorpusConfig lists the documents to load at startup.
type CorpusConfig struct {
	Documents  []string `yaml:"documents"`
	Paths      []string `yaml:"paths"`
	Extensions []string `yaml:"extensions"`
	// ChunkWords splits long files into overlapping windows; 0 keeps each file whole.
	ChunkWords   int `yaml:"chunk_words" validate:"gte=0"`
	ChunkOverlap int `yaml:"chunk_overlap" validate:"gte=0,ltfield=ChunkWords|eq=0"`
}

var validate = validator.New()

// Default returns a config with all defaults applied and no file backing it.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Credentials.EnvFile = expandPath(cfg.Credentials.EnvFile, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Embedding.VocabPath = expandPath(cfg.Embedding.VocabPath, configDir)
	cfg.Embedding.LibraryPath = expandPath(cfg.Embedding.LibraryPath, configDir)
	for i := range cfg.Corpus.Paths {
		cfg.Corpus.Paths[i] = expandPath(cfg.Corpus.Paths[i], configDir)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks field constraints after defaults have been applied.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GenerationAPIKey returns the key for the generation provider.
func (c *Config) GenerationAPIKey() (string, error) {
	return resolveAPIKey(c.Generation.APIKey, c.Generation.APIKeyEnv, c.Credentials.EnvFile)
}

// EmbeddingAPIKey returns the key for a hosted embedding provider.
func (c *Config) EmbeddingAPIKey() (string, error) {
	return resolveAPIKey(c.Embedding.APIKey, c.Embedding.APIKeyEnv, c.Credentials.EnvFile)
}

// resolveAPIKey prefers an explicit key, then the environment after loading envFile.
// Variables already present in the environment are never overridden by the file.
func resolveAPIKey(explicit, envName, envFile string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if envName == "" {
		return "", apperr.New(apperr.KindMissingCredential, "resolve api key", "no api key or api_key_env configured", nil)
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}
	key := strings.TrimSpace(os.Getenv(envName))
	if key == "" {
		return "", apperr.New(apperr.KindMissingCredential, "resolve api key", envName+" is not set", nil)
	}
	return key, nil
}

// expandPath resolves config-relative paths. Paths starting with "./" are relative to configDir,
// "~/" is the home directory, anything else is left as given.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
