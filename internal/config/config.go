package config

import (
	"path/filepath"

	"github.com/caarlos0/env/v10"
)

// Config is read from the environment. cmd/relseg loads a .env file first,
// so either works.
type Config struct {
	DataDir string `env:"RELSEG_DATA_DIR" envDefault:".relseg"`

	OpenAIBaseURL  string `env:"RELSEG_OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIAPIKey   string `env:"RELSEG_OPENAI_API_KEY"`
	EmbeddingModel string `env:"RELSEG_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbedCacheSize int    `env:"RELSEG_EMBED_CACHE_SIZE" envDefault:"2048"`

	// Reranking is optional; leaving the URL empty disables it.
	RerankBaseURL string `env:"RELSEG_RERANK_BASE_URL"`
	RerankAPIKey  string `env:"RELSEG_RERANK_API_KEY"`
	RerankModel   string `env:"RELSEG_RERANK_MODEL" envDefault:"rerank-v3.5"`

	Preset      string `env:"RELSEG_PRESET" envDefault:"balanced"`
	Aggregation string `env:"RELSEG_AGGREGATION" envDefault:"max"`
	TopK        int    `env:"RELSEG_TOP_K" envDefault:"50"`

	// ProvidersFile optionally points at a yaml file describing providers
	// by type tag; it overrides the direct env-based wiring.
	ProvidersFile string `env:"RELSEG_PROVIDERS_FILE"`

	LogLevel string `env:"RELSEG_LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SQLitePath is where the chunk store database lives.
func (c Config) SQLitePath() string { return filepath.Join(c.DataDir, "chunks.db") }

// VectorPath is the chromem persistence directory.
func (c Config) VectorPath() string { return filepath.Join(c.DataDir, "vectors") }
