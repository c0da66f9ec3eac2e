package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Anthropic AnthropicConfig
	Extract   ExtractConfig
	Judge     JudgeConfig
	Matching  MatchThresholds
	Fusion    FusionWeights
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string `envconfig:"PORT" default:"8080"`
	Host            string `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// AnthropicConfig holds inference-service configuration
type AnthropicConfig struct {
	APIKey     string        `envconfig:"ANTHROPIC_API_KEY"`
	BaseURL    string        `envconfig:"ANTHROPIC_API_URL" default:"https://api.anthropic.com"`
	Model      string        `envconfig:"EXTRACTION_MODEL" default:"claude-opus-4-5-20251101"`
	JudgeModel string        `envconfig:"JUDGE_MODEL" default:"claude-haiku-4-5-20251001"`
	Timeout    time.Duration `envconfig:"ANTHROPIC_TIMEOUT" default:"120s"`
}

// ExtractConfig holds extraction pipeline tuning
type ExtractConfig struct {
	MaxRetries      int           `envconfig:"EXTRACT_MAX_RETRIES" default:"3"`
	InitialInterval time.Duration `envconfig:"EXTRACT_RETRY_INITIAL" default:"2s"`
	MaxElapsedTime  time.Duration `envconfig:"EXTRACT_RETRY_ELAPSED" default:"90s"`
	BatchWorkers    int           `envconfig:"EXTRACT_BATCH_WORKERS" default:"4"`
}

// JudgeConfig holds quality-judge tuning
type JudgeConfig struct {
	Enabled        bool `envconfig:"JUDGE_ENABLED" default:"false"`
	MaxAspects     int  `envconfig:"JUDGE_MAX_ASPECTS" default:"5"`
	MaxTriples     int  `envconfig:"JUDGE_MAX_TRIPLES" default:"5"`
	MaxCompetitive int  `envconfig:"JUDGE_MAX_COMPETITIVE" default:"3"`
	MaxDivergences int  `envconfig:"JUDGE_MAX_DIVERGENCES" default:"5"`
}

// MatchThresholds holds per-signal-type fuzzy-match thresholds. These are
// configuration, not per-item constants: entity names demand near-exact
// similarity while key phrases tolerate heavy paraphrase.
type MatchThresholds struct {
	Entity     float64 `yaml:"entity"`
	Aspect     float64 `yaml:"aspect"`
	Topic      float64 `yaml:"topic"`
	KeyPhrase  float64 `yaml:"key_phrase"`
	Vocabulary float64 `yaml:"vocabulary"`
	Metaphor   float64 `yaml:"metaphor"`
}

// FusionWeights holds modality weights for composite sentiment
type FusionWeights struct {
	Text  float64 `yaml:"text"`
	Audio float64 `yaml:"audio"`
	Video float64 `yaml:"video"`
}

// DefaultThresholds returns the calibrated per-signal-type thresholds
func DefaultThresholds() MatchThresholds {
	return MatchThresholds{
		Entity:     0.8,
		Aspect:     0.6,
		Topic:      0.5,
		KeyPhrase:  0.4,
		Vocabulary: 0.8,
		Metaphor:   0.5,
	}
}

// DefaultFusionWeights returns the three-modality fusion weights
func DefaultFusionWeights() FusionWeights {
	return FusionWeights{Text: 0.40, Audio: 0.35, Video: 0.25}
}

// Load loads configuration from environment variables, with optional YAML
// overrides for matching thresholds and fusion weights
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		Matching: DefaultThresholds(),
		Fusion:   DefaultFusionWeights(),
	}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}
	if err := envconfig.Process("", &cfg.Anthropic); err != nil {
		return nil, fmt.Errorf("failed to parse anthropic config: %w", err)
	}
	if err := envconfig.Process("", &cfg.Extract); err != nil {
		return nil, fmt.Errorf("failed to parse extract config: %w", err)
	}
	if err := envconfig.Process("", &cfg.Judge); err != nil {
		return nil, fmt.Errorf("failed to parse judge config: %w", err)
	}

	if path := os.Getenv("MATCHING_CONFIG"); path != "" {
		if err := loadYAML(path, &cfg.Matching); err != nil {
			return nil, fmt.Errorf("failed to load matching config %s: %w", path, err)
		}
	}
	if path := os.Getenv("FUSION_CONFIG"); path != "" {
		if err := loadYAML(path, &cfg.Fusion); err != nil {
			return nil, fmt.Errorf("failed to load fusion config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	sum := c.Fusion.Text + c.Fusion.Audio + c.Fusion.Video
	if sum <= 0 {
		return fmt.Errorf("fusion weights must sum to a positive value, got %.2f", sum)
	}
	for name, th := range map[string]float64{
		"entity":     c.Matching.Entity,
		"aspect":     c.Matching.Aspect,
		"topic":      c.Matching.Topic,
		"key_phrase": c.Matching.KeyPhrase,
		"vocabulary": c.Matching.Vocabulary,
		"metaphor":   c.Matching.Metaphor,
	} {
		if th < 0 || th > 1 {
			return fmt.Errorf("matching threshold %s must be in [0,1], got %.2f", name, th)
		}
	}
	return nil
}

func loadYAML(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}
