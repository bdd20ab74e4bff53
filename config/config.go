// Package config loads the facet-compiler's pipeline configuration from
// YAML, covering the resolver's import sandbox, the R-DAG's gas budget,
// the Token Box Model's default size budget, Bounded-lens credentials,
// and test-runner defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root document a facetc.yaml file unmarshals into.
type Config struct {
	Resolver  ResolverConfig  `yaml:"resolver"`
	Engine    EngineConfig    `yaml:"engine"`
	BoxModel  BoxModelConfig  `yaml:"box_model"`
	Lenses    LensesConfig    `yaml:"lenses"`
	TestRunner TestRunnerConfig `yaml:"test_runner"`
}

// ResolverConfig mirrors resolver.Config's shape so it can be populated
// from YAML without the resolver package taking a yaml dependency itself.
type ResolverConfig struct {
	AllowedRoots []string      `yaml:"allowed_roots"`
	BaseDir      string        `yaml:"base_dir"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
}

// EngineConfig governs the R-DAG evaluator.
type EngineConfig struct {
	GasLimit int    `yaml:"gas_limit"`
	Cache    string `yaml:"cache"` // "memory" or "redis"
	RedisURL string `yaml:"redis_url"`
}

// BoxModelConfig governs the Token Box Model allocator.
type BoxModelConfig struct {
	DefaultBudget int `yaml:"default_budget"`
}

// LensesConfig carries credentials and rate limits for Bounded lenses.
// EmbeddingAPIKey/EmbeddingModel and RAGEnabled are independent of the
// completion credentials above: a deployment can run llm_call against
// Anthropic while leaving embedding/rag_search unregistered, or vice
// versa.
type LensesConfig struct {
	AnthropicAPIKey string  `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string  `yaml:"openai_api_key"`
	RateLimitRPS    float64 `yaml:"rate_limit_rps"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`

	EmbeddingAPIKey string `yaml:"embedding_api_key"`
	EmbeddingModel  string `yaml:"embedding_model"`
	RAGEnabled      bool   `yaml:"rag_enabled"`
}

// TestRunnerConfig governs @test discovery and reporting defaults.
type TestRunnerConfig struct {
	ReportFormat string `yaml:"report_format"` // "json" or "junit"
	Pretty       bool   `yaml:"pretty"`
}

// Default returns the configuration the compiler runs with when no
// facetc.yaml is present: a same-directory import sandbox, the gas limit
// and box budget spec.md's examples assume, an in-memory R-DAG cache, no
// Bounded-lens credentials (those lenses simply go unregistered), and
// pretty-printed JSON test reports.
func Default() Config {
	return Config{
		Resolver: ResolverConfig{
			AllowedRoots: []string{"."},
			BaseDir:      ".",
			ReadTimeout:  30 * time.Second,
		},
		Engine: EngineConfig{
			GasLimit: 100000,
			Cache:    "memory",
		},
		BoxModel: BoxModelConfig{
			DefaultBudget: 4096,
		},
		Lenses: LensesConfig{
			RateLimitRPS:   5,
			RateLimitBurst: 5,
		},
		TestRunner: TestRunnerConfig{
			ReportFormat: "json",
			Pretty:       true,
		},
	}
}

// Load reads and unmarshals a facetc.yaml file, applying it on top of
// Default() so a config that only overrides one field still gets sane
// values everywhere else.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
