package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Scoring   Scoring   `yaml:"scoring"`
	Compiler  Command   `yaml:"compiler"`
	Lint      Command   `yaml:"lint"`
	Generator Generator `yaml:"generator"`
	Narrator  Narrator  `yaml:"narrator"`
	LLM       LLM       `yaml:"llm"`
	Sandbox   Sandbox   `yaml:"sandbox"`
	Results   Results   `yaml:"results"`
	Secrets   Secrets   `yaml:"secrets"`
	Log       Log       `yaml:"log"`
}

// Scoring is the configuration object handed to the orchestrator and every
// agent. Weights double as the per-component maximum score.
type Scoring struct {
	TestTimeout time.Duration `yaml:"test_timeout"`
	Weights     Weights       `yaml:"weights"`
}

type Weights struct {
	Design       float64 `yaml:"design"`
	Tests        float64 `yaml:"tests"`
	Performance  float64 `yaml:"performance"`
	Optimization float64 `yaml:"optimization"`
	Static       float64 `yaml:"static"`
}

func (w Weights) Sum() float64 {
	return w.Design + w.Tests + w.Performance + w.Optimization + w.Static
}

type Command struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type Generator struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type Narrator struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type LLM struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type Sandbox struct {
	Enabled     bool    `yaml:"enabled"`
	Image       string  `yaml:"image"`
	CPULimit    float64 `yaml:"cpu_limit"`
	MemoryLimit int64   `yaml:"memory_limit"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

type Secrets struct {
	EnvFile string `yaml:"env_file"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var DefaultWeights = Weights{
	Design:       15,
	Tests:        30,
	Performance:  15,
	Optimization: 20,
	Static:       20,
}

const DefaultTestTimeout = 2 * time.Second

// Default returns a config with every default filled in.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	// Weights are seeded so a file naming only some of them keeps the
	// defaults for the rest.
	cfg := Config{Scoring: Scoring{Weights: DefaultWeights}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it exists. A missing file is only tolerated
// when the caller did not ask for that path explicitly.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		return Default(), nil
	}
	return Load(path)
}

// LoadSecrets exports the variables of the configured env file into the
// process environment. Variables that are already set win.
func (c *Config) LoadSecrets() error {
	if c.Secrets.EnvFile == "" {
		return nil
	}
	if err := godotenv.Load(c.Secrets.EnvFile); err != nil {
		return fmt.Errorf("loading secrets %s: %w", c.Secrets.EnvFile, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Scoring.TestTimeout == 0 {
		cfg.Scoring.TestTimeout = DefaultTestTimeout
	}
	if cfg.Scoring.Weights == (Weights{}) {
		cfg.Scoring.Weights = DefaultWeights
	}
	if cfg.Compiler.Command == "" {
		cfg.Compiler.Command = "gcc"
		if len(cfg.Compiler.Args) == 0 {
			cfg.Compiler.Args = []string{"-lm"}
		}
	}
	if cfg.Lint.Command == "" {
		cfg.Lint.Command = "cppcheck"
		if len(cfg.Lint.Args) == 0 {
			cfg.Lint.Args = []string{"--enable=all", "--force"}
		}
	}
	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "llama-3.1-8b-instant"
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = "GROQ_API_KEY"
	}
	if cfg.Narrator.Model == "" {
		cfg.Narrator.Model = "gemini-2.5-flash"
	}
	if cfg.Narrator.APIKeyEnv == "" {
		cfg.Narrator.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.LLM.RequestTimeout == 0 {
		cfg.LLM.RequestTimeout = 60 * time.Second
	}
	if cfg.Sandbox.Image == "" {
		cfg.Sandbox.Image = "debian:bookworm-slim"
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func validate(cfg *Config) error {
	if cfg.Scoring.TestTimeout < 0 {
		return fmt.Errorf("scoring.test_timeout must be positive")
	}
	w := cfg.Scoring.Weights
	for name, v := range map[string]float64{
		"design":       w.Design,
		"tests":        w.Tests,
		"performance":  w.Performance,
		"optimization": w.Optimization,
		"static":       w.Static,
	} {
		if v < 0 {
			return fmt.Errorf("scoring.weights.%s must not be negative", name)
		}
	}
	if cfg.LLM.RequestTimeout < 0 {
		return fmt.Errorf("llm.request_timeout must be positive")
	}
	if cfg.Sandbox.CPULimit < 0 {
		return fmt.Errorf("sandbox.cpu_limit must not be negative")
	}
	if cfg.Sandbox.MemoryLimit < 0 {
		return fmt.Errorf("sandbox.memory_limit must not be negative")
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format)
	}
	return nil
}
