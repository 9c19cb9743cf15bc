package ai

import (
	"errors"
	"time"

	"github.com/christianacho/espresso/internal/profile"
	"github.com/christianacho/espresso/plugin/ai/timeout"
)

// Config represents AI configuration.
type Config struct {
	Enabled bool

	LLM LLMConfig
}

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider    string  // openai, deepseek
	Model       string  // gpt-4.1-nano
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 1500
	Temperature *float32 // default: 0.3; zero is valid
	Timeout     time.Duration
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.IsAIEnabled(),
	}

	cfg.LLM = LLMConfig{
		Provider:    p.AILLMProvider,
		Model:       p.AILLMModel,
		MaxTokens:   p.AIMaxTokens,
		Temperature: p.AITemperature,
		Timeout:     p.AITimeout,
	}

	switch p.AILLMProvider {
	case "deepseek":
		cfg.LLM.APIKey = p.AIDeepSeekAPIKey
		cfg.LLM.BaseURL = p.AIDeepSeekBaseURL
	case "openai":
		cfg.LLM.APIKey = p.AIOpenAIAPIKey
		cfg.LLM.BaseURL = p.AIOpenAIBaseURL
	}

	cfg.LLM.applyDefaults()
	return cfg
}

func (c *LLMConfig) applyDefaults() {
	if c.Model == "" {
		c.Model = "gpt-4.1-nano"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 1500
	}
	if c.Temperature == nil {
		t := profile.DefaultAITemperature
		c.Temperature = &t
	}
	if c.Timeout <= 0 {
		c.Timeout = timeout.OracleTimeout
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.LLM.Provider == "" {
		return errors.New("LLM provider is required")
	}

	if c.LLM.Provider != "openai" && c.LLM.Provider != "deepseek" {
		return errors.New("LLM provider must be openai or deepseek")
	}

	if c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}

	return nil
}
