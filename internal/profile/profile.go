package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where espresso stores its events
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// CORSOrigins lists the front-end origins allowed to call the API.
	CORSOrigins []string

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // text, json

	// AI Configuration
	AILLMProvider     string        // ESPRESSO_AI_LLM_PROVIDER (default: openai)
	AILLMModel        string        // ESPRESSO_AI_LLM_MODEL (default: gpt-4.1-nano)
	AIOpenAIAPIKey    string        // ESPRESSO_AI_OPENAI_API_KEY (legacy: OPENAI_API_KEY)
	AIOpenAIBaseURL   string        // ESPRESSO_AI_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AIDeepSeekAPIKey  string        // ESPRESSO_AI_DEEPSEEK_API_KEY (legacy: DEEPSEEK_API_KEY)
	AIDeepSeekBaseURL string        // ESPRESSO_AI_DEEPSEEK_BASE_URL (default: https://api.deepseek.com)
	AITemperature     *float32      // ESPRESSO_AI_TEMPERATURE (default: 0.3, nil means unset)
	AIMaxTokens       int           // ESPRESSO_AI_MAX_TOKENS (default: 1500)
	AITimeout         time.Duration // ESPRESSO_AI_TIMEOUT (default: 30s)

	// Rate limiting for oracle-backed endpoints, per client.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// DefaultAITemperature is used when no temperature is configured. Zero is a
// valid explicit setting.
const DefaultAITemperature float32 = 0.3

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if the configured LLM provider has an API key.
func (p *Profile) IsAIEnabled() bool {
	switch p.AILLMProvider {
	case "deepseek":
		return p.AIDeepSeekAPIKey != ""
	default:
		return p.AIOpenAIAPIKey != ""
	}
}

// FromEnv fills AI settings that are still empty from the environment.
// Supports both ESPRESSO_* (new) and bare provider (legacy) variable names.
func (p *Profile) FromEnv() {
	getEnvWithFallback := func(newKey, legacyKey string) string {
		if val := os.Getenv(newKey); val != "" {
			return val
		}
		return os.Getenv(legacyKey)
	}
	setIfEmpty := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}

	setIfEmpty(&p.AILLMProvider, os.Getenv("ESPRESSO_AI_LLM_PROVIDER"))
	setIfEmpty(&p.AILLMModel, os.Getenv("ESPRESSO_AI_LLM_MODEL"))
	setIfEmpty(&p.AIOpenAIAPIKey, getEnvWithFallback("ESPRESSO_AI_OPENAI_API_KEY", "OPENAI_API_KEY"))
	setIfEmpty(&p.AIOpenAIBaseURL, getEnvWithFallback("ESPRESSO_AI_OPENAI_BASE_URL", "OPENAI_BASE_URL"))
	setIfEmpty(&p.AIDeepSeekAPIKey, getEnvWithFallback("ESPRESSO_AI_DEEPSEEK_API_KEY", "DEEPSEEK_API_KEY"))
	setIfEmpty(&p.AIDeepSeekBaseURL, os.Getenv("ESPRESSO_AI_DEEPSEEK_BASE_URL"))
	if p.AITemperature == nil {
		if raw := os.Getenv("ESPRESSO_AI_TEMPERATURE"); raw != "" {
			if v, err := strconv.ParseFloat(raw, 32); err == nil {
				t := float32(v)
				p.AITemperature = &t
			} else {
				slog.Warn("ignoring invalid ESPRESSO_AI_TEMPERATURE", slog.String("value", raw))
			}
		}
	}

	p.applyAIDefaults()
}

func (p *Profile) applyAIDefaults() {
	if p.AILLMProvider == "" {
		p.AILLMProvider = "openai"
	}
	if p.AILLMModel == "" {
		p.AILLMModel = "gpt-4.1-nano"
	}
	if p.AIOpenAIBaseURL == "" {
		p.AIOpenAIBaseURL = "https://api.openai.com/v1"
	}
	if p.AIDeepSeekBaseURL == "" {
		p.AIDeepSeekBaseURL = "https://api.deepseek.com"
	}
	if p.AITemperature == nil {
		t := DefaultAITemperature
		p.AITemperature = &t
	}
	if p.AIMaxTokens <= 0 {
		p.AIMaxTokens = 1500
	}
	if p.AITimeout <= 0 {
		p.AITimeout = 30 * time.Second
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q", p.Driver)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}
	if t := p.AITemperature; t != nil && (*t < 0 || *t > 2) {
		return errors.Errorf("ai temperature %v out of range [0, 2]", *t)
	}
	if p.Port < 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "espresso")
		} else {
			p.Data = "/var/opt/espresso"
		}
		if _, err := os.Stat(p.Data); os.IsNotExist(err) {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
				return err
			}
		}
	}
	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("espresso_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.RateLimitPerSecond <= 0 {
		p.RateLimitPerSecond = 2
	}
	if p.RateLimitBurst <= 0 {
		p.RateLimitBurst = 5
	}
	p.applyAIDefaults()

	return nil
}
