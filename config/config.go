// Package config handles configuration loading and saving.
package config

import (
	"strings"

	"github.com/linanwx/minichat/logger"
	"github.com/linanwx/minichat/provider"
)

const (
	configFileName = "config.yaml"
	configDirName  = ".minichat"
)

var configDirOverride string

// SetConfigDir overrides the config directory for the current process.
// Empty value clears the override.
func SetConfigDir(dir string) {
	configDirOverride = strings.TrimSpace(dir)
}

// Config is the root configuration structure.
type Config struct {
	Chat      ChatConfig      `json:"chat" yaml:"chat"`
	Providers ProvidersConfig `json:"providers" yaml:"providers"`
	Logging   LoggingConfig   `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// ChatConfig contains the chat session defaults.
type ChatConfig struct {
	Provider     string  `json:"provider" yaml:"provider"` // ollama, openai, deepseek, openrouter, anthropic
	ModelType    string  `json:"modelType" yaml:"modelType"`
	ModelName    string  `json:"modelName,omitempty" yaml:"modelName,omitempty"`     // optional, defaults to modelType
	MaxTokens    int     `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`     // 0 leaves the backend default
	Temperature  float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"` // 0 leaves the backend default
	SystemPrompt string  `json:"systemPrompt" yaml:"systemPrompt"`
}

// ProvidersConfig contains provider API configurations.
type ProvidersConfig struct {
	Ollama     *ProviderConfig `json:"ollama,omitempty" yaml:"ollama,omitempty"`
	OpenAI     *ProviderConfig `json:"openai,omitempty" yaml:"openai,omitempty"`
	DeepSeek   *ProviderConfig `json:"deepseek,omitempty" yaml:"deepseek,omitempty"`
	OpenRouter *ProviderConfig `json:"openrouter,omitempty" yaml:"openrouter,omitempty"`
	Anthropic  *ProviderConfig `json:"anthropic,omitempty" yaml:"anthropic,omitempty"`
}

// ProviderConfig contains API credentials for a provider.
type ProviderConfig struct {
	APIKey  string `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	APIBase string `json:"apiBase,omitempty" yaml:"apiBase,omitempty"` // optional custom base URL
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Level   string `json:"level,omitempty" yaml:"level,omitempty"`   // debug, info, warn, error
	Stderr  bool   `json:"stderr,omitempty" yaml:"stderr,omitempty"` // also log to stderr
	File    string `json:"file,omitempty" yaml:"file,omitempty"`     // relative to the config dir
}

// slot returns the address of the named provider's entry, or nil for an
// unknown name.
func (p *ProvidersConfig) slot(name string) **ProviderConfig {
	switch strings.TrimSpace(name) {
	case "ollama":
		return &p.Ollama
	case "openai":
		return &p.OpenAI
	case "deepseek":
		return &p.DeepSeek
	case "openrouter":
		return &p.OpenRouter
	case "anthropic":
		return &p.Anthropic
	}
	return nil
}

// Get returns the named provider's entry, or nil.
func (p *ProvidersConfig) Get(name string) *ProviderConfig {
	if s := p.slot(name); s != nil {
		return *s
	}
	return nil
}

func (p *ProvidersConfig) ensure(name string) *ProviderConfig {
	s := p.slot(name)
	if s == nil {
		return nil
	}
	if *s == nil {
		*s = &ProviderConfig{}
	}
	return *s
}

// SetProvider selects the chat provider.
func (c *Config) SetProvider(name string) {
	c.Chat.Provider = strings.TrimSpace(name)
}

// SetModelType selects the model and clears any explicit model name.
func (c *Config) SetModelType(model string) {
	c.Chat.ModelType = strings.TrimSpace(model)
	c.Chat.ModelName = ""
}

// SetProviderAPIKey stores the API key of the current provider.
func (c *Config) SetProviderAPIKey(key string) {
	if pc := c.Providers.ensure(c.Chat.Provider); pc != nil {
		pc.APIKey = strings.TrimSpace(key)
	}
}

// SetProviderAPIBase stores the base URL of the current provider.
func (c *Config) SetProviderAPIBase(base string) {
	if pc := c.Providers.ensure(c.Chat.Provider); pc != nil {
		pc.APIBase = strings.TrimSpace(base)
	}
}

// ProviderSettings returns the runtime settings of the current provider.
// Empty key and base are filled from the environment by provider.Build.
func (c *Config) ProviderSettings() provider.Settings {
	s := provider.Settings{
		ModelType:   c.Chat.ModelType,
		ModelName:   c.Chat.ModelName,
		MaxTokens:   c.Chat.MaxTokens,
		Temperature: c.Chat.Temperature,
	}
	if pc := c.Providers.Get(c.Chat.Provider); pc != nil {
		s.APIKey = pc.APIKey
		s.APIBase = pc.APIBase
	}
	return s
}

// BuildLoggerConfig converts the logging section into logger settings.
func (c *Config) BuildLoggerConfig() logger.Config {
	enabled := true
	if c.Logging.Enabled != nil {
		enabled = *c.Logging.Enabled
	}
	return logger.Config{
		Enabled: enabled,
		Level:   c.Logging.Level,
		Stderr:  c.Logging.Stderr,
		File:    c.Logging.File,
	}
}
