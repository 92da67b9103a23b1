package ai

import (
	"time"

	"github.com/alterego-app/alterego/internal/profile"
)

// Config holds the chat completion provider configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	ChatModel  string
	MaxRetries int
	Timeout    time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://api.openai.com/v1",
		APIKey:     "",
		ChatModel:  "gpt-4o-mini",
		MaxRetries: 3,
		Timeout:    30 * time.Second,
	}
}

// ConfigFromProfile builds a Config from the server profile.
func ConfigFromProfile(p *profile.Profile) *Config {
	cfg := DefaultConfig()
	if p.OpenAIBaseURL != "" {
		cfg.BaseURL = p.OpenAIBaseURL
	}
	cfg.APIKey = p.OpenAIAPIKey
	if p.ChatModel != "" {
		cfg.ChatModel = p.ChatModel
	}
	return cfg
}
