package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where alterego stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Completion provider configuration
	OpenAIAPIKey  string // ALTEREGO_OPENAI_API_KEY
	OpenAIBaseURL string // ALTEREGO_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	ChatModel     string // ALTEREGO_CHAT_MODEL (default: gpt-4o-mini)

	// Memory tunables. All user-settable; the defaults mirror the original
	// hand-tuned values and are not load-bearing.
	MemoryBufferSize      int // exchanges kept in the live AI-context window (default 3)
	MaxRetrievalResults   int // primary hits per semantic search (default 5)
	RecencyWindowDays     int // recency-bonus window for scoring (default 30)
	NeighborWindowMinutes int // max gap for neighbor expansion (default 10)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// FromEnv loads configuration from ALTEREGO_* environment variables.
func (p *Profile) FromEnv() {
	p.OpenAIAPIKey = getEnvOrDefault("ALTEREGO_OPENAI_API_KEY", p.OpenAIAPIKey)
	p.OpenAIBaseURL = getEnvOrDefault("ALTEREGO_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.ChatModel = getEnvOrDefault("ALTEREGO_CHAT_MODEL", "gpt-4o-mini")

	p.MemoryBufferSize = getIntEnvOrDefault("ALTEREGO_MEMORY_BUFFER", p.MemoryBufferSize)
	p.MaxRetrievalResults = getIntEnvOrDefault("ALTEREGO_MAX_RETRIEVAL_RESULTS", p.MaxRetrievalResults)
	p.RecencyWindowDays = getIntEnvOrDefault("ALTEREGO_RECENCY_WINDOW_DAYS", p.RecencyWindowDays)
	p.NeighborWindowMinutes = getIntEnvOrDefault("ALTEREGO_NEIGHBOR_WINDOW_MINUTES", p.NeighborWindowMinutes)
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

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("alterego_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for postgres driver")
	}

	if p.MemoryBufferSize < 1 {
		p.MemoryBufferSize = 3
	}
	if p.MaxRetrievalResults <= 0 {
		p.MaxRetrievalResults = 5
	}
	if p.RecencyWindowDays <= 0 {
		p.RecencyWindowDays = 30
	}
	if p.NeighborWindowMinutes <= 0 {
		p.NeighborWindowMinutes = 10
	}

	return nil
}
