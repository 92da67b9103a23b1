package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	p := &Profile{
		Mode: "dev",
		Data: t.TempDir(),
	}
	require.NoError(t, p.Validate())

	assert.Equal(t, "sqlite", p.Driver)
	assert.Contains(t, p.DSN, "alterego_dev.db")
	assert.Equal(t, 3, p.MemoryBufferSize)
	assert.Equal(t, 5, p.MaxRetrievalResults)
	assert.Equal(t, 30, p.RecencyWindowDays)
	assert.Equal(t, 10, p.NeighborWindowMinutes)
}

func TestValidateInvalidMode(t *testing.T) {
	p := &Profile{
		Mode: "bogus",
		Data: t.TempDir(),
	}
	require.NoError(t, p.Validate())
	assert.Equal(t, "demo", p.Mode)
}

func TestValidatePostgresRequiresDSN(t *testing.T) {
	p := &Profile{
		Mode:   "prod",
		Data:   t.TempDir(),
		Driver: "postgres",
	}
	require.Error(t, p.Validate())
}

func TestValidateKeepsExplicitTunables(t *testing.T) {
	p := &Profile{
		Mode:                  "dev",
		Data:                  t.TempDir(),
		MemoryBufferSize:      7,
		MaxRetrievalResults:   2,
		RecencyWindowDays:     14,
		NeighborWindowMinutes: 5,
	}
	require.NoError(t, p.Validate())

	assert.Equal(t, 7, p.MemoryBufferSize)
	assert.Equal(t, 2, p.MaxRetrievalResults)
	assert.Equal(t, 14, p.RecencyWindowDays)
	assert.Equal(t, 5, p.NeighborWindowMinutes)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ALTEREGO_OPENAI_API_KEY", "sk-test")
	t.Setenv("ALTEREGO_MEMORY_BUFFER", "4")
	t.Setenv("ALTEREGO_NEIGHBOR_WINDOW_MINUTES", "15")

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "sk-test", p.OpenAIAPIKey)
	assert.Equal(t, "https://api.openai.com/v1", p.OpenAIBaseURL)
	assert.Equal(t, "gpt-4o-mini", p.ChatModel)
	assert.Equal(t, 4, p.MemoryBufferSize)
	assert.Equal(t, 15, p.NeighborWindowMinutes)
}
