package llm

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devflow/chronicle-go/internal/cache"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewClient_RequiresKey(t *testing.T) {
	store := cache.NewStore(t.TempDir(), true, testLogger())
	_, err := NewClient(Options{}, store, testLogger())
	assert.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	store := cache.NewStore(t.TempDir(), true, testLogger())
	c, err := NewClient(Options{APIKey: "test-key"}, store, testLogger())
	require.NoError(t, err)
	assert.NotEmpty(t, c.Model())
}

func TestComplete_ServedFromCache(t *testing.T) {
	logger := testLogger()
	store := cache.NewStore(t.TempDir(), true, logger)

	c, err := NewClient(Options{APIKey: "test-key", Model: "gpt-4o-mini"}, store, logger)
	require.NoError(t, err)

	// Seed the cache with the exact fingerprint Complete will look up.
	// The request never reaches the API.
	prompt := "Summarize the last session"
	key := cache.Fingerprint("gpt-4o-mini", prompt, map[string]any{"max_tokens": 500})
	store.Put(key, "a productive session", cache.Meta{Model: "gpt-4o-mini", Prompt: prompt})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := c.Complete(ctx, prompt, 500)
	require.NoError(t, err)
	assert.Equal(t, "a productive session", got)
}
