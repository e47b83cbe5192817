package cache

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewStore(t.TempDir(), true, logger)
}

func TestFingerprint_Deterministic(t *testing.T) {
	params := map[string]any{"temperature": 0.3, "max_tokens": 1500}
	a := Fingerprint("gpt-4o-mini", "summarize this", params)
	b := Fingerprint("gpt-4o-mini", "summarize this", map[string]any{
		"max_tokens": 1500, "temperature": 0.3,
	})
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	assert.NotEqual(t, a, Fingerprint("gpt-4o", "summarize this", params))
	assert.NotEqual(t, a, Fingerprint("gpt-4o-mini", "summarize that", params))
	assert.NotEqual(t, a, Fingerprint("gpt-4o-mini", "summarize this", nil))
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	key := Fingerprint("gpt-4o-mini", "hello", nil)

	_, ok := s.Get(key, time.Hour)
	assert.False(t, ok)

	s.Put(key, "cached response", Meta{Model: "gpt-4o-mini", Prompt: "hello"})

	got, ok := s.Get(key, time.Hour)
	require.True(t, ok)
	assert.Equal(t, "cached response", got)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
	assert.Equal(t, 1, stats.Entries)
	assert.Greater(t, stats.TotalBytes, int64(0))
}

func TestStore_ExpiryBoundary(t *testing.T) {
	s := newTestStore(t)
	created := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return created }
	s.Put("k", "v", Meta{Model: "m", Prompt: "p"})

	// Age exactly equal to maxAge is still fresh.
	s.now = func() time.Time { return created.Add(time.Hour) }
	got, ok := s.Get("k", time.Hour)
	require.True(t, ok)
	assert.Equal(t, "v", got)

	// One more second and the entry is stale; the read removes the file.
	s.now = func() time.Time { return created.Add(time.Hour + time.Second) }
	_, ok = s.Get("k", time.Hour)
	assert.False(t, ok)

	_, err := os.Stat(s.entryPath("k"))
	assert.True(t, os.IsNotExist(err), "stale entry should be removed on read")
}

func TestStore_CorruptEntryDeleted(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, ok := s.Get("bad", time.Hour)
	assert.False(t, ok)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "corrupt entry should be removed")
}

func TestStore_Disabled(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s := NewStore(t.TempDir(), false, logger)

	s.Put("k", "v", Meta{})
	_, ok := s.Get("k", time.Hour)
	assert.False(t, ok)

	stats := s.Stats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses, "disabled store does not count lookups")
	assert.Zero(t, stats.Entries)
}

func TestStore_PurgeWorksWhenDisabled(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	dir := t.TempDir()

	writer := NewStore(dir, true, logger)
	writer.Put("a", "1", Meta{})
	writer.Put("b", "2", Meta{})

	// Disabling the cache must not strand old entries on disk.
	disabled := NewStore(dir, false, logger)
	assert.Equal(t, 2, disabled.PurgeAll())
	assert.Zero(t, disabled.Stats().Entries)
}

func TestStore_PurgeOlderThan(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return now.AddDate(0, 0, -10) }
	s.Put("old", "v", Meta{Model: "m", Prompt: "p"})
	s.now = func() time.Time { return now }
	s.Put("recent", "v", Meta{Model: "m", Prompt: "p"})

	removed := s.PurgeOlderThan(7)
	assert.Equal(t, 1, removed)

	_, ok := s.Get("recent", 24*time.Hour)
	assert.True(t, ok)
	_, ok = s.Get("old", 30*24*time.Hour)
	assert.False(t, ok)
}

func TestStore_PurgeAllResetsCounters(t *testing.T) {
	s := newTestStore(t)
	s.Put("a", "1", Meta{})
	s.Put("b", "2", Meta{})
	s.Get("a", time.Hour)
	s.Get("missing", time.Hour)

	removed := s.PurgeAll()
	assert.Equal(t, 2, removed)

	stats := s.Stats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
	assert.Zero(t, stats.Entries)
}
