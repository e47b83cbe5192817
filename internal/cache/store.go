package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Meta describes the request a cached response belongs to.
type Meta struct {
	Model  string
	Prompt string
	Params map[string]any
}

// entry is the on-disk cache record.
type entry struct {
	CreatedAt     time.Time      `json:"created_at"`
	Model         string         `json:"model"`
	PromptPreview string         `json:"prompt_preview"`
	Params        map[string]any `json:"params,omitempty"`
	Response      string         `json:"response"`
}

// Stats reports cache effectiveness for this store instance.
type Stats struct {
	Hits       int     `json:"hits"`
	Misses     int     `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
	Entries    int     `json:"entries"`
	TotalBytes int64   `json:"total_bytes"`
}

// Store is a file-backed response cache with a small in-memory layer in
// front of the disk entries. Hit and miss counters are per instance.
type Store struct {
	dir     string
	enabled bool
	logger  *logrus.Logger
	mem     *gocache.Cache
	now     func() time.Time

	mu     sync.Mutex
	hits   int
	misses int
}

// NewStore creates a cache store rooted at dir. A disabled store never
// serves or records anything.
func NewStore(dir string, enabled bool, logger *logrus.Logger) *Store {
	if enabled {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.WithError(err).Warn("Failed to create cache directory")
			enabled = false
		}
	}

	return &Store{
		dir:     dir,
		enabled: enabled,
		logger:  logger,
		mem:     gocache.New(5*time.Minute, 10*time.Minute),
		now:     time.Now,
	}
}

// Fingerprint derives the deterministic cache key for a request. Params are
// serialized with sorted keys so map iteration order cannot change the key.
func Fingerprint(model, prompt string, params map[string]any) string {
	h := sha256.New()
	io.WriteString(h, model)
	h.Write([]byte{0})
	io.WriteString(h, prompt)
	h.Write([]byte{0})

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		io.WriteString(h, k)
		h.Write([]byte{'='})
		v, err := json.Marshal(params[k])
		if err != nil {
			io.WriteString(h, "?")
		} else {
			h.Write(v)
		}
		h.Write([]byte{';'})
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached response for key if one exists and is no older
// than maxAge. An entry exactly maxAge old is still fresh. Corrupt and
// stale entries are deleted on sight and reported as misses.
func (s *Store) Get(key string, maxAge time.Duration) (string, bool) {
	if !s.enabled {
		return "", false
	}

	if cached, found := s.mem.Get(key); found {
		e := cached.(*entry)
		if s.fresh(e, maxAge) {
			s.count(true)
			return e.Response, true
		}
		s.mem.Delete(key)
	}

	path := s.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		s.count(false)
		return "", false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Removing corrupt cache entry")
		if rmErr := os.Remove(path); rmErr != nil {
			s.logger.WithError(rmErr).Warn("Failed to remove corrupt cache entry")
		}
		s.count(false)
		return "", false
	}

	if !s.fresh(&e, maxAge) {
		// Lazy expiry: the stale file goes away on the read that finds it.
		if err := os.Remove(path); err != nil {
			s.logger.WithError(err).Warn("Failed to remove stale cache entry")
		}
		s.count(false)
		return "", false
	}

	s.mem.Set(key, &e, gocache.DefaultExpiration)
	s.count(true)
	return e.Response, true
}

// Put stores a response under key. Persistence is best effort: the entry is
// written to a temp file and renamed into place, and any failure is logged
// rather than surfaced to the caller.
func (s *Store) Put(key, value string, meta Meta) {
	if !s.enabled {
		return
	}

	e := &entry{
		CreatedAt:     s.now(),
		Model:         meta.Model,
		PromptPreview: preview(meta.Prompt, 200),
		Params:        meta.Params,
		Response:      value,
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		s.logger.WithError(err).Warn("Failed to marshal cache entry")
		return
	}

	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		s.logger.WithError(err).Warn("Failed to create cache temp file")
		return
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		s.logger.WithError(err).Warn("Failed to write cache entry")
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		s.logger.WithError(err).Warn("Failed to close cache temp file")
		return
	}
	if err := os.Rename(tmp.Name(), s.entryPath(key)); err != nil {
		os.Remove(tmp.Name())
		s.logger.WithError(err).Warn("Failed to store cache entry")
		return
	}

	s.mem.Set(key, e, gocache.DefaultExpiration)
}

// PurgeOlderThan removes entries created more than the given number of days
// ago, plus any entries that no longer parse. Returns the number removed.
// Purging works on a disabled store too, so stale entries can always be
// cleaned up.
func (s *Store) PurgeOlderThan(days int) int {
	cutoff := s.now().AddDate(0, 0, -days)
	removed := 0
	for _, path := range s.entryFiles() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(data, &e); err == nil && !e.CreatedAt.Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.logger.WithError(err).Warn("Failed to purge cache entry")
			continue
		}
		removed++
	}

	s.mem.Flush()
	return removed
}

// PurgeAll removes every entry and resets the hit and miss counters.
// Works on a disabled store too.
func (s *Store) PurgeAll() int {
	removed := 0
	for _, path := range s.entryFiles() {
		if err := os.Remove(path); err != nil {
			s.logger.WithError(err).Warn("Failed to purge cache entry")
			continue
		}
		removed++
	}

	s.mem.Flush()
	s.mu.Lock()
	s.hits, s.misses = 0, 0
	s.mu.Unlock()

	return removed
}

// Stats reports hit counters for this instance plus the current disk usage.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	stats := Stats{Hits: s.hits, Misses: s.misses}
	s.mu.Unlock()

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}

	for _, path := range s.entryFiles() {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()
	}

	return stats
}

// Enabled reports whether the store serves and records entries.
func (s *Store) Enabled() bool {
	return s.enabled
}

func (s *Store) fresh(e *entry, maxAge time.Duration) bool {
	return s.now().Sub(e.CreatedAt) <= maxAge
}

func (s *Store) count(hit bool) {
	s.mu.Lock()
	if hit {
		s.hits++
	} else {
		s.misses++
	}
	s.mu.Unlock()
}

func (s *Store) entryPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) entryFiles() []string {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list cache entries")
		return nil
	}
	return paths
}

func preview(text string, limit int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit])
}
