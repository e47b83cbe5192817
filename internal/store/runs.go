// Package store persists analysis runs so past bundles can be listed and
// re-rendered without re-running the pipeline.
package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/devflow/chronicle-go/internal/models"
)

const runsBucket = "runs"

// RunStore is a bbolt-backed archive of analysis bundles. Keys order by
// generation time, so recent runs are a reverse cursor scan.
type RunStore struct {
	db *bolt.DB
}

// Open opens (or creates) the run store at path.
func Open(path string) (*RunStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening run store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing run store: %w", err)
	}

	return &RunStore{db: db}, nil
}

// Close releases the underlying database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// SaveRun persists a bundle, assigning a run ID if the pipeline did not.
func (s *RunStore) SaveRun(bundle *models.Bundle) error {
	if bundle.RunID == "" {
		bundle.RunID = uuid.NewString()
	}
	if bundle.GeneratedAt.IsZero() {
		bundle.GeneratedAt = time.Now()
	}

	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshaling run: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(runsBucket)).Put(runKey(bundle), data)
	})
}

// RecentRuns returns up to limit bundles, newest first.
func (s *RunStore) RecentRuns(limit int) ([]models.Bundle, error) {
	var runs []models.Bundle

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		for k, v := c.Last(); k != nil && len(runs) < limit; k, v = c.Prev() {
			var bundle models.Bundle
			if err := json.Unmarshal(v, &bundle); err != nil {
				continue
			}
			runs = append(runs, bundle)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return runs, nil
}

// GetRun fetches a bundle by run ID.
func (s *RunStore) GetRun(id string) (*models.Bundle, error) {
	var found *models.Bundle

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		suffix := []byte("|" + id)
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if !strings.HasSuffix(string(k), string(suffix)) {
				continue
			}
			var bundle models.Bundle
			if err := json.Unmarshal(v, &bundle); err != nil {
				return fmt.Errorf("corrupt run %s: %w", id, err)
			}
			found = &bundle
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("run %s not found", id)
	}

	return found, nil
}

// Count returns the number of stored runs.
func (s *RunStore) Count() (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket([]byte(runsBucket)).Stats().KeyN
		return nil
	})
	return count, err
}

func runKey(bundle *models.Bundle) []byte {
	return []byte(bundle.GeneratedAt.UTC().Format(time.RFC3339Nano) + "|" + bundle.RunID)
}
