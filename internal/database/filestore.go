package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// ErrRecordNotFound is returned when a key has no stored record
var ErrRecordNotFound = errors.New("record not found")

// JSONCollection is a keyed set of records persisted as a single JSON object
// on disk. Every mutation rewrites the whole file through a temp file and
// rename, so a crash leaves either the old or the new contents.
type JSONCollection[T any] struct {
	path    string
	mu      sync.RWMutex
	records map[string]T
}

// OpenJSONCollection loads the collection at path, creating the parent
// directory if needed. A missing file is an empty collection.
func OpenJSONCollection[T any](path string) (*JSONCollection[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	c := &JSONCollection[T]{
		path:    path,
		records: make(map[string]T),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	case len(data) == 0:
		return c, nil
	}

	if err := json.Unmarshal(data, &c.records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return c, nil
}

// Get returns the record stored under key
func (c *JSONCollection[T]) Get(key string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, ok := c.records[key]
	if !ok {
		var zero T
		return zero, ErrRecordNotFound
	}
	return record, nil
}

// Put stores record under key and flushes the collection to disk
func (c *JSONCollection[T]) Put(key string, record T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous, existed := c.records[key]
	c.records[key] = record
	if err := c.flush(); err != nil {
		if existed {
			c.records[key] = previous
		} else {
			delete(c.records, key)
		}
		return err
	}
	return nil
}

// Update applies fn to the record under key while holding the write lock
func (c *JSONCollection[T]) Update(key string, fn func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	original, ok := c.records[key]
	if !ok {
		var zero T
		return zero, ErrRecordNotFound
	}

	record := original
	if err := fn(&record); err != nil {
		return original, err
	}

	c.records[key] = record
	if err := c.flush(); err != nil {
		c.records[key] = original
		return original, err
	}
	return record, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *JSONCollection[T]) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous, ok := c.records[key]
	if !ok {
		return nil
	}
	delete(c.records, key)
	if err := c.flush(); err != nil {
		c.records[key] = previous
		return err
	}
	return nil
}

// All returns a snapshot of every record
func (c *JSONCollection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r)
	}
	return out
}

// Len returns the number of stored records
func (c *JSONCollection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// flush must be called with mu held for writing.
func (c *JSONCollection[T]) flush() error {
	data, err := json.MarshalIndent(c.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", c.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", c.path, err)
	}
	return nil
}
