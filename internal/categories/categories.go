// Package categories maps list identifiers to the category labels the
// backend filters todos by, and persists the mapping as one JSON object.
package categories

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

// defaults are always present after Load and win over persisted entries.
var defaults = map[string]string{
	"xiaojia":        "小家",
	"mengder":        "蒙der",
	"zengshuaishuai": "曾帅帅",
}

// Entry is one list ID to label mapping.
type Entry struct {
	ID    string
	Label string
}

// Map is the list ID to category label mapping.
// A Map is safe for concurrent use.
type Map struct {
	mu     sync.RWMutex
	path   string
	labels map[string]string
	logger *log.Logger
}

// New returns a Map persisted at path, holding only the built-in entries.
// An empty path keeps the map in memory.
func New(path string) *Map {
	m := &Map{path: path, labels: make(map[string]string, len(defaults))}
	for id, label := range defaults {
		m.labels[id] = label
	}
	return m
}

// SetLogger sets the logger used to report unreadable snapshots.
func (m *Map) SetLogger(logger *log.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// Path returns the persistence path, empty for a memory-only map.
func (m *Map) Path() string {
	return m.path
}

// Defaults returns a copy of the built-in entries.
func Defaults() map[string]string {
	out := make(map[string]string, len(defaults))
	for id, label := range defaults {
		out[id] = label
	}
	return out
}

// IsDefault reports whether id is a built-in entry.
func IsDefault(id string) bool {
	_, ok := defaults[id]
	return ok
}

// Load replaces the in-memory map with the persisted snapshot overlaid by
// the built-in entries. A missing or malformed snapshot loads as empty.
func (m *Map) Load() error {
	persisted := map[string]string{}
	if m.path != "" {
		data, err := os.ReadFile(m.path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return fmt.Errorf("read categories: %w", err)
		default:
			parsed, perr := parse(data)
			if perr != nil {
				m.warn("ignoring unreadable categories file", "path", m.path, "err", perr)
			} else {
				persisted = parsed
			}
		}
	}

	for id, label := range defaults {
		persisted[id] = label
	}

	m.mu.Lock()
	m.labels = persisted
	m.mu.Unlock()
	return nil
}

// parse accepts JSON with comments and trailing commas. Non-string values
// are skipped; anything but a top-level object is an error.
func parse(data []byte) (map[string]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]string{}, nil
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(standardized, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	out := make(map[string]string, len(raw))
	for id, v := range raw {
		if label, ok := v.(string); ok {
			out[id] = label
		}
	}
	return out, nil
}

// Save writes the entire map to disk, replacing the previous snapshot atomically.
func (m *Map) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveLocked()
}

func (m *Map) saveLocked() error {
	if m.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(m.labels, "", "  ")
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(m.path), 0700); err != nil {
		return fmt.Errorf("create categories dir: %w", err)
	}
	if err := atomic.WriteFile(m.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write categories: %w", err)
	}
	return nil
}

// Add maps id to label, overwriting any previous label, then saves.
func (m *Map) Add(id, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[id] = label
	return m.saveLocked()
}

// Remove deletes id if present, then saves.
func (m *Map) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.labels, id)
	return m.saveLocked()
}

// Resolve returns the label for id. ok is false for unknown ids.
func (m *Map) Resolve(id string) (label string, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	label, ok = m.labels[id]
	return label, ok
}

// Entries returns a snapshot sorted by ID.
func (m *Map) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.labels))
	for id, label := range m.labels {
		out = append(out, Entry{ID: id, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of entries.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.labels)
}

func (m *Map) warn(msg string, kv ...any) {
	m.mu.RLock()
	logger := m.logger
	m.mu.RUnlock()
	if logger != nil {
		logger.Warn(msg, kv...)
	}
}
