// Package localstore is the console's client-local key/value cache. It
// mirrors the override keys the gateway web console keeps in browser local
// storage, as a single injected service with typed accessors instead of
// ad-hoc global reads.
package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Keys cached from server-provided configuration. Values are refreshed
// opportunistically; staleness is cosmetic.
const (
	KeyFooterHTML            = "footer_html"
	KeyNotice                = "notice"
	KeyHomePageContent       = "home_page_content"
	KeySystemName            = "system_name"
	KeySystemNameColor       = "system_name_color"
	KeyLogo                  = "logo"
	KeyThemeMode             = "theme-mode"
	KeyDataExportDefaultTime = "data_export_default_time"
	KeyHideHeaderLogo        = "hide_header_logo_enabled"
	KeyHideHeaderText        = "hide_header_text_enabled"
	KeyUser                  = "user"
)

// Store is a JSON-file backed key/value cache. Writes are last-writer-wins;
// there is no cross-process locking because writes are user-driven and
// infrequent.
type Store struct {
	path string

	mu     sync.RWMutex
	values map[string]string
	subs   []func(key string)

	watch *watcher
}

// Open loads (or initializes) the store file at path.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]string)}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the raw value for key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetBool interprets the value for key as a boolean; absent or unparseable
// values are false.
func (s *Store) GetBool(key string) bool {
	v, ok := s.Get(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// Set stores a value and persists the file.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	err := s.persistLocked()
	subs := append([]func(string){}, s.subs...)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	for _, fn := range subs {
		fn(key)
	}
	return nil
}

// SetBool stores a boolean value.
func (s *Store) SetBool(key string, value bool) error {
	return s.Set(key, strconv.FormatBool(value))
}

// Delete removes a key and persists the file.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	_, existed := s.values[key]
	delete(s.values, key)
	err := s.persistLocked()
	subs := append([]func(string){}, s.subs...)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if existed {
		for _, fn := range subs {
			fn(key)
		}
	}
	return nil
}

// Keys returns all present keys.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

// Subscribe registers fn to be called with the key of every observed change,
// whether made through this Store or by another process writing the file.
// The first subscription starts the file watcher.
func (s *Store) Subscribe(fn func(key string)) error {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	needWatch := s.watch == nil
	s.mu.Unlock()

	if !needWatch {
		return nil
	}
	w, err := newWatcher(s)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.watch = w
	s.mu.Unlock()
	return nil
}

// Close releases the file watcher, if running.
func (s *Store) Close() error {
	s.mu.Lock()
	w := s.watch
	s.watch = nil
	s.mu.Unlock()
	if w != nil {
		return w.close()
	}
	return nil
}

// reload replaces the in-memory map from disk and returns the keys whose
// values changed.
func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	fresh := make(map[string]string)
	if err := json.Unmarshal(data, &fresh); err != nil {
		// Corrupted store file; keep the in-memory state.
		return nil
	}

	s.mu.Lock()
	var changed []string
	for k, v := range fresh {
		if s.values[k] != v {
			changed = append(changed, k)
		}
	}
	for k := range s.values {
		if _, ok := fresh[k]; !ok {
			changed = append(changed, k)
		}
	}
	s.values = fresh
	subs := append([]func(string){}, s.subs...)
	s.mu.Unlock()

	for _, k := range changed {
		for _, fn := range subs {
			fn(k)
		}
	}
	return nil
}

func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.values, "", "    ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
