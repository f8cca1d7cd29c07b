package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yllada/gterm/common"
)

// YAMLFile stores preferences as a flat YAML mapping in a single file.
// The file is read once on open and rewritten on every change.
type YAMLFile struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// DefaultYAMLPath returns ~/.config/gterm/preferences.yaml.
func DefaultYAMLPath() (string, error) {
	dir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.PreferencesFileName), nil
}

// OpenYAML loads the file at path. A missing file yields an empty store.
// Entries whose value is not a scalar are dropped with a warning. A file
// that is not a YAML mapping is moved aside to path+".bak" and the store
// starts empty, so the original content is never overwritten.
func OpenYAML(path string, logger common.Logger) (*YAMLFile, error) {
	logger = common.LoggerOrDefault(logger)
	f := &YAMLFile{
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("failed to read preferences file: %w", err)
	}

	root, err := mappingRoot(data)
	if err != nil {
		backup := path + ".bak"
		logger.Warn("Ignoring malformed preferences file %s: %v", path, err)
		if err := os.Rename(path, backup); err != nil {
			logger.Warn("Could not move %s aside: %v", path, err)
		} else {
			logger.Warn("Moved malformed preferences to %s", backup)
		}
		return f, nil
	}
	if root == nil {
		return f, nil
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			logger.Warn("Dropping preference with non-scalar key at line %d", k.Line)
			continue
		}
		if v.Kind != yaml.ScalarNode || v.ShortTag() == "!!null" {
			logger.Warn("Dropping preference %s: value at line %d is not a scalar", k.Value, v.Line)
			continue
		}
		f.values[k.Value] = v.Value
	}
	return f, nil
}

// mappingRoot parses data and returns its top-level mapping, or nil for
// an empty document.
func mappingRoot(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level is not a mapping", root.Line)
	}
	return root, nil
}

// Path returns the backing file path.
func (f *YAMLFile) Path() string {
	return f.path
}

// Get returns the value stored under key.
func (f *YAMLFile) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok
}

// Set stores value under key and rewrites the file.
func (f *YAMLFile) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.values[key]
	f.values[key] = value
	if err := f.save(); err != nil {
		if existed {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

// Delete removes key and rewrites the file. Missing keys are not an error.
func (f *YAMLFile) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.values[key]
	if !existed {
		return nil
	}
	delete(f.values, key)
	if err := f.save(); err != nil {
		f.values[key] = prev
		return err
	}
	return nil
}

// Close is a no-op; every change is already on disk.
func (f *YAMLFile) Close() error { return nil }

// save must be called with f.mu held.
func (f *YAMLFile) save() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	data, err := yaml.Marshal(f.values)
	if err != nil {
		return fmt.Errorf("failed to serialize preferences: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write preferences file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace preferences file: %w", err)
	}
	return nil
}
