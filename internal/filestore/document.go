// Package filestore keeps a whole entity collection in a single JSON file, read and rewritten on
// every access. It is the file-backed storage mode of the application.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Document is a JSON file holding a value of type T.
// Writes replace the file atomically through a temporary file and rename.
type Document[T any] struct {
	path     string
	defaults func() T
	mu       sync.Mutex
}

// Open returns a Document backed by path, creating the file (and its directory) with defaults() when missing.
func Open[T any](path string, defaults func() T) (*Document[T], error) {
	d := &Document[T]{path: path, defaults: defaults}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not stat %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("could not create directory for %s: %w", path, err)
		}
		if err := d.write(defaults()); err != nil {
			return nil, err
		}
		log.Infof("Created data file %s", path)
	}
	return d, nil
}

func (d *Document[T]) Path() string {
	return d.path
}

// Read loads the current content of the file.
func (d *Document[T]) Read() (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.read()
}

// Update loads the file, applies fn and writes the result back. Nothing is written when fn fails.
func (d *Document[T]) Update(fn func(*T) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	value, err := d.read()
	if err != nil {
		return err
	}
	if err := fn(&value); err != nil {
		return err
	}
	return d.write(value)
}

func (d *Document[T]) read() (T, error) {
	value := d.defaults()
	data, err := os.ReadFile(d.path)
	if err != nil {
		return value, fmt.Errorf("could not read %s: %w", d.path, err)
	}
	if len(data) == 0 {
		return value, nil
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("could not decode %s: %w", d.path, err)
	}
	return value, nil
}

func (d *Document[T]) write(value T) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", d.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary file for %s: %w", d.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write %s: %w", d.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not write %s: %w", d.path, err)
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("could not replace %s: %w", d.path, err)
	}
	return nil
}
