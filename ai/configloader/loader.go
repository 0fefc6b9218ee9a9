// Package configloader reads YAML configuration files that tune the engine.
package configloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader resolves configuration files relative to a base directory, falling back
// to the directory of the running executable for packaged builds.
type Loader struct {
	baseDir string
}

// NewLoader creates a new configuration loader.
func NewLoader(baseDir string) *Loader {
	return &Loader{baseDir: baseDir}
}

// Load reads subPath and unmarshals it into target. Unknown keys are rejected.
func (l *Loader) Load(subPath string, target any) error {
	data, err := l.ReadFileWithFallback(subPath)
	if err != nil {
		return fmt.Errorf("read file %s: %w", subPath, err)
	}
	return decodeStrict(subPath, data, target)
}

// LoadOptional behaves like Load but reports (false, nil) when the file does not exist.
func (l *Loader) LoadOptional(subPath string, target any) (bool, error) {
	data, err := l.ReadFileWithFallback(subPath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read file %s: %w", subPath, err)
	}
	if err := decodeStrict(subPath, data, target); err != nil {
		return false, err
	}
	return true, nil
}

func decodeStrict(subPath string, data []byte, target any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("unmarshal YAML %s: %w", subPath, err)
	}
	return nil
}

// ReadFileWithFallback tries baseDir first, then the executable directory.
func (l *Loader) ReadFileWithFallback(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.baseDir, path))
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return data, err
	}

	execPath, execErr := os.Executable()
	if execErr != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(filepath.Dir(execPath), l.baseDir, path))
}
