// Package asset resolves the optional raster assets printed on a receipt
// (shop logo, payment QR code). A failed or slow asset never fails a
// print; it is reported as absent.
package asset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by sources that have no asset under a name.
var ErrNotFound = errors.New("asset not found")

// Source fetches the encoded bytes of an asset.
type Source interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Store is a Source that can also be written to.
type Store interface {
	Source
	Save(ref string, data []byte) error
	Delete(ref string) error
}

// LocalStorage serves assets from a directory.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (l *LocalStorage) resolve(ref string) (string, error) {
	clean := filepath.Clean("/" + ref)
	if clean == "/" || strings.Contains(ref, "\x00") {
		return "", fmt.Errorf("invalid asset name %q", ref)
	}
	return filepath.Join(l.basePath, clean), nil
}

// Fetch reads an asset file.
func (l *LocalStorage) Fetch(_ context.Context, ref string) ([]byte, error) {
	path, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Save writes an asset file.
func (l *LocalStorage) Save(ref string, data []byte) error {
	path, err := l.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating asset directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// Delete removes an asset file.
func (l *LocalStorage) Delete(ref string) error {
	path, err := l.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
