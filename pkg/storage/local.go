package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects under a root directory. References are the
// slash-separated key relative to that root.
type LocalStore struct {
	root string
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (l *LocalStore) Name() string {
	return "local"
}

func (l *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.root, clean), nil
}

func (l *LocalStore) Put(ctx context.Context, obj Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := l.path(obj.Key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return "", fmt.Errorf("failed to create dir: %w", err)
	}
	if err := os.WriteFile(p, obj.Data, 0o640); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", obj.Key, err)
	}
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(obj.Key))), nil
}

func (l *LocalStore) Delete(ctx context.Context, ref string) error {
	p, err := l.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}
	return nil
}
